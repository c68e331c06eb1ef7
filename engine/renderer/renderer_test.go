package renderer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/Carmen-Shannon/rig-go/engine/renderer/draw_assembler"
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeBackend records resource creation and draw submissions without a GPU.
type fakeBackend struct {
	primitives int
	instances  int
	draws      []fakeDraw
}

type fakeDraw struct {
	handle  instanceHandle
	uniform []byte
	joints  []byte
}

type fakeInstance struct {
	prim  primitiveHandle
	label string
}

var _ rendererBackend = &fakeBackend{}

func (f *fakeBackend) ConfigureSurface(width, height int) {}

func (f *fakeBackend) SetPresentMode(mode PresentMode) {}

func (f *fakeBackend) CreatePrimitive(desc PrimitiveDescriptor) (primitiveHandle, error) {
	f.primitives++
	return fmt.Sprintf("prim-%d", f.primitives), nil
}

func (f *fakeBackend) CreateInstance(h primitiveHandle, label string) (instanceHandle, error) {
	f.instances++
	return &fakeInstance{prim: h, label: label}, nil
}

func (f *fakeBackend) BeginFrame() error { return nil }

func (f *fakeBackend) Draw(h instanceHandle, uniformData, jointData []byte) error {
	f.draws = append(f.draws, fakeDraw{
		handle:  h,
		uniform: append([]byte(nil), uniformData...),
		joints:  append([]byte(nil), jointData...),
	})
	return nil
}

func (f *fakeBackend) EndFrame() {}

func (f *fakeBackend) Present() {}

func newTestRenderer(fb *fakeBackend) *renderer {
	return &renderer{
		assembler:    draw_assembler.NewAssembler(),
		primitives:   make(map[primitiveKey]primitiveHandle),
		instances:    make(map[instanceKey]instanceHandle),
		textureCache: make(map[string]common.TextureStagingData),
		backend:      fb,
	}
}

// sharedMeshModel builds a model whose two root nodes reference the same
// single-primitive mesh at different translations.
func sharedMeshModel(t *testing.T) model.Model {
	t.Helper()

	nodes := []scenegraph.Node{scenegraph.NewNode(0), scenegraph.NewNode(1)}
	nodes[0].Mesh = 0
	nodes[0].Translation = mgl32.Vec3{-2, 0, 0}
	nodes[1].Mesh = 0
	nodes[1].Translation = mgl32.Vec3{2, 0, 0}

	g, err := scenegraph.NewGraph(nodes, []int{0, 1})
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}

	meshes := []model.Mesh{{
		Primitives: []model.Primitive{{
			VertexData:  make([]byte, 3*48),
			VertexCount: 3,
			Material:    -1,
		}},
	}}

	return model.NewModel(
		model.WithName("shared-mesh"),
		model.WithGraph(g),
		model.WithMeshes(meshes),
	)
}

func TestInitModelSharesGeometryAcrossInstances(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(fb)

	if err := r.InitModel(sharedMeshModel(t)); err != nil {
		t.Fatalf("InitModel failed: %v", err)
	}

	if fb.primitives != 1 {
		t.Errorf("geometry should be uploaded once per primitive, got %d uploads", fb.primitives)
	}
	if fb.instances != 2 {
		t.Errorf("each node needs its own instance resources, got %d", fb.instances)
	}
}

func TestRenderFrameSharedMeshKeepsUniformsDistinct(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(fb)

	m := sharedMeshModel(t)
	if err := r.InitModel(m); err != nil {
		t.Fatalf("InitModel failed: %v", err)
	}

	m.Update(0)

	frame := draw_assembler.FrameInputs{
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
	}
	if err := r.RenderFrame([]model.Model{m}, frame); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	if len(fb.draws) != 2 {
		t.Fatalf("expected one draw per node, got %d", len(fb.draws))
	}
	if fb.draws[0].handle == fb.draws[1].handle {
		t.Error("both draws went through one instance; the second uniform write would win")
	}

	// The model matrix occupies the first 64 bytes of the uniform block; the
	// two nodes sit at different translations so the draws must disagree there.
	if bytes.Equal(fb.draws[0].uniform[:64], fb.draws[1].uniform[:64]) {
		t.Error("both draws carry the same model matrix")
	}
}
