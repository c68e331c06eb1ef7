// Package renderer owns the GPU-facing half of the frame: it uploads model
// geometry and material textures once at load time, then each frame feeds the
// draw assembler's output to the active backend as full-contents buffer writes
// and draw calls. Texture staging data is cached by content key and shared
// across primitives; the cache is append-only for the life of the renderer.
package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/Carmen-Shannon/rig-go/engine/renderer/draw_assembler"
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/Carmen-Shannon/rig-go/engine/window"
	"github.com/Carmen-Shannon/rig-go/logger"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	backendType RendererBackendType
	backend     rendererBackend

	assembler draw_assembler.Assembler

	// primitives maps a model primitive to its shared backend resources,
	// keyed by model name and mesh/primitive index.
	primitives map[primitiveKey]primitiveHandle

	// instances maps each node's use of a primitive to its per-draw backend
	// resources. Two nodes referencing the same mesh must not share a uniform
	// buffer: every write of a frame lands before the command buffer runs.
	instances map[instanceKey]instanceHandle

	// textureCache holds decoded staging data keyed by texture content key
	// (source URI or bufferView reference). Append-only, shared across all
	// primitives that reference the same texture.
	textureCache map[string]common.TextureStagingData

	pendingPresentMode *PresentMode
}

// primitiveKey identifies one primitive's shared GPU resources.
type primitiveKey struct {
	model string
	mesh  int
	prim  int
}

// instanceKey identifies one primitive-instance's per-draw GPU resources.
type instanceKey struct {
	model string
	node  int
	mesh  int
	prim  int
}

// Renderer defines the interface for the rendering system. It manages the GPU
// resources of loaded models and turns a posed model into draw submissions
// each frame. SceneGraph, AnimationSampler and SkinResolver never see this
// interface; only the draw path does.
type Renderer interface {
	// InitModel creates GPU resources for every primitive of the model:
	// vertex/index buffers, uniform buffers, material textures and bind
	// groups. Texture decode failures degrade to neutral fallback textures
	// rather than failing the model.
	//
	// Parameters:
	//   - m: the loaded model to upload
	//
	// Returns:
	//   - error: error if GPU resource creation fails
	InitModel(m model.Model) error

	// RenderFrame draws the given models in order: begins the frame, assembles
	// and submits every primitive draw in scene graph traversal order, ends
	// the frame and presents. Models must already be posed for this frame.
	//
	// Parameters:
	//   - models: the posed models to draw
	//   - frame: the shared camera and light state
	//
	// Returns:
	//   - error: error if the frame could not be started or a draw failed
	RenderFrame(models []model.Model, frame draw_assembler.FrameInputs) error

	// Resize reconfigures the surface for a new window size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A Resize call is required
	// after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type,
// bound to the given window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the platform surface descriptor
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backendType:  backendType,
		assembler:    draw_assembler.NewAssembler(),
		primitives:   make(map[primitiveKey]primitiveHandle),
		instances:    make(map[instanceKey]instanceHandle),
		textureCache: make(map[string]common.TextureStagingData),
	}

	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor())
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(win.Width(), win.Height())
	return r
}

func (r *renderer) InitModel(m model.Model) error {
	if m == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	meshes := m.Meshes()
	for mi := range meshes {
		for pi := range meshes[mi].Primitives {
			key := primitiveKey{model: m.Name(), mesh: mi, prim: pi}
			if _, exists := r.primitives[key]; exists {
				continue
			}

			prim := &meshes[mi].Primitives[pi]
			mat := m.Material(prim.Material)

			desc := PrimitiveDescriptor{
				Label:       fmt.Sprintf("%s/mesh%d/prim%d", m.Name(), mi, pi),
				VertexData:  prim.VertexData,
				VertexCount: prim.VertexCount,
				IndexData:   prim.IndexData,
				IndexCount:  prim.IndexCount,
				Skinned:     prim.Skinned,
				DoubleSided: mat.DoubleSided,
				Textures: PrimitiveTextures{
					BaseColor:         r.resolveTexture(m, mat.BaseColorTexture, common.FallbackBaseColorPixel),
					Normal:            r.resolveTexture(m, mat.NormalTexture, common.FallbackNormalPixel),
					MetallicRoughness: r.resolveTexture(m, mat.MetallicRoughnessTexture, common.FallbackMetallicRoughnessPixel),
					Emissive:          r.resolveTexture(m, mat.EmissiveTexture, common.FallbackBaseColorPixel),
				},
			}

			h, err := r.backend.CreatePrimitive(desc)
			if err != nil {
				return fmt.Errorf("failed to create GPU resources for %s: %w", desc.Label, err)
			}
			r.primitives[key] = h
		}
	}

	return r.initInstances(m)
}

// initInstances walks the model's scene graph and allocates per-draw resources
// for every node's use of every primitive. The walk mirrors the assembler's so
// each assembled draw finds its instance.
func (r *renderer) initInstances(m model.Model) error {
	g := m.Graph()
	if g == nil {
		return nil
	}

	name := m.Name()
	meshes := m.Meshes()

	var initErr error
	g.TraverseMeshNodes(func(n *scenegraph.Node) {
		if initErr != nil {
			return
		}
		if n.Mesh < 0 || n.Mesh >= len(meshes) {
			return
		}

		for pi := range meshes[n.Mesh].Primitives {
			key := instanceKey{model: name, node: n.Index, mesh: n.Mesh, prim: pi}
			if _, exists := r.instances[key]; exists {
				continue
			}

			ph, ok := r.primitives[primitiveKey{model: name, mesh: n.Mesh, prim: pi}]
			if !ok {
				continue
			}

			label := fmt.Sprintf("%s/node%d/mesh%d/prim%d", name, n.Index, n.Mesh, pi)
			inst, err := r.backend.CreateInstance(ph, label)
			if err != nil {
				initErr = fmt.Errorf("failed to create instance resources for %s: %w", label, err)
				return
			}
			r.instances[key] = inst
		}
	})

	return initErr
}

func (r *renderer) RenderFrame(models []model.Model, frame draw_assembler.FrameInputs) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	defer func() {
		r.backend.EndFrame()
		r.backend.Present()
	}()

	for _, m := range models {
		if m == nil {
			continue
		}
		name := m.Name()

		err := r.assembler.Assemble(m, frame, draw_assembler.SinkFunc(func(item draw_assembler.Item) error {
			h, ok := r.instances[instanceKey{model: name, node: item.NodeIndex, mesh: item.MeshIndex, prim: item.PrimitiveIndex}]
			if !ok {
				// Model was never uploaded; skip its draws instead of failing
				// the whole frame.
				return nil
			}

			var jointData []byte
			if item.Joints != nil {
				jointData = item.Joints.Marshal()
			}
			return r.backend.Draw(h, item.Uniform.Marshal(), jointData)
		}))
		if err != nil {
			return fmt.Errorf("failed to draw model %s: %w", name, err)
		}
	}

	return nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

// resolveTexture returns staging data for a material texture reference:
// the cached decode when the content key was seen before, a fresh decode
// otherwise, and the 1×1 fallback pixel when the reference is absent or the
// decode fails. Failed decodes degrade visuals instead of failing the model.
func (r *renderer) resolveTexture(m model.Model, index int, fallback [4]byte) common.TextureStagingData {
	if index == model.NoTexture {
		return common.FallbackTexture(fallback)
	}

	textures := m.Textures()
	if index < 0 || index >= len(textures) {
		logger.Sugar.Warnw("material references missing texture, using fallback", "model", m.Name(), "texture", index)
		return common.FallbackTexture(fallback)
	}

	tex := &textures[index]
	if tex.Key != "" {
		if cached, ok := r.textureCache[tex.Key]; ok {
			return cached
		}
	}

	pixels, width, height, err := tex.Decode()
	if err != nil {
		logger.Sugar.Warnw("texture decode failed, using fallback", "model", m.Name(), "texture", tex.Name, "error", err)
		return common.FallbackTexture(fallback)
	}

	staging := common.TextureStagingData{Pixels: pixels, Width: width, Height: height}
	if tex.Key != "" {
		r.textureCache[tex.Key] = staging
	}
	return staging
}
