package model

import (
	"testing"

	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

func singleNodeGraph(t *testing.T) *scenegraph.Graph {
	t.Helper()
	g, err := scenegraph.NewGraph([]scenegraph.Node{scenegraph.NewNode(0)}, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func namedClips(names ...string) []*animator.Clip {
	clips := make([]*animator.Clip, len(names))
	for i, n := range names {
		clips[i] = &animator.Clip{Name: n, Duration: 1}
	}
	return clips
}

func TestSetDefaultAnimationPreferredPresent(t *testing.T) {
	m := NewModel(WithClips(namedClips("idle", "walk", "run")))
	m.SetDefaultAnimation("walk")
	if m.ActiveClip() != 1 {
		t.Errorf("active clip: got %d, want 1", m.ActiveClip())
	}
}

func TestSetDefaultAnimationPreferredAbsent(t *testing.T) {
	m := NewModel(WithClips(namedClips("idle", "walk")))
	m.SetDefaultAnimation("fly")
	if m.ActiveClip() != 0 {
		t.Errorf("active clip: got %d, want 0 (first clip fallback)", m.ActiveClip())
	}
}

func TestSetDefaultAnimationNoClips(t *testing.T) {
	m := NewModel()
	m.SetDefaultAnimation("anything")
	if m.ActiveClip() != -1 {
		t.Errorf("active clip: got %d, want -1", m.ActiveClip())
	}
}

func TestSetActiveClipOutOfRangeStopsPlayback(t *testing.T) {
	m := NewModel(WithClips(namedClips("idle")))
	m.SetActiveClip(0)
	m.SetActiveClip(5)
	if m.ActiveClip() != -1 {
		t.Errorf("active clip: got %d, want -1", m.ActiveClip())
	}
}

func TestUpdateAppliesPoseAndPropagates(t *testing.T) {
	g := singleNodeGraph(t)
	clip := &animator.Clip{
		Name:     "slide",
		Duration: 1,
		Channels: []animator.Channel{{
			Node:          0,
			Path:          animator.PathTranslation,
			Interpolation: animator.InterpolationLinear,
			Times:         []float32{0, 1},
			VecKeys:       []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
		}},
	}

	m := NewModel(WithGraph(g), WithClips([]*animator.Clip{clip}))
	m.SetDefaultAnimation("")
	m.Update(0.5)

	world := g.Node(0).World
	if world[12] < 0.49 || world[12] > 0.51 {
		t.Errorf("world translation x after update: got %v, want ~0.5", world[12])
	}
}

func TestUpdateRefreshesSkinMatrices(t *testing.T) {
	g := singleNodeGraph(t)
	s := skin.NewSkin("", []int{0}, []mgl32.Mat4{mgl32.Ident4()})

	m := NewModel(
		WithGraph(g),
		WithSkins([]*skin.Skin{s}),
		WithBaseTransform(mgl32.Translate3D(0, 3, 0)),
	)
	m.Update(0)

	if got := s.Matrices[0][13]; got != 3 {
		t.Errorf("joint matrix translation y: got %v, want 3 from base transform", got)
	}
	if !m.Skinned() {
		t.Error("model with a skin should report Skinned")
	}
}

func TestUpdateWithoutClipStillPropagates(t *testing.T) {
	g := singleNodeGraph(t)
	m := NewModel(WithGraph(g))
	m.SetBaseTransform(mgl32.Translate3D(5, 0, 0))
	m.Update(0.016)

	if got := g.Node(0).World[12]; got != 5 {
		t.Errorf("world translation x: got %v, want 5", got)
	}
}

func TestMaterialFallback(t *testing.T) {
	m := NewModel(WithMaterials([]Material{{Name: "wood"}}))
	if got := m.Material(0).Name; got != "wood" {
		t.Errorf("material 0: got %q", got)
	}
	if got := m.Material(-1); got != DefaultMaterial() {
		t.Errorf("material -1 should be the default material, got %+v", got)
	}
	if got := m.Material(7); got != DefaultMaterial() {
		t.Errorf("material 7 should be the default material, got %+v", got)
	}
}

func TestAnimationNamesAndIndex(t *testing.T) {
	m := NewModel(WithClips(namedClips("idle", "walk")))
	names := m.AnimationNames()
	if len(names) != 2 || names[0] != "idle" || names[1] != "walk" {
		t.Errorf("animation names: got %v", names)
	}
	if m.GetAnimationIndex("walk") != 1 {
		t.Errorf("index of walk: got %d", m.GetAnimationIndex("walk"))
	}
	if m.GetAnimationIndex("fly") != -1 {
		t.Errorf("index of missing clip: got %d", m.GetAnimationIndex("fly"))
	}
}
