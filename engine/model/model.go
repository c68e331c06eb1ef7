// Package model aggregates everything a loaded asset contributes: the scene
// graph, meshes, materials, textures, skins and animation clips, plus the
// playback state that advances them each frame.
package model

import (
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name          string
	graph         *scenegraph.Graph
	meshes        []Mesh
	materials     []Material
	textures      []common.ImportedTexture
	skins         []*skin.Skin
	clips         []*animator.Clip
	baseTransform mgl32.Mat4
	activeClip    int
	sampler       *animator.Sampler
}

// Model defines the interface for a loaded 3D asset. A Model owns a scene
// graph and the resources its nodes reference; Update advances the active
// animation and refreshes world matrices and joint palettes, after which the
// draw assembler can walk the graph. It is produced by the Loader.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Graph retrieves the model's scene graph.
	//
	// Returns:
	//   - *scenegraph.Graph: the scene graph
	Graph() *scenegraph.Graph

	// Meshes retrieves the model's mesh list, indexed by Node.Mesh.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// Materials retrieves the model's material list, indexed by
	// Primitive.Material.
	//
	// Returns:
	//   - []Material: the materials
	Materials() []Material

	// Material resolves a primitive's material reference, falling back to the
	// default material for out-of-range indices.
	//
	// Parameters:
	//   - index: the material index from a Primitive
	//
	// Returns:
	//   - Material: the resolved material
	Material(index int) Material

	// Textures retrieves the decoded texture images, indexed by the Material
	// texture fields.
	//
	// Returns:
	//   - []common.ImportedTexture: the textures
	Textures() []common.ImportedTexture

	// Skins retrieves the model's skins, indexed by Node.Skin.
	//
	// Returns:
	//   - []*skin.Skin: the skins
	Skins() []*skin.Skin

	// Skinned reports whether any mesh in this model uses skeletal animation.
	//
	// Returns:
	//   - bool: true if the model has at least one skin
	Skinned() bool

	// Clips retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*animator.Clip: the animation clips
	Clips() []*animator.Clip

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the clip count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of a clip by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the clip name to search for
	//
	// Returns:
	//   - int: the clip index, or -1 if not found
	GetAnimationIndex(name string) int

	// ActiveClip returns the index of the playing clip, or -1 when nothing
	// plays.
	//
	// Returns:
	//   - int: the active clip index, or -1
	ActiveClip() int

	// SetActiveClip starts playing the clip at the given index from time 0.
	// An out-of-range index stops playback.
	//
	// Parameters:
	//   - index: the clip index to play
	SetActiveClip(index int)

	// SetDefaultAnimation picks the initial clip: the clip named preferred if
	// present, otherwise the first clip, otherwise none.
	//
	// Parameters:
	//   - preferred: the clip name to prefer, possibly empty
	SetDefaultAnimation(preferred string)

	// BaseTransform returns the model-level transform applied above every
	// scene graph root.
	//
	// Returns:
	//   - mgl32.Mat4: the base transform
	BaseTransform() mgl32.Mat4

	// SetBaseTransform replaces the model-level transform.
	//
	// Parameters:
	//   - m: the new base transform
	SetBaseTransform(m mgl32.Mat4)

	// Update advances the active animation by elapsed seconds, re-poses the
	// graph, propagates world matrices, and refreshes every skin's joint
	// matrices. With no active clip the graph still propagates so base
	// transform changes take effect.
	//
	// Parameters:
	//   - elapsed: seconds since the previous update
	Update(elapsed float32)
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		baseTransform: mgl32.Ident4(),
		activeClip:    -1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Graph() *scenegraph.Graph {
	return m.graph
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) Materials() []Material {
	return m.materials
}

func (m *model) Material(index int) Material {
	if index < 0 || index >= len(m.materials) {
		return DefaultMaterial()
	}
	return m.materials[index]
}

func (m *model) Textures() []common.ImportedTexture {
	return m.textures
}

func (m *model) Skins() []*skin.Skin {
	return m.skins
}

func (m *model) Skinned() bool {
	return len(m.skins) > 0
}

func (m *model) Clips() []*animator.Clip {
	return m.clips
}

func (m *model) AnimationCount() int {
	return len(m.clips)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.clips))
	for i, clip := range m.clips {
		names[i] = clip.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, clip := range m.clips {
		if clip.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) ActiveClip() int {
	return m.activeClip
}

func (m *model) SetActiveClip(index int) {
	if index < 0 || index >= len(m.clips) {
		m.activeClip = -1
		m.sampler = nil
		return
	}
	m.activeClip = index
	m.sampler = animator.NewSampler(m.clips[index])
}

func (m *model) SetDefaultAnimation(preferred string) {
	if len(m.clips) == 0 {
		m.SetActiveClip(-1)
		return
	}
	if preferred != "" {
		if idx := m.GetAnimationIndex(preferred); idx >= 0 {
			m.SetActiveClip(idx)
			return
		}
	}
	m.SetActiveClip(0)
}

func (m *model) BaseTransform() mgl32.Mat4 {
	return m.baseTransform
}

func (m *model) SetBaseTransform(t mgl32.Mat4) {
	m.baseTransform = t
}

func (m *model) Update(elapsed float32) {
	if m.graph == nil {
		return
	}

	// Pose, then propagate, then skin. The ordering is load-bearing: joint
	// matrices read world matrices, which read the sampled TRS state.
	if m.sampler != nil {
		m.sampler.Advance(elapsed)
		m.sampler.Apply(m.graph)
	}

	m.graph.UpdateWorldMatrices(m.baseTransform)

	for _, s := range m.skins {
		s.UpdateMatrices(m.graph)
	}
}
