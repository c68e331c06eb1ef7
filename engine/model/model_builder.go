package model

import (
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithGraph is an option builder that sets the scene graph of the Model.
//
// Parameters:
//   - g: the scene graph to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the graph option to a model
func WithGraph(g *scenegraph.Graph) ModelBuilderOption {
	return func(m *model) {
		m.graph = g
	}
}

// WithMeshes is an option builder that sets the mesh list of the Model.
//
// Parameters:
//   - meshes: the meshes to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes []Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}

// WithMaterials is an option builder that sets the material list of the Model.
//
// Parameters:
//   - materials: the materials to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option to a model
func WithMaterials(materials []Material) ModelBuilderOption {
	return func(m *model) {
		m.materials = materials
	}
}

// WithTextures is an option builder that sets the texture list of the Model.
//
// Parameters:
//   - textures: the decoded textures to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the textures option to a model
func WithTextures(textures []common.ImportedTexture) ModelBuilderOption {
	return func(m *model) {
		m.textures = textures
	}
}

// WithSkins is an option builder that sets the skins of the Model.
//
// Parameters:
//   - skins: the skins to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the skins option to a model
func WithSkins(skins []*skin.Skin) ModelBuilderOption {
	return func(m *model) {
		m.skins = skins
	}
}

// WithClips is an option builder that sets the animation clips of the Model.
//
// Parameters:
//   - clips: the animation clips to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the clips option to a model
func WithClips(clips []*animator.Clip) ModelBuilderOption {
	return func(m *model) {
		m.clips = clips
	}
}

// WithBaseTransform is an option builder that sets the model-level transform
// applied above every scene graph root.
//
// Parameters:
//   - t: the base transform to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the base transform option to a model
func WithBaseTransform(t mgl32.Mat4) ModelBuilderOption {
	return func(m *model) {
		m.baseTransform = t
	}
}
