package loader

import (
	"io"

	"github.com/Carmen-Shannon/rig-go/engine/model"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	// This extracts the scene graph, meshes, materials, skins, and animations.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// LoadMeshOnly imports only scene, mesh and material data from the given file path.
	// Skin and animation extraction is skipped for faster loading of static models.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.Model: the imported model with graph, meshes and materials only
	//   - error: error if loading fails
	LoadMeshOnly(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the caller's name for the stream, used as the model name
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error)
}
