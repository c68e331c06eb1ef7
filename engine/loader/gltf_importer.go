package loader

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/rig-go/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and all extractors to produce a complete Model.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts everything into a Model:
	// scene graph, meshes, materials, textures, skins, and animation clips.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - model.Model: the fully populated model
	//   - error: error if import fails
	Import(path string) (model.Model, error)

	// ImportReader loads a glTF document from a reader and extracts all data.
	// The reader should provide a complete glTF JSON or GLB binary stream.
	//
	// Parameters:
	//   - name: the caller's name for the stream, used as the model name
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - model.Model: the fully populated model
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (model.Model, error)

	// ImportMeshOnly loads a glTF/GLB file and extracts only scene, mesh and
	// material data. Skin and animation extraction is skipped for faster
	// loading of static models.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - model.Model: the model with graph, meshes and materials only
	//   - error: error if import fails
	ImportMeshOnly(path string) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}

	return imp.importFromParser(parser, path, true)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, err
	}

	return imp.importFromParser(parser, name, true)
}

func (imp *gltfImporterImpl) ImportMeshOnly(path string) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}

	return imp.importFromParser(parser, path, false)
}

// importFromParser performs an import from a parser that has already loaded a
// document. When full is false, skins and animations are skipped.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackPath: optional file path used as a fallback for model naming
//   - full: extract skins and animations in addition to scene/mesh/material data
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string, full bool) (model.Model, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, wrapFormat(fallbackPath, errNoDocument)
	}

	sceneExtractor := newGLTFSceneExtractor(parser)
	meshExtractor := newGLTFMeshExtractor(parser)
	materialExtractor := newGLTFMaterialExtractor(parser)

	graph, err := sceneExtractor.ExtractGraph()
	if err != nil {
		// A cyclic or multiply-parented node set is a document defect.
		return nil, wrapFormat(fallbackPath, fmt.Errorf("scene extraction failed: %w", err))
	}

	meshes, err := meshExtractor.ExtractAllMeshes()
	if err != nil {
		return nil, wrapFormat(fallbackPath, fmt.Errorf("mesh extraction failed: %w", err))
	}

	materials, textures, err := materialExtractor.ExtractAllMaterials()
	if err != nil {
		return nil, wrapFormat(fallbackPath, fmt.Errorf("material extraction failed: %w", err))
	}

	options := []model.ModelBuilderOption{
		model.WithName(gltfExtractModelName(doc, fallbackPath)),
		model.WithGraph(graph),
		model.WithMeshes(meshes),
		model.WithMaterials(materials),
		model.WithTextures(textures),
	}

	if full {
		if len(doc.Skins) > 0 {
			skinExtractor := newGLTFSkinExtractor(parser)
			skins, err := skinExtractor.ExtractAllSkins()
			if err != nil {
				return nil, wrapFormat(fallbackPath, fmt.Errorf("skin extraction failed: %w", err))
			}
			options = append(options, model.WithSkins(skins))
		}

		if len(doc.Animations) > 0 {
			animationExtractor := newGLTFAnimationExtractor(parser)
			clips, err := animationExtractor.ExtractAllAnimations()
			if err != nil {
				return nil, wrapFormat(fallbackPath, fmt.Errorf("animation extraction failed: %w", err))
			}
			options = append(options, model.WithClips(clips))
		}
	}

	return model.NewModel(options...), nil
}

// gltfExtractModelName derives a model name. The load path (or reader name)
// wins because it is unique per asset: scene names collide across documents
// (every default Blender export names its scene "Scene"), and the renderer
// keys GPU resources by model name. The scene name is only a fallback for
// unnamed streams.
func gltfExtractModelName(doc *gltfDocument, fallbackPath string) string {
	if fallbackPath != "" {
		return fallbackPath
	}

	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}

	return "unnamed_model"
}
