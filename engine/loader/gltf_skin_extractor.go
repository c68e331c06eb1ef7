package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/Carmen-Shannon/rig-go/logger"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfSkinExtractorImpl is the implementation of the gltfSkinExtractor interface.
type gltfSkinExtractorImpl struct {
	parser gltfParser
}

// gltfSkinExtractor defines the interface for extracting skins (joint sets
// plus inverse bind matrices) from a parsed glTF document. This is internal
// to the loader package.
type gltfSkinExtractor interface {
	// ExtractAllSkins converts every document skin, truncating joint sets
	// past the fixed palette capacity with a logged warning. A skin without
	// inverse bind matrices gets identity matrices, per the glTF default.
	//
	// Returns:
	//   - []*skin.Skin: the skins, indexed like the document
	//   - error: error if extraction fails
	ExtractAllSkins() ([]*skin.Skin, error)
}

var _ gltfSkinExtractor = &gltfSkinExtractorImpl{}

// newGLTFSkinExtractor creates a new skin extractor using the given parser.
//
// Parameters:
//   - parser: the parser holding a loaded document
//
// Returns:
//   - gltfSkinExtractor: the extractor
func newGLTFSkinExtractor(parser gltfParser) gltfSkinExtractor {
	return &gltfSkinExtractorImpl{parser: parser}
}

func (e *gltfSkinExtractorImpl) ExtractAllSkins() ([]*skin.Skin, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	skins := make([]*skin.Skin, len(doc.Skins))
	for i := range doc.Skins {
		s, err := e.extractSkin(i, &doc.Skins[i])
		if err != nil {
			return nil, fmt.Errorf("skin %d: %w", i, err)
		}
		skins[i] = s
	}

	return skins, nil
}

// extractSkin builds one skin, reading its inverse bind matrices when present.
func (e *gltfSkinExtractorImpl) extractSkin(index int, src *gltfSkin) (*skin.Skin, error) {
	inverseBind := make([]mgl32.Mat4, len(src.Joints))

	if src.InverseBindMatrices != nil {
		mats, err := e.parser.ReadMat4Accessor(*src.InverseBindMatrices)
		if err != nil {
			return nil, fmt.Errorf("reading inverse bind matrices: %w", err)
		}
		if len(mats) < len(src.Joints) {
			return nil, fmt.Errorf("skin has %d joints but %d inverse bind matrices", len(src.Joints), len(mats))
		}
		for i := range src.Joints {
			inverseBind[i] = mgl32.Mat4(mats[i])
		}
	} else {
		for i := range inverseBind {
			inverseBind[i] = mgl32.Ident4()
		}
	}

	if skin.Truncated(len(src.Joints)) {
		logger.Sugar.Warnw("skin exceeds joint palette capacity, truncating",
			"skin", index, "name", src.Name,
			"joints", len(src.Joints), "capacity", skin.MaxJoints)
	}

	return skin.NewSkin(src.Name, src.Joints, inverseBind), nil
}
