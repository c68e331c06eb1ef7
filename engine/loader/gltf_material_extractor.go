package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/Carmen-Shannon/rig-go/logger"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser

	// textureCache maps a source key (URI or bufferView) to an index into
	// textures. The cache is append-only; nothing invalidates a loaded image.
	textureCache map[string]int
	textures     []common.ImportedTexture
}

// gltfMaterialExtractor defines the interface for extracting materials and
// their texture images from a parsed glTF document. This is internal to the
// loader package.
type gltfMaterialExtractor interface {
	// ExtractAllMaterials converts every document material into a
	// model.Material and collects the referenced texture images. A texture
	// that cannot be fetched degrades that material reference to NoTexture
	// with a logged warning; the shading factors still apply, so a missing
	// image dims visuals instead of failing the load.
	//
	// Returns:
	//   - []model.Material: the materials, indexed like the document
	//   - []common.ImportedTexture: the deduplicated texture images
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]model.Material, []common.ImportedTexture, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor using the given parser.
//
// Parameters:
//   - parser: the parser holding a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{
		parser:       parser,
		textureCache: make(map[string]int),
	}
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]model.Material, []common.ImportedTexture, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}

	materials := make([]model.Material, len(doc.Materials))
	for i := range doc.Materials {
		materials[i] = e.extractMaterial(&doc.Materials[i])
	}

	return materials, e.textures, nil
}

// extractMaterial maps one glTF material's factors and texture references.
func (e *gltfMaterialExtractorImpl) extractMaterial(src *gltfMaterial) model.Material {
	mat := model.DefaultMaterial()
	mat.Name = src.Name
	mat.DoubleSided = src.DoubleSided

	if pbr := src.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mat.BaseColorFactor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			mat.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mat.RoughnessFactor = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			mat.BaseColorTexture = e.resolveTexture(pbr.BaseColorTexture.Index, src.Name, "base color")
		}
		if pbr.MetallicRoughnessTexture != nil {
			mat.MetallicRoughnessTexture = e.resolveTexture(pbr.MetallicRoughnessTexture.Index, src.Name, "metallic-roughness")
		}
	}

	if src.NormalTexture != nil {
		mat.NormalTexture = e.resolveTexture(src.NormalTexture.Index, src.Name, "normal")
		if src.NormalTexture.Scale != nil {
			mat.NormalScale = *src.NormalTexture.Scale
		}
	}

	if src.EmissiveFactor != nil {
		mat.EmissiveFactor = [4]float32{src.EmissiveFactor[0], src.EmissiveFactor[1], src.EmissiveFactor[2], 0}
	}
	if src.EmissiveTexture != nil {
		mat.EmissiveTexture = e.resolveTexture(src.EmissiveTexture.Index, src.Name, "emissive")
	}

	return mat
}

// resolveTexture loads (or finds cached) the image behind a texture index and
// returns its slot in the texture list, or model.NoTexture when the image
// cannot be fetched.
func (e *gltfMaterialExtractorImpl) resolveTexture(textureIndex int, materialName, usage string) int {
	idx, err := e.loadTexture(textureIndex)
	if err != nil {
		logger.Sugar.Warnw("texture unavailable, material falls back to factors",
			"material", materialName, "usage", usage, "error", err)
		return model.NoTexture
	}
	return idx
}

// loadTexture fetches the image for a texture index, deduplicating through
// the cache.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (int, error) {
	doc := e.parser.Document()

	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return 0, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := &doc.Textures[textureIndex]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return 0, fmt.Errorf("texture %d has no valid image source", textureIndex)
	}
	img := &doc.Images[*tex.Source]

	key := gltfImageCacheKey(img, *tex.Source)
	if cached, ok := e.textureCache[key]; ok {
		return cached, nil
	}

	data, mimeType, err := e.loadImageData(img)
	if err != nil {
		return 0, err
	}

	name := img.Name
	if name == "" {
		name = key
	}

	e.textures = append(e.textures, common.ImportedTexture{
		Name:     name,
		Key:      key,
		Data:     data,
		MimeType: mimeType,
	})
	idx := len(e.textures) - 1
	e.textureCache[key] = idx
	return idx, nil
}

// loadImageData fetches raw encoded image bytes from a URI or bufferView.
func (e *gltfMaterialExtractorImpl) loadImageData(img *gltfImage) ([]byte, string, error) {
	if img.URI != "" {
		if strings.HasPrefix(img.URI, "data:") {
			data, mimeType, err := gltfDecodeImageDataURI(img.URI)
			if err != nil {
				return nil, "", err
			}
			return data, mimeType, nil
		}

		fullPath := filepath.Join(e.parser.BaseDir(), img.URI)
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, "", &ResourceError{URI: img.URI, Err: err}
		}
		return data, gltfGuessMimeType(img.URI), nil
	}

	if img.BufferView != nil {
		data, err := e.parser.ReadBufferViewData(*img.BufferView)
		if err != nil {
			return nil, "", err
		}
		return data, img.MimeType, nil
	}

	return nil, "", fmt.Errorf("image has neither URI nor bufferView")
}

// gltfImageCacheKey produces the dedup key for an image source.
func gltfImageCacheKey(img *gltfImage, imageIndex int) string {
	if img.URI != "" {
		if strings.HasPrefix(img.URI, "data:") {
			return fmt.Sprintf("dataURI:image:%d", imageIndex)
		}
		return "uri:" + img.URI
	}
	if img.BufferView != nil {
		return fmt.Sprintf("bufferView:%d", *img.BufferView)
	}
	return fmt.Sprintf("image:%d", imageIndex)
}

// gltfDecodeImageDataURI decodes a data: URI carrying an encoded image and
// reports its media type.
func gltfDecodeImageDataURI(uri string) ([]byte, string, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, "", errInvalidBufferURI
	}
	header := uri[5:commaIdx]

	mimeType := header
	if semi := strings.Index(header, ";"); semi >= 0 {
		mimeType = header[:semi]
	}

	p := &gltfParserImpl{}
	data, err := p.loadDataURI(uri)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

// gltfGuessMimeType infers a media type from a file extension.
func gltfGuessMimeType(uri string) string {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}
