package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/Carmen-Shannon/rig-go/logger"
)

// Standard glTF attribute semantics read by the mesh extractor.
const (
	gltfAttrPosition = "POSITION"
	gltfAttrNormal   = "NORMAL"
	gltfAttrTexCoord = "TEXCOORD_0"
	gltfAttrColor    = "COLOR_0"
	gltfAttrJoints   = "JOINTS_0"
	gltfAttrWeights  = "WEIGHTS_0"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor defines the interface for extracting mesh geometry from a
// parsed glTF document into GPU-ready primitives. This is internal to the
// loader package.
type gltfMeshExtractor interface {
	// ExtractAllMeshes converts every document mesh into a model.Mesh with
	// marshaled vertex and index buffers. Primitives with JOINTS_0 and
	// WEIGHTS_0 attributes come out in the skinned vertex layout; everything
	// else uses the static layout. Non-triangle primitives are skipped with
	// a warning.
	//
	// Returns:
	//   - []model.Mesh: the extracted meshes, indexed like the document
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor using the given parser.
//
// Parameters:
//   - parser: the parser holding a loaded document
//
// Returns:
//   - gltfMeshExtractor: the extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	meshes := make([]model.Mesh, len(doc.Meshes))
	for i := range doc.Meshes {
		src := &doc.Meshes[i]
		mesh := model.Mesh{Name: src.Name}

		for j := range src.Primitives {
			prim, ok, err := e.extractPrimitive(&src.Primitives[j])
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", i, j, err)
			}
			if !ok {
				logger.Sugar.Warnw("skipping non-triangle primitive",
					"mesh", i, "primitive", j)
				continue
			}
			mesh.Primitives = append(mesh.Primitives, prim)
		}

		meshes[i] = mesh
	}

	return meshes, nil
}

// extractPrimitive reads one primitive's attributes into a marshaled vertex
// buffer. The second return is false for topologies other than triangles.
func (e *gltfMeshExtractorImpl) extractPrimitive(src *gltfPrimitive) (model.Primitive, bool, error) {
	if src.Mode != nil && *src.Mode != gltfPrimitiveModeTriangles {
		return model.Primitive{}, false, nil
	}

	posIdx, ok := src.Attributes[gltfAttrPosition]
	if !ok {
		return model.Primitive{}, false, fmt.Errorf("primitive has no %s attribute", gltfAttrPosition)
	}

	positions, err := e.parser.ReadVec3Accessor(posIdx)
	if err != nil {
		return model.Primitive{}, false, fmt.Errorf("reading positions: %w", err)
	}
	count := len(positions)

	var normals [][3]float32
	hasNormals := false
	if idx, ok := src.Attributes[gltfAttrNormal]; ok {
		normals, err = e.parser.ReadVec3Accessor(idx)
		if err != nil {
			return model.Primitive{}, false, fmt.Errorf("reading normals: %w", err)
		}
		hasNormals = true
	}

	var texCoords [][2]float32
	if idx, ok := src.Attributes[gltfAttrTexCoord]; ok {
		texCoords, err = e.parser.ReadVec2Accessor(idx)
		if err != nil {
			return model.Primitive{}, false, fmt.Errorf("reading texcoords: %w", err)
		}
	}

	var colors [][4]float32
	if idx, ok := src.Attributes[gltfAttrColor]; ok {
		colors, err = e.parser.ReadVec4Accessor(idx)
		if err != nil {
			// COLOR_0 in a non-float encoding degrades to the default white
			// instead of failing the whole primitive.
			logger.Sugar.Warnw("ignoring vertex colors", "error", err)
			colors = nil
		}
	}

	jointsIdx, hasJoints := src.Attributes[gltfAttrJoints]
	weightsIdx, hasWeights := src.Attributes[gltfAttrWeights]
	skinned := hasJoints && hasWeights

	var joints [][4]uint32
	var weights [][4]float32
	if skinned {
		joints, err = e.parser.ReadJointsAccessor(jointsIdx)
		if err != nil {
			return model.Primitive{}, false, fmt.Errorf("reading joints: %w", err)
		}
		weights, err = e.parser.ReadWeightsAccessor(weightsIdx)
		if err != nil {
			return model.Primitive{}, false, fmt.Errorf("reading weights: %w", err)
		}
	}

	prim := model.Primitive{
		VertexCount: count,
		Material:    -1,
		Skinned:     skinned,
		HasNormals:  hasNormals,
	}
	if src.Material != nil {
		prim.Material = *src.Material
	}

	vertexSize := 48
	if skinned {
		vertexSize = 80
	}
	prim.VertexData = make([]byte, 0, count*vertexSize)

	for i := 0; i < count; i++ {
		var base model.GPUVertex
		base.Position = positions[i]
		if i < len(normals) {
			base.Normal = normals[i]
		}
		if i < len(texCoords) {
			base.TexCoord = texCoords[i]
		}
		if i < len(colors) {
			base.Color = colors[i]
		} else {
			base.Color = [4]float32{1, 1, 1, 1}
		}

		if skinned {
			sv := model.GPUSkinnedVertex{GPUVertex: base}
			if i < len(joints) {
				sv.JointIndices = joints[i]
			}
			if i < len(weights) {
				sv.JointWeights = weights[i]
			}
			prim.VertexData = append(prim.VertexData, sv.Marshal()...)
		} else {
			prim.VertexData = append(prim.VertexData, base.Marshal()...)
		}
	}

	if src.Indices != nil {
		indices, err := e.parser.ReadIndicesAccessor(*src.Indices)
		if err != nil {
			return model.Primitive{}, false, fmt.Errorf("reading indices: %w", err)
		}
		prim.IndexCount = len(indices)
		prim.IndexData = make([]byte, len(indices)*4)
		for i, idx := range indices {
			binary.LittleEndian.PutUint32(prim.IndexData[i*4:(i+1)*4], idx)
		}
	}

	return prim, true, nil
}
