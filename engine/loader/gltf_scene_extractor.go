package loader

import (
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfSceneExtractorImpl is the implementation of the gltfSceneExtractor interface.
type gltfSceneExtractorImpl struct {
	parser gltfParser
}

// gltfSceneExtractor defines the interface for converting the glTF node
// hierarchy into a scene graph. This is internal to the loader package.
type gltfSceneExtractor interface {
	// ExtractGraph builds a scene graph from the document's node array.
	// Roots come from the default scene (or scene 0); a document with no
	// scenes falls back to every node that no other node claims as a child.
	// A node supplying a matrix instead of TRS fields is decomposed.
	// Construction fails when the node hierarchy is not a forest.
	//
	// Returns:
	//   - *scenegraph.Graph: the built graph
	//   - error: error if the node hierarchy is invalid
	ExtractGraph() (*scenegraph.Graph, error)
}

var _ gltfSceneExtractor = &gltfSceneExtractorImpl{}

// newGLTFSceneExtractor creates a new scene extractor using the given parser.
//
// Parameters:
//   - parser: the parser holding a loaded document
//
// Returns:
//   - gltfSceneExtractor: the extractor
func newGLTFSceneExtractor(parser gltfParser) gltfSceneExtractor {
	return &gltfSceneExtractorImpl{parser: parser}
}

func (e *gltfSceneExtractorImpl) ExtractGraph() (*scenegraph.Graph, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	nodes := make([]scenegraph.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		nodes[i] = gltfConvertNode(i, &doc.Nodes[i])
	}

	roots := gltfSceneRoots(doc)

	return scenegraph.NewGraph(nodes, roots)
}

// gltfConvertNode maps one glTF node onto an arena node, preferring explicit
// TRS fields and decomposing a matrix only when TRS is absent.
func gltfConvertNode(index int, src *gltfNode) scenegraph.Node {
	n := scenegraph.NewNode(index)
	n.Name = src.Name
	n.Children = src.Children

	if src.Mesh != nil {
		n.Mesh = *src.Mesh
	}
	if src.Skin != nil {
		n.Skin = *src.Skin
	}

	if src.Matrix != nil && src.Translation == nil && src.Rotation == nil && src.Scale == nil {
		m := mgl32.Mat4(*src.Matrix)
		n.Translation, n.Rotation, n.Scale = scenegraph.Decompose(m)
		return n
	}

	if src.Translation != nil {
		n.Translation = mgl32.Vec3{src.Translation[0], src.Translation[1], src.Translation[2]}
	}
	if src.Rotation != nil {
		// glTF stores quaternions as (x, y, z, w).
		n.Rotation = mgl32.Quat{
			W: src.Rotation[3],
			V: mgl32.Vec3{src.Rotation[0], src.Rotation[1], src.Rotation[2]},
		}
	}
	if src.Scale != nil {
		n.Scale = mgl32.Vec3{src.Scale[0], src.Scale[1], src.Scale[2]}
	}

	return n
}

// gltfSceneRoots picks the traversal roots: the default scene's node list when
// scenes exist, otherwise every node without a parent.
func gltfSceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		sceneIndex := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			sceneIndex = *doc.Scene
		}
		return doc.Scenes[sceneIndex].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}

	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}
