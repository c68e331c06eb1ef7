// Package scenegraph implements the array-indexed node hierarchy that drives
// transform propagation. Nodes live in a flat arena and reference each other
// by integer index, never by pointer, so the structure is trivially copyable
// and free of ownership cycles.
package scenegraph

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NoRef marks an absent mesh or skin reference on a node.
const NoRef = -1

// Node is a single entry in the scene graph arena. Its world matrix is only
// valid after the parent's world matrix was computed in the same update pass;
// UpdateWorldMatrices guarantees that ordering.
type Node struct {
	// Index is the node's stable position in the arena.
	Index int

	// Name is the optional node name from the source document.
	Name string

	// Translation, Rotation, Scale are the local TRS state. Animation sampling
	// overwrites these fields; nothing else mutates them after construction.
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	// Local is the cached compose(T, R, S) matrix, recomputed each update pass.
	Local mgl32.Mat4

	// World is the cached parent.World × Local matrix.
	World mgl32.Mat4

	// Mesh is the mesh index this node renders, or NoRef.
	Mesh int

	// Skin is the skin index deforming this node's mesh, or NoRef.
	Skin int

	// Children are arena indices of child nodes, in declared order.
	Children []int
}

// NewNode returns a Node with identity TRS and no mesh or skin reference.
//
// Parameters:
//   - index: the node's arena index
//
// Returns:
//   - Node: the initialized node
func NewNode(index int) Node {
	return Node{
		Index:    index,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Local:    mgl32.Ident4(),
		World:    mgl32.Ident4(),
		Mesh:     NoRef,
		Skin:     NoRef,
	}
}
