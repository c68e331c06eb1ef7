package scenegraph

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Common errors returned by graph construction.
var (
	errChildOutOfRange = errors.New("child index out of range")
	errMultipleParents = errors.New("node has multiple parents")
	errGraphCycle      = errors.New("node graph contains a cycle")
	errRootOutOfRange  = errors.New("root index out of range")
)

// Graph is an indexed forest of nodes with cached world matrices.
// The arena is fixed after construction; only TRS state and the cached
// matrices change frame-to-frame.
type Graph struct {
	nodes []Node
	roots []int
}

// NewGraph validates the node arena and root list and returns a Graph.
// Construction fails when a child or root index is out of range, a node is
// claimed by more than one parent, or the children relation contains a cycle.
// A malformed asset must be rejected here rather than hanging the first
// update pass.
//
// Parameters:
//   - nodes: the node arena, indexed by Node.Index
//   - roots: arena indices of traversal entry points
//
// Returns:
//   - *Graph: the validated graph
//   - error: error if the node set is not a forest
func NewGraph(nodes []Node, roots []int) (*Graph, error) {
	parent := make([]int, len(nodes))
	for i := range parent {
		parent[i] = NoRef
	}

	for i := range nodes {
		for _, c := range nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("node %d child %d: %w", i, c, errChildOutOfRange)
			}
			if parent[c] != NoRef {
				return nil, fmt.Errorf("node %d claimed by parents %d and %d: %w", c, parent[c], i, errMultipleParents)
			}
			parent[c] = i
		}
	}

	// With single parents established, a cycle shows up as a parent chain
	// longer than the arena itself.
	for i := range nodes {
		steps := 0
		for p := parent[i]; p != NoRef; p = parent[p] {
			steps++
			if steps > len(nodes) {
				return nil, fmt.Errorf("node %d: %w", i, errGraphCycle)
			}
		}
	}

	for _, r := range roots {
		if r < 0 || r >= len(nodes) {
			return nil, fmt.Errorf("root %d: %w", r, errRootOutOfRange)
		}
	}

	return &Graph{nodes: nodes, roots: roots}, nil
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a pointer into the arena, or nil if the index is out of range.
//
// Parameters:
//   - index: the arena index
//
// Returns:
//   - *Node: the node, or nil
func (g *Graph) Node(index int) *Node {
	if index < 0 || index >= len(g.nodes) {
		return nil
	}
	return &g.nodes[index]
}

// Roots returns the arena indices of the traversal entry points.
func (g *Graph) Roots() []int {
	return g.roots
}

// UpdateWorldMatrices recomputes every node's local and world matrix top-down,
// with baseTransform acting as the implicit parent of all roots. Locals are
// always recomposed from TRS because animation sampling may have overwritten
// any of the three since the previous frame. Parents are processed strictly
// before their children; sibling order does not matter here.
//
// Parameters:
//   - baseTransform: the model-level transform applied above every root
func (g *Graph) UpdateWorldMatrices(baseTransform mgl32.Mat4) {
	type entry struct {
		index  int
		parent mgl32.Mat4
	}

	// Explicit stack: glTF scenes can nest arbitrarily deep.
	stack := make([]entry, 0, len(g.nodes))
	for _, r := range g.roots {
		stack = append(stack, entry{index: r, parent: baseTransform})
	}

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &g.nodes[e.index]
		n.Local = Compose(n.Translation, n.Rotation, n.Scale)
		n.World = e.parent.Mul4(n.Local)

		for _, c := range n.Children {
			stack = append(stack, entry{index: c, parent: n.World})
		}
	}
}

// Traverse visits every node reachable from the roots in depth-first
// pre-order, children in declared order. The visit order is deterministic,
// which the draw walk relies on for stable draw sequencing.
//
// Parameters:
//   - visit: callback invoked once per node
func (g *Graph) Traverse(visit func(n *Node)) {
	stack := make([]int, 0, len(g.nodes))
	for i := len(g.roots) - 1; i >= 0; i-- {
		stack = append(stack, g.roots[i])
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &g.nodes[idx]
		visit(n)

		// Push children reversed so the declared order pops first.
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// TraverseMeshNodes visits only the nodes carrying a mesh reference, in the
// same deterministic pre-order as Traverse.
//
// Parameters:
//   - visit: callback invoked once per mesh-carrying node
func (g *Graph) TraverseMeshNodes(visit func(n *Node)) {
	g.Traverse(func(n *Node) {
		if n.Mesh != NoRef {
			visit(n)
		}
	})
}
