package scenegraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const tolerance = 1e-5

func matsApproxEqual(a, b mgl32.Mat4, tol float32) bool {
	for i := 0; i < 16; i++ {
		if float32(math.Abs(float64(a[i]-b[i]))) > tol {
			return false
		}
	}
	return true
}

func TestTwoNodeHierarchy(t *testing.T) {
	nodes := []Node{NewNode(0), NewNode(1)}
	nodes[0].Translation = mgl32.Vec3{0, 0, 5}
	nodes[0].Children = []int{1}
	nodes[1].Rotation = mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})

	g, err := NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	g.UpdateWorldMatrices(mgl32.Ident4())

	want := mgl32.Translate3D(0, 0, 5).Mul4(mgl32.HomogRotate3DY(float32(math.Pi / 2)))
	if !matsApproxEqual(g.Node(1).World, want, tolerance) {
		t.Errorf("child world matrix mismatch:\ngot  %v\nwant %v", g.Node(1).World, want)
	}
}

func TestBaseTransformAppliedToRoots(t *testing.T) {
	nodes := []Node{NewNode(0)}
	nodes[0].Translation = mgl32.Vec3{1, 0, 0}

	g, err := NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	base := mgl32.Scale3D(2, 2, 2)
	g.UpdateWorldMatrices(base)

	want := base.Mul4(mgl32.Translate3D(1, 0, 0))
	if !matsApproxEqual(g.Node(0).World, want, tolerance) {
		t.Errorf("root world matrix mismatch:\ngot  %v\nwant %v", g.Node(0).World, want)
	}
}

func TestWorldMatricesRecomputedFromMutatedTRS(t *testing.T) {
	nodes := []Node{NewNode(0)}
	g, err := NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	g.UpdateWorldMatrices(mgl32.Ident4())

	// Simulate an animation write between frames.
	g.Node(0).Translation = mgl32.Vec3{3, 4, 5}
	g.UpdateWorldMatrices(mgl32.Ident4())

	want := mgl32.Translate3D(3, 4, 5)
	if !matsApproxEqual(g.Node(0).World, want, tolerance) {
		t.Errorf("world matrix not recomputed after TRS mutation")
	}
}

func TestTraverseOrderDeterministic(t *testing.T) {
	// 0 → (1 → (3, 4), 2)
	nodes := []Node{NewNode(0), NewNode(1), NewNode(2), NewNode(3), NewNode(4)}
	nodes[0].Children = []int{1, 2}
	nodes[1].Children = []int{3, 4}

	g, err := NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	var order []int
	g.Traverse(func(n *Node) {
		order = append(order, n.Index)
	})

	want := []int{0, 1, 3, 4, 2}
	if len(order) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("visit %d: expected node %d, got %d", i, want[i], order[i])
		}
	}
}

func TestTraverseMeshNodes(t *testing.T) {
	nodes := []Node{NewNode(0), NewNode(1), NewNode(2)}
	nodes[0].Children = []int{1, 2}
	nodes[1].Mesh = 0

	g, err := NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	g.TraverseMeshNodes(func(n *Node) {
		count++
		if n.Index != 1 {
			t.Errorf("expected only node 1 to carry a mesh, visited %d", n.Index)
		}
	})
	if count != 1 {
		t.Errorf("expected 1 mesh node visit, got %d", count)
	}
}

func TestNewGraphRejectsCycle(t *testing.T) {
	nodes := []Node{NewNode(0), NewNode(1)}
	nodes[0].Children = []int{1}
	nodes[1].Children = []int{0}

	if _, err := NewGraph(nodes, []int{0}); err == nil {
		t.Error("expected cycle to be rejected")
	}
}

func TestNewGraphRejectsMultipleParents(t *testing.T) {
	nodes := []Node{NewNode(0), NewNode(1), NewNode(2)}
	nodes[0].Children = []int{2}
	nodes[1].Children = []int{2}

	if _, err := NewGraph(nodes, []int{0, 1}); err == nil {
		t.Error("expected shared child to be rejected")
	}
}

func TestNewGraphRejectsOutOfRangeIndices(t *testing.T) {
	nodes := []Node{NewNode(0)}
	nodes[0].Children = []int{7}
	if _, err := NewGraph(nodes, []int{0}); err == nil {
		t.Error("expected out-of-range child to be rejected")
	}

	nodes = []Node{NewNode(0)}
	if _, err := NewGraph(nodes, []int{3}); err == nil {
		t.Error("expected out-of-range root to be rejected")
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		t    mgl32.Vec3
		r    mgl32.Quat
		s    mgl32.Vec3
	}{
		{"identity", mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{"translation only", mgl32.Vec3{1, -2, 3}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{"rotation only", mgl32.Vec3{}, mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0}.Normalize()), mgl32.Vec3{1, 1, 1}},
		{"uniform scale", mgl32.Vec3{0.5, 0, 0}, mgl32.QuatRotate(1.2, mgl32.Vec3{1, 1, 0}.Normalize()), mgl32.Vec3{2, 2, 2}},
		{"non-uniform scale", mgl32.Vec3{-1, 4, 2}, mgl32.QuatRotate(2.1, mgl32.Vec3{1, 2, 3}.Normalize()), mgl32.Vec3{0.5, 2, 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Compose(tc.t, tc.r, tc.s)
			dt, dr, ds := Decompose(m)
			back := Compose(dt, dr, ds)
			if !matsApproxEqual(m, back, tolerance) {
				t.Errorf("compose(decompose(M)) != M:\nM    %v\nback %v", m, back)
			}
		})
	}
}

func TestDeepHierarchyDoesNotRecurse(t *testing.T) {
	// A chain deep enough to blow a recursive walk's stack comfortably fits
	// the iterative one.
	const depth = 100000
	nodes := make([]Node, depth)
	for i := range nodes {
		nodes[i] = NewNode(i)
		if i+1 < depth {
			nodes[i].Children = []int{i + 1}
		}
	}

	g, err := NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	g.UpdateWorldMatrices(mgl32.Ident4())

	visited := 0
	g.Traverse(func(n *Node) { visited++ })
	if visited != depth {
		t.Errorf("expected %d visits, got %d", depth, visited)
	}
}
