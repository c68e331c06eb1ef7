// Package skin computes joint matrix palettes for skinned meshes.
package skin

import (
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxJoints is the fixed joint capacity of the GPU palette. Skins with more
// joints are truncated at load time; skins with fewer are identity-padded
// when uploaded.
const MaxJoints = 180

// Skin binds a set of scene graph nodes to the joints of a skinned mesh.
// Joints and InverseBind are parallel; Matrices is the per-frame output of
// UpdateMatrices, same length.
type Skin struct {
	// Name is the optional skin name from the source document.
	Name string

	// Joints are scene graph arena indices, one per joint, in joint order.
	Joints []int

	// InverseBind holds the inverse bind matrix for each joint.
	InverseBind []mgl32.Mat4

	// Matrices holds the computed joint matrices, refreshed by UpdateMatrices.
	Matrices []mgl32.Mat4
}

// NewSkin returns a Skin over the given joints with its output slice sized.
// Joint count is capped at MaxJoints; the caller decides whether to warn
// about a truncation.
//
// Parameters:
//   - name: the skin name, possibly empty
//   - joints: scene graph arena indices in joint order
//   - inverseBind: inverse bind matrices parallel to joints
//
// Returns:
//   - *Skin: the skin, truncated to MaxJoints if needed
func NewSkin(name string, joints []int, inverseBind []mgl32.Mat4) *Skin {
	n := len(joints)
	if len(inverseBind) < n {
		n = len(inverseBind)
	}
	if n > MaxJoints {
		n = MaxJoints
	}

	return &Skin{
		Name:        name,
		Joints:      joints[:n],
		InverseBind: inverseBind[:n],
		Matrices:    make([]mgl32.Mat4, n),
	}
}

// Truncated reports whether the original joint set exceeded MaxJoints.
//
// Parameters:
//   - originalCount: the joint count before NewSkin capped it
//
// Returns:
//   - bool: true when joints were dropped
func Truncated(originalCount int) bool {
	return originalCount > MaxJoints
}

// UpdateMatrices recomputes every joint matrix from the current node world
// matrices: joint[i] = world(jointNode[i]) × inverseBind[i]. World matrices
// must already be current for this frame. Joints whose node index is out of
// range resolve to the bare inverse bind matrix.
//
// Parameters:
//   - g: the scene graph holding current world matrices
func (s *Skin) UpdateMatrices(g *scenegraph.Graph) {
	for i, jointNode := range s.Joints {
		n := g.Node(jointNode)
		if n == nil {
			s.Matrices[i] = s.InverseBind[i]
			continue
		}
		s.Matrices[i] = n.World.Mul4(s.InverseBind[i])
	}
}

// FixedPalette copies the joint matrices into a MaxJoints-sized array,
// identity-filling the unused tail so the GPU buffer upload is always the
// same size.
//
// Returns:
//   - [MaxJoints]mgl32.Mat4: the padded palette
func (s *Skin) FixedPalette() [MaxJoints]mgl32.Mat4 {
	var out [MaxJoints]mgl32.Mat4
	ident := mgl32.Ident4()
	for i := range out {
		if i < len(s.Matrices) {
			out[i] = s.Matrices[i]
		} else {
			out[i] = ident
		}
	}
	return out
}
