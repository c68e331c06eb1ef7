// Package draw_assembler converts a posed model into an ordered stream of
// per-primitive draw submissions. Each frame it walks the scene graph in
// deterministic pre-order, resolves the effective model transform for every
// primitive, packs the per-draw uniform block, and hands the result to a Sink
// in traversal order. It touches no GPU state itself, which keeps it testable
// without a device.
package draw_assembler

import (
	"fmt"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameInputs carries the per-frame state shared by every draw: camera
// matrices and the light direction. The same FrameInputs is packed into every
// uniform record of the frame.
type FrameInputs struct {
	// View is the camera view matrix.
	View mgl32.Mat4

	// Projection is the camera projection matrix.
	Projection mgl32.Mat4

	// LightDirection is the directional light vector, w unused.
	LightDirection mgl32.Vec4
}

// Item is one assembled draw: the primitive it targets, its packed uniform
// block, and the joint palette for skinned primitives (nil otherwise).
type Item struct {
	// NodeIndex is the scene graph arena index of the mesh-carrying node.
	NodeIndex int

	// MeshIndex and PrimitiveIndex identify the primitive within the model.
	MeshIndex      int
	PrimitiveIndex int

	// Skinned reports whether this draw uses the skinned vertex path.
	Skinned bool

	// Uniform is the fully populated per-draw uniform block.
	Uniform model.GPUDrawUniform

	// Joints is the fixed-capacity joint palette for skinned draws, nil for
	// static draws. Primitives of the same node share one palette.
	Joints *model.GPUJointMatrices
}

// Sink receives assembled draws in scene graph traversal order.
type Sink interface {
	// SubmitDraw consumes one assembled draw. Returning an error aborts the
	// rest of the frame's assembly.
	//
	// Parameters:
	//   - item: the assembled draw
	//
	// Returns:
	//   - error: error to abort the frame
	SubmitDraw(item Item) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(item Item) error

// SubmitDraw calls f(item).
func (f SinkFunc) SubmitDraw(item Item) error {
	return f(item)
}

// assemblerImpl is the implementation of the Assembler interface.
type assemblerImpl struct{}

// Assembler walks a model's scene graph each frame and emits one Item per
// primitive instance, in deterministic traversal order. Draw calls are
// sequenced exactly as the graph declares them; there is no material or depth
// sort.
type Assembler interface {
	// Assemble walks the model's scene graph and submits one draw per
	// primitive of every mesh-carrying node. The model must already be posed
	// for this frame (Update called) since node world matrices and skin joint
	// matrices are read as-is.
	//
	// Skinned primitives get the identity matrix as their effective model
	// transform: the joint palette already carries each vertex into world
	// space, and stacking the node's world transform on top would
	// double-transform them. Static primitives use the node's world matrix.
	//
	// Parameters:
	//   - m: the posed model to assemble draws for
	//   - frame: the shared per-frame camera and light state
	//   - sink: the receiver of assembled draws, called in traversal order
	//
	// Returns:
	//   - error: the first error returned by the sink, or nil
	Assemble(m model.Model, frame FrameInputs, sink Sink) error
}

var _ Assembler = &assemblerImpl{}

// NewAssembler creates a new Assembler.
//
// Returns:
//   - Assembler: the assembler
func NewAssembler() Assembler {
	return &assemblerImpl{}
}

func (a *assemblerImpl) Assemble(m model.Model, frame FrameInputs, sink Sink) error {
	if m == nil || sink == nil {
		return nil
	}
	g := m.Graph()
	if g == nil {
		return nil
	}

	meshes := m.Meshes()
	skins := m.Skins()

	var submitErr error
	g.TraverseMeshNodes(func(n *scenegraph.Node) {
		if submitErr != nil {
			return
		}
		if n.Mesh < 0 || n.Mesh >= len(meshes) {
			// Dangling mesh reference: skip the node, keep the frame alive.
			return
		}
		mesh := &meshes[n.Mesh]

		var sk *skin.Skin
		if n.Skin != scenegraph.NoRef && n.Skin >= 0 && n.Skin < len(skins) {
			sk = skins[n.Skin]
		}

		// All skinned primitives of this node share one palette; build it at
		// most once per node.
		var palette *model.GPUJointMatrices

		for pi := range mesh.Primitives {
			prim := &mesh.Primitives[pi]
			skinned := prim.Skinned && sk != nil

			effective := n.World
			if skinned {
				effective = mgl32.Ident4()
			}

			mat := m.Material(prim.Material)

			item := Item{
				NodeIndex:      n.Index,
				MeshIndex:      n.Mesh,
				PrimitiveIndex: pi,
				Skinned:        skinned,
				Uniform:        packUniform(effective, frame, mat, prim, skinned),
			}

			if skinned {
				if palette == nil {
					p := model.NewGPUJointMatrices(sk)
					palette = &p
				}
				item.Joints = palette
			}

			if err := sink.SubmitDraw(item); err != nil {
				submitErr = fmt.Errorf("draw submission for node %d mesh %d primitive %d: %w", n.Index, n.Mesh, pi, err)
				return
			}
		}
	})

	return submitErr
}

// packUniform fills the fixed-layout per-draw uniform block from the effective
// model transform, the frame state, and the resolved material.
func packUniform(effective mgl32.Mat4, frame FrameInputs, mat model.Material, prim *model.Primitive, skinned bool) model.GPUDrawUniform {
	return model.GPUDrawUniform{
		Model:                   [16]float32(effective),
		View:                    [16]float32(frame.View),
		Projection:              [16]float32(frame.Projection),
		NormalMatrix:            [16]float32(common.NormalMatrix(effective)),
		LightDirection:          [4]float32(frame.LightDirection),
		BaseColorFactor:         mat.BaseColorFactor,
		HasSkin:                 boolFlag(skinned),
		HasBaseColorTex:         boolFlag(mat.BaseColorTexture != model.NoTexture),
		HasNormals:              boolFlag(prim.HasNormals),
		HasMetallicRoughnessTex: boolFlag(mat.MetallicRoughnessTexture != model.NoTexture),
		MetallicFactor:          mat.MetallicFactor,
		RoughnessFactor:         mat.RoughnessFactor,
		NormalScale:             mat.NormalScale,
		HasNormalTex:            boolFlag(mat.NormalTexture != model.NoTexture),
		EmissiveFactor:          mat.EmissiveFactor,
		HasEmissiveTex:          boolFlag(mat.EmissiveTexture != model.NoTexture),
	}
}

// boolFlag converts a bool to the 0/1 uint32 the shader flag fields expect.
func boolFlag(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
