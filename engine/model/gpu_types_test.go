package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

func f32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func u32At(t *testing.T, buf []byte, offset int) uint32 {
	t.Helper()
	return binary.LittleEndian.Uint32(buf[offset : offset+4])
}

func sequentialMat(start float32) [16]float32 {
	var m [16]float32
	for i := range m {
		m[i] = start + float32(i)
	}
	return m
}

func TestGPUDrawUniformLayout(t *testing.T) {
	u := GPUDrawUniform{
		Model:                   sequentialMat(100),
		View:                    sequentialMat(200),
		Projection:              sequentialMat(300),
		NormalMatrix:            sequentialMat(400),
		LightDirection:          [4]float32{1, 2, 3, 0},
		BaseColorFactor:         [4]float32{0.1, 0.2, 0.3, 0.4},
		HasSkin:                 1,
		HasBaseColorTex:         2,
		HasNormals:              3,
		HasMetallicRoughnessTex: 4,
		MetallicFactor:          0.5,
		RoughnessFactor:         0.6,
		NormalScale:             0.7,
		HasNormalTex:            5,
		EmissiveFactor:          [4]float32{0.8, 0.9, 1.0, 0},
		HasEmissiveTex:          6,
	}

	buf := u.Marshal()
	if len(buf) != GPUDrawUniformSize {
		t.Fatalf("marshaled size: got %d, want %d", len(buf), GPUDrawUniformSize)
	}

	matChecks := []struct {
		name   string
		offset int
		want   [16]float32
	}{
		{"model", 0, u.Model},
		{"view", 64, u.View},
		{"projection", 128, u.Projection},
		{"normal matrix", 192, u.NormalMatrix},
	}
	for _, c := range matChecks {
		for i := 0; i < 16; i++ {
			if got := f32At(t, buf, c.offset+i*4); got != c.want[i] {
				t.Errorf("%s element %d at offset %d: got %v, want %v", c.name, i, c.offset+i*4, got, c.want[i])
			}
		}
	}

	f32Checks := []struct {
		name   string
		offset int
		want   float32
	}{
		{"light direction x", 256, 1},
		{"light direction z", 264, 3},
		{"base color r", 272, 0.1},
		{"base color a", 284, 0.4},
		{"metallic factor", 304, 0.5},
		{"roughness factor", 308, 0.6},
		{"normal scale", 312, 0.7},
		{"emissive r", 320, 0.8},
		{"emissive b", 328, 1.0},
	}
	for _, c := range f32Checks {
		if got := f32At(t, buf, c.offset); got != c.want {
			t.Errorf("%s at offset %d: got %v, want %v", c.name, c.offset, got, c.want)
		}
	}

	u32Checks := []struct {
		name   string
		offset int
		want   uint32
	}{
		{"hasSkin", 288, 1},
		{"hasBaseColorTex", 292, 2},
		{"hasNormals", 296, 3},
		{"hasMetallicRoughnessTex", 300, 4},
		{"hasNormalTex", 316, 5},
		{"hasEmissiveTex", 336, 6},
	}
	for _, c := range u32Checks {
		if got := u32At(t, buf, c.offset); got != c.want {
			t.Errorf("%s at offset %d: got %d, want %d", c.name, c.offset, got, c.want)
		}
	}

	for i := 340; i < 352; i++ {
		if buf[i] != 0 {
			t.Errorf("padding byte %d not zero", i)
		}
	}
}

func TestGPUVertexMarshal(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.25, 0.75},
		Color:    [4]float32{1, 0, 0, 1},
	}

	buf := v.Marshal()
	if len(buf) != 48 {
		t.Fatalf("marshaled size: got %d, want 48", len(buf))
	}
	if got := f32At(t, buf, 0); got != 1 {
		t.Errorf("position x: got %v", got)
	}
	if got := f32At(t, buf, 16); got != 1 {
		t.Errorf("normal y at offset 16: got %v", got)
	}
	if got := f32At(t, buf, 28); got != 0.75 {
		t.Errorf("texcoord v at offset 28: got %v", got)
	}
	if got := f32At(t, buf, 32); got != 1 {
		t.Errorf("color r at offset 32: got %v", got)
	}
}

func TestGPUSkinnedVertexMarshal(t *testing.T) {
	v := GPUSkinnedVertex{
		GPUVertex:    GPUVertex{Position: [3]float32{1, 2, 3}},
		JointIndices: [4]uint32{10, 20, 30, 40},
		JointWeights: [4]float32{0.4, 0.3, 0.2, 0.1},
	}

	buf := v.Marshal()
	if len(buf) != 80 {
		t.Fatalf("marshaled size: got %d, want 80", len(buf))
	}
	if got := u32At(t, buf, 48); got != 10 {
		t.Errorf("joint index 0 at offset 48: got %d", got)
	}
	if got := u32At(t, buf, 60); got != 40 {
		t.Errorf("joint index 3 at offset 60: got %d", got)
	}
	if got := f32At(t, buf, 64); got != 0.4 {
		t.Errorf("joint weight 0 at offset 64: got %v", got)
	}
	if got := f32At(t, buf, 76); got != 0.1 {
		t.Errorf("joint weight 3 at offset 76: got %v", got)
	}
}

func TestGPUJointMatricesMarshal(t *testing.T) {
	var g GPUJointMatrices
	for i := range g.Matrices {
		g.Matrices[i] = mgl32.Ident4()
	}
	g.Matrices[0] = mgl32.Translate3D(7, 8, 9)

	buf := g.Marshal()
	if len(buf) != GPUJointMatricesSize {
		t.Fatalf("marshaled size: got %d, want %d", len(buf), GPUJointMatricesSize)
	}

	// Column-major translation lands in elements 12..14 of the first matrix.
	if got := f32At(t, buf, 12*4); got != 7 {
		t.Errorf("matrix 0 translation x: got %v", got)
	}

	// Second slot starts at 64 and holds identity.
	if got := f32At(t, buf, 64); got != 1 {
		t.Errorf("matrix 1 element 0: got %v, want 1", got)
	}
	if got := f32At(t, buf, 64+4); got != 0 {
		t.Errorf("matrix 1 element 1: got %v, want 0", got)
	}
}

func TestNewGPUJointMatricesPadsWithIdentity(t *testing.T) {
	if GPUJointMatricesSize != skin.MaxJoints*64 {
		t.Fatalf("palette size constant drifted: %d", GPUJointMatricesSize)
	}

	g := NewGPUJointMatrices(nil)
	ident := mgl32.Ident4()
	for i := range g.Matrices {
		if g.Matrices[i] != ident {
			t.Fatalf("nil-skin palette slot %d not identity", i)
		}
	}
}
