package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/rig-go/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertex is the GPU-aligned representation of a single mesh vertex for
// static (non-skinned) primitives. Matches the WGSL VertexInput struct layout
// for the static pipeline exactly. Size: 48 bytes (std430 aligned, no padding
// required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
	Color    [4]float32 // offset 32: per-vertex RGBA color (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Color[3]))
	return buf
}

// GPUSkinnedVertex is the GPU-aligned representation of a single mesh vertex
// for skinned primitives. It extends GPUVertex with per-vertex joint data.
// Size: 80 bytes (48 base vertex + 32 skinning data, std430 aligned, no
// padding required).
type GPUSkinnedVertex struct {
	GPUVertex               // offset  0: base vertex data (position, normal, uv, color), 48 bytes
	JointIndices [4]uint32  // offset 48: indices of up to 4 influencing joints (16 bytes)
	JointWeights [4]float32 // offset 64: blend weights for each joint (16 bytes)
}

// Size returns the size of the GPUSkinnedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkinnedVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkinnedVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPUSkinnedVertex) Marshal() []byte {
	buf := make([]byte, 80)
	copy(buf[0:48], g.GPUVertex.Marshal())
	binary.LittleEndian.PutUint32(buf[48:52], g.JointIndices[0])
	binary.LittleEndian.PutUint32(buf[52:56], g.JointIndices[1])
	binary.LittleEndian.PutUint32(buf[56:60], g.JointIndices[2])
	binary.LittleEndian.PutUint32(buf[60:64], g.JointIndices[3])
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.JointWeights[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.JointWeights[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.JointWeights[2]))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(g.JointWeights[3]))
	return buf
}

// GPUDrawUniformSize is the fixed byte size of a marshaled GPUDrawUniform.
const GPUDrawUniformSize = 352

// GPUDrawUniform is the per-draw uniform block shared by the static and
// skinned pipelines. Matches the WGSL DrawUniform struct layout exactly.
// Size: 352 bytes, little-endian, field order fixed:
//
//	offset   0: Model (mat4x4<f32>, column-major, 64 bytes)
//	offset  64: View (64 bytes)
//	offset 128: Projection (64 bytes)
//	offset 192: NormalMatrix (inverse-transpose of the effective model, 64 bytes)
//	offset 256: LightDirection (vec4<f32>, 16 bytes)
//	offset 272: BaseColorFactor (vec4<f32>, 16 bytes)
//	offset 288: HasSkin, HasBaseColorTex, HasNormals, HasMetallicRoughnessTex (4 × u32, 16 bytes)
//	offset 304: MetallicFactor (f32)
//	offset 308: RoughnessFactor (f32)
//	offset 312: NormalScale (f32)
//	offset 316: HasNormalTex (u32)
//	offset 320: EmissiveFactor (vec4<f32>, 16 bytes)
//	offset 336: HasEmissiveTex (u32)
//	offset 340: 12 bytes zero padding
type GPUDrawUniform struct {
	Model                   [16]float32
	View                    [16]float32
	Projection              [16]float32
	NormalMatrix            [16]float32
	LightDirection          [4]float32
	BaseColorFactor         [4]float32
	HasSkin                 uint32
	HasBaseColorTex         uint32
	HasNormals              uint32
	HasMetallicRoughnessTex uint32
	MetallicFactor          float32
	RoughnessFactor         float32
	NormalScale             float32
	HasNormalTex            uint32
	EmissiveFactor          [4]float32
	HasEmissiveTex          uint32
}

// Size returns the fixed marshaled size of the uniform block in bytes.
//
// Returns:
//   - int: the size of the marshaled buffer in bytes.
func (g *GPUDrawUniform) Size() int {
	return GPUDrawUniformSize
}

// Marshal serializes the GPUDrawUniform struct into a byte buffer suitable
// for GPU upload. The trailing 12 bytes stay zero.
//
// Returns:
//   - []byte: 352-byte buffer ready for GPU upload.
func (g *GPUDrawUniform) Marshal() []byte {
	buf := make([]byte, GPUDrawUniformSize)
	putMat4(buf[0:64], g.Model)
	putMat4(buf[64:128], g.View)
	putMat4(buf[128:192], g.Projection)
	putMat4(buf[192:256], g.NormalMatrix)
	putVec4(buf[256:272], g.LightDirection)
	putVec4(buf[272:288], g.BaseColorFactor)
	binary.LittleEndian.PutUint32(buf[288:292], g.HasSkin)
	binary.LittleEndian.PutUint32(buf[292:296], g.HasBaseColorTex)
	binary.LittleEndian.PutUint32(buf[296:300], g.HasNormals)
	binary.LittleEndian.PutUint32(buf[300:304], g.HasMetallicRoughnessTex)
	binary.LittleEndian.PutUint32(buf[304:308], math.Float32bits(g.MetallicFactor))
	binary.LittleEndian.PutUint32(buf[308:312], math.Float32bits(g.RoughnessFactor))
	binary.LittleEndian.PutUint32(buf[312:316], math.Float32bits(g.NormalScale))
	binary.LittleEndian.PutUint32(buf[316:320], g.HasNormalTex)
	putVec4(buf[320:336], g.EmissiveFactor)
	binary.LittleEndian.PutUint32(buf[336:340], g.HasEmissiveTex)
	return buf
}

// GPUJointMatricesSize is the fixed byte size of a marshaled joint palette:
// skin.MaxJoints matrices × 64 bytes each.
const GPUJointMatricesSize = skin.MaxJoints * 64

// GPUJointMatrices is the fixed-capacity joint palette uploaded for skinned
// draws. Unused slots hold identity so the buffer size never varies.
type GPUJointMatrices struct {
	Matrices [skin.MaxJoints]mgl32.Mat4
}

// NewGPUJointMatrices returns a palette filled from the given skin's current
// joint matrices, identity-padded past the skin's joint count.
//
// Parameters:
//   - s: the skin providing joint matrices; nil yields an all-identity palette
//
// Returns:
//   - GPUJointMatrices: the padded palette
func NewGPUJointMatrices(s *skin.Skin) GPUJointMatrices {
	var g GPUJointMatrices
	if s != nil {
		g.Matrices = s.FixedPalette()
		return g
	}
	ident := mgl32.Ident4()
	for i := range g.Matrices {
		g.Matrices[i] = ident
	}
	return g
}

// Size returns the fixed marshaled size of the palette in bytes.
//
// Returns:
//   - int: the size of the marshaled buffer in bytes.
func (g *GPUJointMatrices) Size() int {
	return GPUJointMatricesSize
}

// Marshal serializes the joint palette into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 11,520-byte buffer ready for GPU upload.
func (g *GPUJointMatrices) Marshal() []byte {
	buf := make([]byte, GPUJointMatricesSize)
	for i := range g.Matrices {
		base := i * 64
		for j := 0; j < 16; j++ {
			binary.LittleEndian.PutUint32(buf[base+j*4:base+(j+1)*4], math.Float32bits(g.Matrices[i][j]))
		}
	}
	return buf
}

// putMat4 writes a column-major matrix as 16 little-endian float32 words.
func putMat4(dst []byte, m [16]float32) {
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:(i+1)*4], math.Float32bits(m[i]))
	}
}

// putVec4 writes a vec4 as 4 little-endian float32 words.
func putVec4(dst []byte, v [4]float32) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:(i+1)*4], math.Float32bits(v[i]))
	}
}
