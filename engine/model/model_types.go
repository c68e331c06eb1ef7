package model

// NoTexture marks an absent texture reference on a material.
const NoTexture = -1

// Material holds the shading parameters imported for one source material.
// Texture fields index the model's texture list, or NoTexture.
type Material struct {
	// Name is the optional material name from the source document.
	Name string

	// BaseColorFactor is the RGBA base color multiplier.
	BaseColorFactor [4]float32

	// MetallicFactor and RoughnessFactor are the metallic-roughness scalars.
	MetallicFactor  float32
	RoughnessFactor float32

	// NormalScale scales the sampled normal map's XY components.
	NormalScale float32

	// EmissiveFactor is the RGB emissive color; the fourth component is unused.
	EmissiveFactor [4]float32

	// BaseColorTexture, NormalTexture, MetallicRoughnessTexture and
	// EmissiveTexture index the model's texture list, or NoTexture.
	BaseColorTexture         int
	NormalTexture            int
	MetallicRoughnessTexture int
	EmissiveTexture          int

	// DoubleSided disables backface culling for primitives using this material.
	DoubleSided bool
}

// DefaultMaterial returns the material used when a primitive declares none:
// opaque white, fully rough, non-metallic, no textures.
//
// Returns:
//   - Material: the default material
func DefaultMaterial() Material {
	return Material{
		BaseColorFactor:          [4]float32{1, 1, 1, 1},
		MetallicFactor:           1,
		RoughnessFactor:          1,
		NormalScale:              1,
		BaseColorTexture:         NoTexture,
		NormalTexture:            NoTexture,
		MetallicRoughnessTexture: NoTexture,
		EmissiveTexture:          NoTexture,
	}
}

// Primitive is one drawable unit: a marshaled vertex buffer, an optional
// index buffer, and a material reference. Skinned primitives carry
// GPUSkinnedVertex data; static ones carry GPUVertex data.
type Primitive struct {
	// VertexData is the marshaled vertex buffer, ready for GPU upload.
	VertexData []byte

	// VertexCount is the number of vertices in VertexData.
	VertexCount int

	// IndexData is the marshaled uint32 index buffer; empty for non-indexed
	// primitives.
	IndexData []byte

	// IndexCount is the number of indices in IndexData.
	IndexCount int

	// Material indexes the model's material list, or NoTexture-like -1 for
	// the default material.
	Material int

	// Skinned reports whether VertexData uses the skinned vertex layout.
	Skinned bool

	// HasNormals reports whether the source supplied vertex normals. When
	// false the shader falls back to flat shading.
	HasNormals bool
}

// Mesh groups the primitives rendered by one mesh-carrying node.
type Mesh struct {
	// Name is the optional mesh name from the source document.
	Name string

	// Primitives are the drawable units of this mesh.
	Primitives []Primitive
}
