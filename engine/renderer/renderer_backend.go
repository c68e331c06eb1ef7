package renderer

import (
	"github.com/Carmen-Shannon/rig-go/common"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting,
	// capping frame rate to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for
	// vertical blank. May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// PrimitiveTextures holds the decoded RGBA staging images bound for one
// primitive's material. Every slot is always populated; absent source textures
// carry the 1×1 neutral fallback so the bind group layout never varies.
type PrimitiveTextures struct {
	BaseColor         common.TextureStagingData
	Normal            common.TextureStagingData
	MetallicRoughness common.TextureStagingData
	Emissive          common.TextureStagingData
}

// PrimitiveDescriptor describes the GPU resources needed for one drawable
// primitive: marshaled vertex/index data, the vertex layout flavor, and the
// material textures.
type PrimitiveDescriptor struct {
	// Label names the GPU objects for debugging.
	Label string

	// VertexData is the marshaled vertex buffer (GPUVertex or GPUSkinnedVertex
	// layout depending on Skinned).
	VertexData []byte

	// VertexCount is the number of vertices in VertexData.
	VertexCount int

	// IndexData is the marshaled uint32 index buffer, empty for non-indexed
	// primitives.
	IndexData []byte

	// IndexCount is the number of indices in IndexData.
	IndexCount int

	// Skinned selects the skinned pipeline and allocates the joint-matrix
	// storage buffer.
	Skinned bool

	// DoubleSided disables backface culling for this primitive.
	DoubleSided bool

	// Textures are the material textures, fallback-filled.
	Textures PrimitiveTextures
}

// primitiveHandle is an opaque reference to one primitive's shared GPU
// resources (geometry and material textures), owned by the backend that
// created it.
type primitiveHandle interface{}

// instanceHandle is an opaque reference to the per-instance GPU resources of
// one node's use of a primitive: its uniform buffer, joint buffer and bind
// group. Every scene graph node drawing a primitive holds its own instance.
type instanceHandle interface{}

// rendererBackend is the GPU interface the Renderer drives. It is
// intentionally narrow: resource creation at load time, then full-contents
// buffer writes and draw calls per frame. Uniform and joint buffers are never
// partially patched or read back.
type rendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and depth attachment for a
	// new surface size. Called at startup and on window resize.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. A ConfigureSurface call is
	// required for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// CreatePrimitive allocates the GPU resources shared by every instance of
	// one primitive: vertex and index buffers plus the material textures.
	//
	// Parameters:
	//   - desc: the primitive resource description
	//
	// Returns:
	//   - primitiveHandle: the opaque handle for CreateInstance
	//   - error: error if resource creation fails
	CreatePrimitive(desc PrimitiveDescriptor) (primitiveHandle, error)

	// CreateInstance allocates the per-instance resources for one node's use
	// of a primitive: the draw uniform buffer, the joint-matrix buffer for
	// skinned primitives, and the bind group tying them to the primitive's
	// textures. Instances are not shared: all uniform writes of a frame land
	// before the command buffer executes, so two draws through one uniform
	// buffer would both read the last write.
	//
	// Parameters:
	//   - h: the primitive handle from CreatePrimitive
	//   - label: names the GPU objects for debugging
	//
	// Returns:
	//   - instanceHandle: the opaque handle for Draw
	//   - error: error if resource creation fails
	CreateInstance(h primitiveHandle, label string) (instanceHandle, error)

	// BeginFrame acquires the swapchain texture and begins the main render
	// pass. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: error if the swapchain texture could not be acquired
	BeginFrame() error

	// Draw replaces the instance's uniform buffer contents (and joint buffer
	// contents for skinned primitives) and encodes one draw command in the
	// current render pass. Writes are always full-contents replacements.
	//
	// Parameters:
	//   - h: the instance handle from CreateInstance
	//   - uniformData: the marshaled per-draw uniform block
	//   - jointData: the marshaled joint palette, nil for static draws
	//
	// Returns:
	//   - error: error if the handle is invalid or no frame is open
	Draw(h instanceHandle, uniformData, jointData []byte) error

	// EndFrame ends the render pass and submits the command buffer. Call
	// Present afterwards to display the frame.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()
}
