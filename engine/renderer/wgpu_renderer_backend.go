package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuPrimitive bundles the GPU resources shared by every instance of one
// primitive: geometry buffers and material texture views. Per-draw state
// lives in wgpuInstance.
type wgpuPrimitive struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	vertexCount  int
	indexCount   int

	baseColorView         *wgpu.TextureView
	normalView            *wgpu.TextureView
	metallicRoughnessView *wgpu.TextureView
	emissiveView          *wgpu.TextureView

	skinned     bool
	doubleSided bool
}

// wgpuInstance holds one node's per-draw resources for a primitive. The
// uniform and joint buffers are exclusively owned by this instance and only
// ever written by full-contents replacement from Draw.
type wgpuInstance struct {
	prim *wgpuPrimitive

	uniformBuffer *wgpu.Buffer
	jointBuffer   *wgpu.Buffer

	bindGroup *wgpu.BindGroup
}

// wgpuRendererBackendImpl is the WebGPU implementation of rendererBackend.
type wgpuRendererBackendImpl struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode

	// One pipeline per vertex layout and cull mode; created lazily once the
	// surface format is known.
	staticPipeline        *wgpu.RenderPipeline
	staticPipelineNoCull  *wgpu.RenderPipeline
	skinnedPipeline       *wgpu.RenderPipeline
	skinnedPipelineNoCull *wgpu.RenderPipeline

	staticLayout  *wgpu.BindGroupLayout
	skinnedLayout *wgpu.BindGroupLayout

	sampler *wgpu.Sampler

	// Frame state for batching all draw calls of one frame.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ rendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend acquires the WebGPU instance, adapter, device and
// queue for the given platform surface. Pipelines are created on the first
// ConfigureSurface call once the surface format is known.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor) rendererBackend {
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// Color attachment View is set per-frame to the swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if b.staticPipeline == nil {
		b.initPipelines()
	}
}

// initPipelines builds the shared sampler, the two bind group layouts, and the
// four render pipelines (static/skinned × cull-back/cull-none).
func (b *wgpuRendererBackendImpl) initPipelines() {
	var err error

	b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Material Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	b.staticLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Static Draw Bind Group Layout",
		Entries: drawBindGroupLayoutEntries(false),
	})
	if err != nil {
		panic(err)
	}
	b.skinnedLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Skinned Draw Bind Group Layout",
		Entries: drawBindGroupLayoutEntries(true),
	})
	if err != nil {
		panic(err)
	}

	b.staticPipeline = b.createPipeline("static", wgslStatic, b.staticLayout, staticVertexLayout(), wgpu.CullModeBack)
	b.staticPipelineNoCull = b.createPipeline("static_double_sided", wgslStatic, b.staticLayout, staticVertexLayout(), wgpu.CullModeNone)
	b.skinnedPipeline = b.createPipeline("skinned", wgslSkinned, b.skinnedLayout, skinnedVertexLayout(), wgpu.CullModeBack)
	b.skinnedPipelineNoCull = b.createPipeline("skinned_double_sided", wgslSkinned, b.skinnedLayout, skinnedVertexLayout(), wgpu.CullModeNone)
}

// drawBindGroupLayoutEntries returns the per-draw bind group layout: uniform
// block, sampler, four material textures, and the joint-matrix storage buffer
// for the skinned variant.
func drawBindGroupLayoutEntries(skinned bool) []wgpu.BindGroupLayoutEntry {
	textureEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}
	}

	entries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: model.GPUDrawUniformSize,
			},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		},
		textureEntry(2),
		textureEntry(3),
		textureEntry(4),
		textureEntry(5),
	}

	if skinned {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    6,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: model.GPUJointMatricesSize,
			},
		})
	}

	return entries
}

// staticVertexLayout describes the 48-byte GPUVertex stream.
func staticVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 48,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
		},
	}
}

// skinnedVertexLayout describes the 80-byte GPUSkinnedVertex stream.
func skinnedVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 80,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
			{Format: wgpu.VertexFormatUint32x4, Offset: 48, ShaderLocation: 4},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 5},
		},
	}
}

// createPipeline compiles one WGSL module and builds a render pipeline against
// the main color and depth attachments.
func (b *wgpuRendererBackendImpl) createPipeline(label, source string, layout *wgpu.BindGroupLayout, vertexLayout wgpu.VertexBufferLayout, cullMode wgpu.CullMode) *wgpu.RenderPipeline {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		panic(err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + " Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		panic(err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		panic(err)
	}

	return created
}

func (b *wgpuRendererBackendImpl) CreatePrimitive(desc PrimitiveDescriptor) (primitiveHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.staticPipeline == nil {
		return nil, errors.New("surface not configured")
	}
	if len(desc.VertexData) == 0 {
		return nil, fmt.Errorf("primitive %s has no vertex data", desc.Label)
	}

	p := &wgpuPrimitive{
		vertexCount: desc.VertexCount,
		indexCount:  desc.IndexCount,
		skinned:     desc.Skinned,
		doubleSided: desc.DoubleSided,
	}

	var err error
	p.vertexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label + " Vertex Buffer",
		Size:  uint64(len(desc.VertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(p.vertexBuffer, 0, desc.VertexData)

	if len(desc.IndexData) > 0 {
		p.indexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: desc.Label + " Index Buffer",
			Size:  uint64(len(desc.IndexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		b.queue.WriteBuffer(p.indexBuffer, 0, desc.IndexData)
	}

	p.baseColorView, err = b.createTextureView(desc.Label+" BaseColor", desc.Textures.BaseColor)
	if err != nil {
		return nil, err
	}
	p.normalView, err = b.createTextureView(desc.Label+" Normal", desc.Textures.Normal)
	if err != nil {
		return nil, err
	}
	p.metallicRoughnessView, err = b.createTextureView(desc.Label+" MetallicRoughness", desc.Textures.MetallicRoughness)
	if err != nil {
		return nil, err
	}
	p.emissiveView, err = b.createTextureView(desc.Label+" Emissive", desc.Textures.Emissive)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (b *wgpuRendererBackendImpl) CreateInstance(h primitiveHandle, label string) (instanceHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := h.(*wgpuPrimitive)
	if !ok || p == nil {
		return nil, errors.New("invalid primitive handle")
	}

	inst := &wgpuInstance{prim: p}

	var err error
	inst.uniformBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Draw Uniform Buffer",
		Size:  model.GPUDrawUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	layout := b.staticLayout
	if p.skinned {
		layout = b.skinnedLayout
		inst.jointBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Joint Matrix Buffer",
			Size:  model.GPUJointMatricesSize,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
	}

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: inst.uniformBuffer, Size: wgpu.WholeSize},
		{Binding: 1, Sampler: b.sampler},
		{Binding: 2, TextureView: p.baseColorView},
		{Binding: 3, TextureView: p.normalView},
		{Binding: 4, TextureView: p.metallicRoughnessView},
		{Binding: 5, TextureView: p.emissiveView},
	}
	if p.skinned {
		entries = append(entries, wgpu.BindGroupEntry{Binding: 6, Buffer: inst.jointBuffer, Size: wgpu.WholeSize})
	}

	inst.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}

	return inst, nil
}

// createTextureView uploads staging pixels into a new RGBA texture and returns
// its view.
func (b *wgpuRendererBackendImpl) createTextureView(label string, staging common.TextureStagingData) (*wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
	)

	return tex.CreateView(nil)
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, avoid acquiring
	// another one; wgpu-native rejects overlapping acquisitions.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) Draw(h instanceHandle, uniformData, jointData []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no frame in progress")
	}
	inst, ok := h.(*wgpuInstance)
	if !ok || inst == nil {
		return errors.New("invalid instance handle")
	}
	p := inst.prim

	// Full-contents replacement writes; these buffers are never patched.
	b.queue.WriteBuffer(inst.uniformBuffer, 0, uniformData)
	if p.skinned && inst.jointBuffer != nil && jointData != nil {
		b.queue.WriteBuffer(inst.jointBuffer, 0, jointData)
	}

	pipeline := b.staticPipeline
	switch {
	case p.skinned && p.doubleSided:
		pipeline = b.skinnedPipelineNoCull
	case p.skinned:
		pipeline = b.skinnedPipeline
	case p.doubleSided:
		pipeline = b.staticPipelineNoCull
	}

	b.framePass.SetPipeline(pipeline)
	b.framePass.SetBindGroup(0, inst.bindGroup, nil)
	b.framePass.SetVertexBuffer(0, p.vertexBuffer, 0, wgpu.WholeSize)

	if p.indexBuffer != nil && p.indexCount > 0 {
		b.framePass.SetIndexBuffer(p.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(p.indexCount), 1, 0, 0, 0)
	} else {
		b.framePass.Draw(uint32(p.vertexCount), 1, 0, 0)
	}

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}
