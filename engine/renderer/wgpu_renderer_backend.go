package renderer

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrSurfaceUnavailable is returned by BeginFrame while the surface has a zero dimension,
// which happens while the window is minimized.
var ErrSurfaceUnavailable = errors.New("surface has zero size")

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount   MSAASampleCount  // MSAA sample count for the scene target

	maxTextureDimension int // device limit on scene target edges, fixed at creation

	// Sizes requested by the front end. They are applied at the start of the next frame so a
	// resize never lands while a surface texture is held.
	surfaceWidth, surfaceHeight int
	surfaceDirty                bool
	sceneWidth, sceneHeight     int
	sceneDirty                  bool

	// Scene target: what the scene pipelines draw into. The resolved color texture and view
	// live on blitProvider at bindingBlitTexture.
	msaaTexture           *wgpu.Texture
	msaaTextureView       *wgpu.TextureView
	depthTexture          *wgpu.Texture
	depthTextureView      *wgpu.TextureView
	scenePassDescriptor   *wgpu.RenderPassDescriptor
	surfacePassDescriptor *wgpu.RenderPassDescriptor

	// Compositor: blit scales the scene target over the whole surface, overlay draws the
	// readout image on top at one texel per pixel.
	blitPipeline    pipeline.Pipeline
	overlayPipeline pipeline.Pipeline
	blitProvider    bind_group_provider.BindGroupProvider
	overlayProvider bind_group_provider.BindGroupProvider

	overlayImage   *image.RGBA
	overlayDirty   bool
	overlayVisible bool
	overlayWidth   int
	overlayHeight  int

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface
	SetDevice(device *wgpu.Device)
	SetQueue(queue *wgpu.Queue)
	SetInstance(instance *wgpu.Instance)
	SetAdapter(adapter *wgpu.Adapter)
	SetSurface(surface *wgpu.Surface)

	// ConfigureSurface records a new swapchain size. It takes effect at the next BeginFrame.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// ResizeSceneTarget records a new size for the offscreen scene target. It takes effect at
	// the next BeginFrame.
	//
	// Parameters:
	//   - width: target width in pixels, at least 1
	//   - height: target height in pixels, at least 1
	ResizeSceneTarget(width, height int)

	// MaxTextureDimension returns the largest 2D texture edge the device accepts, or 0 when
	// unknown.
	MaxTextureDimension() int

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the shader module, bind group layouts, pipeline layout and
	// render pipeline for p, and stores them back on p.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers inits the vertex and index buffers for a mesh based on the provided vertex and index data, and stores them on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex and index buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created or initialized, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group for one group of a registered pipeline. Each layout
	// entry is resolved against provider first and then sources in order; uniform buffers that
	// nobody holds are created on provider at the entry's MinBindingSize.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that receives the bind group
	//   - p: a registered pipeline
	//   - group: the bind group index within p
	//   - sources: other providers whose resources may be shared into this group
	//
	// Returns:
	//   - error: an error if a texture or sampler binding cannot be resolved or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int, sources []bind_group_provider.BindGroupProvider) error

	// InitTextureView creates a GPU texture and texture view based on the provided staging data, and stores both on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the raw RGBA pixels and dimensions
	//
	// Returns:
	//   - error: an error if the texture view could not be created or initialized, otherwise nil
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler based on the provided staging data, and stores it on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration; zero fields fall back to linear repeat
	//
	// Returns:
	//   - error: an error if the sampler could not be created or initialized, otherwise nil
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// SetOverlay replaces the image composited over the top-left corner of the surface.
	// nil hides the overlay. The image must not be modified after the call.
	//
	// Parameters:
	//   - img: premultiplied RGBA pixels at surface resolution, or nil
	SetOverlay(img *image.RGBA)

	// BeginFrame applies pending resizes, acquires the next swapchain texture and begins the
	// scene render pass. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// DrawCall encodes a single indexed draw within the scene pass started by BeginFrame.
	//
	// Parameters:
	//   - p: the registered scene pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: providers whose BindGroups are set at group indices 0..n-1
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the scene pass, composites the scene target and overlay onto the surface
	// and submits the command buffer. Call Present afterwards.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release frees every GPU object the backend owns.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
	}
	w.SetSurface(w.instance.CreateSurface(surfaceDescriptor))

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.SetAdapter(a)

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	w.SetDevice(d)
	w.SetQueue(d.GetQueue())
	w.maxTextureDimension = int(d.GetLimits().Limits.MaxTextureDimension2D)

	capabilities := w.surface.GetCapabilities(w.adapter)
	w.surfaceFormat = &capabilities.Formats[0]

	if err := w.initCompositor(); err != nil {
		panic(err)
	}
	return w
}

// initCompositor registers the surface pipelines and creates the parts of their bind groups
// that do not depend on the scene target or overlay sizes.
func (b *wgpuRendererBackendImpl) initCompositor() error {
	b.blitPipeline, b.overlayPipeline = newBlitPipelines()
	if err := b.RegisterRenderPipeline(b.blitPipeline); err != nil {
		return fmt.Errorf("blit pipeline: %w", err)
	}
	if err := b.RegisterRenderPipeline(b.overlayPipeline); err != nil {
		return fmt.Errorf("overlay pipeline: %w", err)
	}

	var rect material.GPUOverlayRect
	b.blitProvider = bind_group_provider.NewBindGroupProvider("Blit")
	b.overlayProvider = bind_group_provider.NewBindGroupProvider("Overlay")
	for _, p := range []bind_group_provider.BindGroupProvider{b.blitProvider, b.overlayProvider} {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: p.Label() + " Rect Buffer",
			Size:  uint64(rect.Size()),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		p.SetBuffer(bindingBlitRect, buf)
	}
	full := material.FullScreenRect
	b.queue.WriteBuffer(b.blitProvider.Buffer(bindingBlitRect), 0, full.Marshal())

	// the scene target is magnified smoothly; the overlay maps one texel per pixel
	if err := b.InitSampler(b.blitProvider, bindingBlitSampler, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	}); err != nil {
		return err
	}
	return b.InitSampler(b.overlayProvider, bindingBlitSampler, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	})
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surfaceWidth, b.surfaceHeight = width, height
	b.surfaceDirty = true
	b.overlayDirty = b.overlayDirty || b.overlayImage != nil
}

func (b *wgpuRendererBackendImpl) ResizeSceneTarget(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width == b.sceneWidth && height == b.sceneHeight && b.scenePassDescriptor != nil {
		return
	}
	b.sceneWidth, b.sceneHeight = max(width, 1), max(height, 1)
	b.sceneDirty = true
}

func (b *wgpuRendererBackendImpl) MaxTextureDimension() int {
	return b.maxTextureDimension
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
	b.surfaceDirty = true
}

// applySurface reconfigures the swapchain. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) applySurface() {
	b.surfaceDirty = false
	if b.surfaceWidth <= 0 || b.surfaceHeight <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(b.surfaceWidth),
		Height:      uint32(b.surfaceHeight),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.surfacePassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil, // set per-frame to the swapchain view
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	}
}

// applySceneTarget recreates the offscreen color, MSAA and depth textures at the pending
// scene size and rebuilds the blit bind group around the new color view. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) applySceneTarget() error {
	b.sceneDirty = false
	b.releaseSceneTarget()

	size := wgpu.Extent3D{
		Width:              uint32(b.sceneWidth),
		Height:             uint32(b.sceneHeight),
		DepthOrArrayLayers: 1,
	}
	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	colorTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Scene Color Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        *b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return err
	}
	colorView, err := colorTexture.CreateView(nil)
	if err != nil {
		colorTexture.Release()
		return err
	}
	b.blitProvider.SetTexture(bindingBlitTexture, colorTexture)
	b.blitProvider.SetTextureView(bindingBlitTexture, colorView)

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the color texture.
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "Scene MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		b.msaaTextureView, err = b.msaaTexture.CreateView(nil)
		if err != nil {
			return err
		}
	}

	// Depth texture sample count must match the color attachment.
	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Scene Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	b.depthTextureView, err = b.depthTexture.CreateView(nil)
	if err != nil {
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       colorView,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	if msaaEnabled {
		color.View = b.msaaTextureView
		color.ResolveTarget = colorView
		color.StoreOp = wgpu.StoreOpDiscard // only the resolved result is sampled
	}
	b.scenePassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	return b.initBindGroupLocked(b.blitProvider, b.blitPipeline, 0, nil)
}

// releaseSceneTarget frees the textures behind the scene pass. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) releaseSceneTarget() {
	if tv := b.blitProvider.TextureView(bindingBlitTexture); tv != nil {
		tv.Release()
		b.blitProvider.SetTextureView(bindingBlitTexture, nil)
	}
	if tex := b.blitProvider.Texture(bindingBlitTexture); tex != nil {
		tex.Release()
		b.blitProvider.SetTexture(bindingBlitTexture, nil)
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
	b.scenePassDescriptor = nil
}

// applyOverlay uploads the pending overlay image, recreating its texture when the size
// changes, and repositions it for the current surface size. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) applyOverlay() error {
	b.overlayDirty = false
	img := b.overlayImage
	if img == nil || img.Rect.Empty() {
		b.overlayVisible = false
		return nil
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w != b.overlayWidth || h != b.overlayHeight || b.overlayProvider.TextureView(bindingBlitTexture) == nil {
		if tv := b.overlayProvider.TextureView(bindingBlitTexture); tv != nil {
			tv.Release()
		}
		if tex := b.overlayProvider.Texture(bindingBlitTexture); tex != nil {
			tex.Release()
		}
		if err := b.initTextureViewLocked(b.overlayProvider, bindingBlitTexture, common.TextureStagingData{
			Pixels: packRGBA(img),
			Width:  uint32(w),
			Height: uint32(h),
		}); err != nil {
			return err
		}
		if err := b.initBindGroupLocked(b.overlayProvider, b.overlayPipeline, 0, nil); err != nil {
			return err
		}
		b.overlayWidth, b.overlayHeight = w, h
	} else {
		b.writeTexture(b.overlayProvider.Texture(bindingBlitTexture), packRGBA(img), uint32(w), uint32(h))
	}

	rect := overlayRect(w, h, b.surfaceWidth, b.surfaceHeight)
	b.queue.WriteBuffer(b.overlayProvider.Buffer(bindingBlitRect), 0, rect.Marshal())
	b.overlayVisible = true
	return nil
}

// packRGBA returns the pixel rows of img without any stride padding.
func packRGBA(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 && img.Rect.Min == (image.Point{}) {
		return img.Pix[:w*h*4]
	}
	out := make([]byte, 0, w*h*4)
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		start := img.PixOffset(img.Rect.Min.X, y)
		out = append(out, img.Pix[start:start+w*4]...)
	}
	return out
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	s := p.Shader()
	if s == nil || s.VertexEntryPoint() == "" || s.FragmentEntryPoint() == "" {
		return errors.New("a shader with vertex and fragment entry points must be set to create a render pipeline")
	}

	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return err
	}
	defer module.Release()

	descriptors := p.BindGroupLayoutDescriptors()
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(descriptors))
	for g := range descriptors {
		layout, layoutErr := b.device.CreateBindGroupLayout(&descriptors[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	sampleCount := uint32(1)
	var depthStencil *wgpu.DepthStencilState
	if p.Target() == pipeline.TargetScene {
		sampleCount = uint32(b.sampleCount)
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created, bindGroupLayouts)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int, sources []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initBindGroupLocked(provider, p, group, sources)
}

func (b *wgpuRendererBackendImpl) initBindGroupLocked(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int, sources []bind_group_provider.BindGroupProvider) error {
	layout := p.BindGroupLayout(group)
	if layout == nil {
		return fmt.Errorf("pipeline %q has no layout for group %d; register it first", p.PipelineKey(), group)
	}
	descriptor := p.BindGroupLayoutDescriptor(group)
	lookup := append([]bind_group_provider.BindGroupProvider{provider}, sources...)

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			var tv *wgpu.TextureView
			for _, src := range lookup {
				if tv = src.TextureView(binding); tv != nil {
					break
				}
			}
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view, call InitTextureView first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		case isSampler:
			var samp *wgpu.Sampler
			for _, src := range lookup {
				if samp = src.Sampler(binding); samp != nil {
					break
				}
			}
			if samp == nil {
				return fmt.Errorf("sampler binding %d has no sampler, call InitSampler first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		default:
			var buf *wgpu.Buffer
			for _, src := range lookup {
				if buf = src.Buffer(binding); buf != nil {
					break
				}
			}
			if buf == nil {
				var bufErr error
				buf, bufErr = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: provider.Label() + " Buffer",
					Size:  entry.Buffer.MinBindingSize,
					Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
				})
				if bufErr != nil {
					return bufErr
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initTextureViewLocked(provider, bindingKey, stagingData)
}

func (b *wgpuRendererBackendImpl) initTextureViewLocked(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.writeTexture(tex, stagingData.Pixels, stagingData.Width, stagingData.Height)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetTexture(bindingKey, tex)
	provider.SetTextureView(bindingKey, view)

	return nil
}

func (b *wgpuRendererBackendImpl) writeTexture(tex *wgpu.Texture, pixels []byte, width, height uint32) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingKey, samp)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if !w.Pending() {
			continue
		}
		b.queue.WriteBuffer(w.Provider.Buffer(w.Binding), w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) SetOverlay(img *image.RGBA) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.overlayImage = img
	b.overlayDirty = true
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, do not acquire another one.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	if b.surfaceDirty {
		b.applySurface()
	}
	if b.surfaceWidth <= 0 || b.surfaceHeight <= 0 || b.surfacePassDescriptor == nil {
		return ErrSurfaceUnavailable
	}
	if b.sceneDirty || b.scenePassDescriptor == nil {
		if err := b.applySceneTarget(); err != nil {
			return fmt.Errorf("scene target %dx%d: %w", b.sceneWidth, b.sceneHeight, err)
		}
	}
	if b.overlayDirty {
		if err := b.applyOverlay(); err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
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

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.scenePassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || p.RenderPipeline() == nil {
		return
	}
	b.framePass.SetPipeline(p.RenderPipeline())

	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	// Composite: stretch the scene target over the surface, then draw the overlay on top.
	b.surfacePassDescriptor.ColorAttachments[0].View = b.frameView
	pass := b.frameEncoder.BeginRenderPass(b.surfacePassDescriptor)
	pass.SetPipeline(b.blitPipeline.RenderPipeline())
	pass.SetBindGroup(0, b.blitProvider.BindGroup(), nil)
	pass.Draw(6, 1, 0, 0)
	if b.overlayVisible {
		pass.SetPipeline(b.overlayPipeline.RenderPipeline())
		pass.SetBindGroup(0, b.overlayProvider.BindGroup(), nil)
		pass.Draw(6, 1, 0, 0)
	}
	pass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseSceneTarget()
	b.blitProvider.Release()
	b.overlayProvider.Release()
	b.blitPipeline.Release()
	b.overlayPipeline.Release()
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) SetDevice(device *wgpu.Device) {
	b.device = device
}

func (b *wgpuRendererBackendImpl) SetQueue(queue *wgpu.Queue) {
	b.queue = queue
}

func (b *wgpuRendererBackendImpl) SetInstance(instance *wgpu.Instance) {
	b.instance = instance
}

func (b *wgpuRendererBackendImpl) SetAdapter(adapter *wgpu.Adapter) {
	b.adapter = adapter
}

func (b *wgpuRendererBackendImpl) SetSurface(surface *wgpu.Surface) {
	b.surface = surface
}
