package renderer

import (
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
	"github.com/Carmen-Shannon/oxy-dpr/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// surface size in framebuffer pixels
	surfaceWidth, surfaceHeight int

	// requested output size in layout units and the multiplier applied to it
	outputWidth, outputHeight float64
	hasOutputSize             bool
	pixelRatio                float64

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// The scene is drawn into an offscreen target whose size is set independently of the window:
// SetOutputSize gives it in layout units and the pixel ratio multiplies it into whole pixels.
// Every frame the target is stretched over the window surface, and an optional overlay image
// is composited on top at native resolution.
type Renderer interface {
	resolution.Backend

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for one or more pipelines via the backend, then
	// caches them by PipelineKey. Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	// Until SetOutputSize has been called the scene target follows the surface.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SurfaceSize returns the last size passed to Resize.
	SurfaceSize() (width, height int)

	// OutputSize returns the scene target size in whole pixels.
	//
	// Returns:
	//   - int: width in pixels, at least 1
	//   - int: height in pixels, at least 1
	OutputSize() (width, height int)

	// SetPresentMode sets the surface present mode.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group for one group of a registered pipeline and stores it
	// on provider. Each binding is taken from provider or, failing that, from the first source
	// that holds it. Uniform buffers nobody holds are created on provider. Textures and samplers
	// must already exist on provider or a source.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that receives the bind group
	//   - pipelineKey: the key of a registered pipeline
	//   - group: the bind group index
	//   - sources: providers whose resources are shared into the group
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, sources ...bind_group_provider.BindGroupProvider) error

	// InitTextureView creates a GPU texture from staging data and stores the resulting texture view
	// on the given BindGroupProvider at the specified binding index. Must be called before InitBindGroup
	// for any texture bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index. Must be called before InitBindGroup for any sampler bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// SetOverlay replaces the image drawn over the top-left corner of the window at one texel
	// per surface pixel. nil hides it. The image must not be modified after the call.
	//
	// Parameters:
	//   - img: premultiplied RGBA pixels, or nil
	SetOverlay(img *image.RGBA)

	// BeginFrame acquires the next surface texture and begins the scene pass.
	// Must be paired with EndFrame and Present.
	//
	// Returns:
	//   - error: an error if the frame could not be started, for example while minimized
	BeginFrame() error

	// DrawCall encodes one indexed draw into the scene pass.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered scene pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: providers whose BindGroups are bound at indices 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame composites the scene target and overlay onto the surface and submits the frame.
	EndFrame()

	// Present shows the finished frame.
	Present()

	// Release frees all pipelines and GPU objects.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance for the given window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface is rendered into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		pixelRatio:    1,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.Resize(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.surfaceWidth, r.surfaceHeight = width, height
	r.backend.ConfigureSurface(width, height)
	if !r.hasOutputSize {
		r.backend.ResizeSceneTarget(max(width, 1), max(height, 1))
	}
}

func (r *renderer) SurfaceSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaceWidth, r.surfaceHeight
}

func (r *renderer) SetOutputSize(width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputWidth, r.outputHeight = width, height
	r.hasOutputSize = true
	r.applyOutputSize()
}

func (r *renderer) OutputSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasOutputSize {
		return max(r.surfaceWidth, 1), max(r.surfaceHeight, 1)
	}
	return r.targetSize()
}

func (r *renderer) PixelRatio() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) SetPixelRatio(ratio float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pixelRatio = ratio
	if r.hasOutputSize {
		r.applyOutputSize()
	}
}

// targetSize is the scene target size for the current output size, scaled down to fit the
// device's texture limit. Callers hold r.mu.
func (r *renderer) targetSize() (int, int) {
	w, h := outputDimensions(r.outputWidth, r.outputHeight, r.pixelRatio)
	return clampToLimit(w, h, r.backend.MaxTextureDimension())
}

// applyOutputSize forwards the current output size to the backend. Callers hold r.mu.
func (r *renderer) applyOutputSize() {
	w, h := r.targetSize()
	if ow, oh := outputDimensions(r.outputWidth, r.outputHeight, r.pixelRatio); ow != w || oh != h {
		log.Printf("[Renderer] output %dx%d exceeds the device texture limit, rendering %dx%d", ow, oh, w, h)
	}
	r.backend.ResizeSceneTarget(w, h)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, sources ...bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.InitBindGroup(provider, p, group, sources)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) SetOverlay(img *image.RGBA) {
	r.backend.SetOverlay(img)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DrawCall(p, meshProvider, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()

	r.backend.Release()
}
