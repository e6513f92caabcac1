package pipeline

import (
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Target identifies which attachment set a render pipeline draws into.
type Target int

const (
	// TargetScene draws into the offscreen scene target, which carries depth and MSAA.
	TargetScene Target = iota

	// TargetSurface draws straight onto the swapchain surface with no depth attachment.
	TargetSurface
)

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU render pipeline and the configuration used to build it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string
	target      Target

	// shader holds both stages; it is required to be set before registering a pipeline.
	shader shader.Shader

	bindGroupLayoutDescriptors []wgpu.BindGroupLayoutDescriptor
	vertexLayouts              []wgpu.VertexBufferLayout

	// renderPipeline and bindGroupLayouts are populated by the renderer backend on registration
	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	// The following properties are used to configure the pipeline during creation and can be toggled/set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a GPU render pipeline: its shader, bind group layouts, vertex layouts
// and the depth, blend, cull and topology state required to create it.
type Pipeline interface {
	// PipelineKey returns the unique identifier for this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Target returns the attachment set this pipeline draws into.
	Target() Target

	// Shader returns the shader module holding the vertex and fragment entry points.
	Shader() shader.Shader

	// BindGroupLayoutDescriptors returns one descriptor per bind group, indexed by group number.
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptor returns the descriptor for a group, or an empty descriptor if out of range.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor for the group
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayout returns the GPU layout created for a group, or nil before registration.
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// VertexLayouts returns the vertex buffer layouts consumed by the vertex stage.
	VertexLayouts() []wgpu.VertexBufferLayout

	// RenderPipeline returns the created GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// DepthTestEnabled reports whether fragments are depth tested. Ignored for TargetSurface.
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth. Ignored for TargetSurface.
	DepthWriteEnabled() bool

	// BlendEnabled reports whether BlendState is applied to the color target.
	BlendEnabled() bool

	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU pipeline and the bind group layouts it was created with.
	//
	// Parameters:
	//   - rp: the created render pipeline
	//   - layouts: the bind group layouts, indexed by group number
	SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout)

	// Release releases the GPU pipeline and its bind group layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new render Pipeline description with the provided options applied.
// Defaults: depth test and write on, blending off, no culling, triangle lists, CCW front faces,
// and a straight-alpha blend state for when blending is enabled.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		target:            TargetScene,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Target() Target {
	return p.target
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayoutDescriptors
}

func (p *pipeline) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	if group < 0 || group >= len(p.bindGroupLayoutDescriptors) {
		return wgpu.BindGroupLayoutDescriptor{}
	}
	return p.bindGroupLayoutDescriptors[group]
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout) {
	p.renderPipeline = rp
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}
