package pipeline

import (
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option for configuring a Pipeline via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithShader sets the shader module providing both the vertex and fragment stages.
//
// Parameters:
//   - s: the parsed shader
//
// Returns:
//   - PipelineBuilderOption: a function that applies the shader option to a pipeline
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.shader = s
	}
}

// WithTarget selects the attachment set the pipeline draws into.
//
// Parameters:
//   - target: TargetScene or TargetSurface
//
// Returns:
//   - PipelineBuilderOption: a function that applies the target option to a pipeline
func WithTarget(target Target) PipelineBuilderOption {
	return func(p *pipeline) {
		p.target = target
	}
}

// WithBindGroupLayouts sets the bind group layout descriptors, one per group in group order.
//
// Parameters:
//   - descriptors: the layout descriptors
//
// Returns:
//   - PipelineBuilderOption: a function that applies the layouts option to a pipeline
func WithBindGroupLayouts(descriptors ...wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayoutDescriptors = descriptors
	}
}

// WithVertexLayouts sets the vertex buffer layouts, one per vertex buffer slot.
//
// Parameters:
//   - layouts: the vertex buffer layouts
//
// Returns:
//   - PipelineBuilderOption: a function that applies the vertex layouts option to a pipeline
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}

// WithDepthTestEnabled toggles depth testing.
//
// Parameters:
//   - enabled: true to depth test fragments
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth test option to a pipeline
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled toggles depth writes.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth write option to a pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithBlendEnabled toggles color blending.
//
// Parameters:
//   - enabled: true to apply the blend state
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend option to a pipeline
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the wgpu cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that applies the cull mode option to a pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithBlendState replaces the blend state used when blending is enabled.
//
// Parameters:
//   - blendState: the blend state
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend state option to a pipeline
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}

// PremultipliedAlphaBlend composites colors whose RGB is already multiplied by alpha.
var PremultipliedAlphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}
