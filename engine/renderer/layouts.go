package renderer

import (
	"github.com/Carmen-Shannon/oxy-dpr/engine/camera"
	"github.com/Carmen-Shannon/oxy-dpr/engine/light"
	"github.com/Carmen-Shannon/oxy-dpr/engine/model"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices and bindings of the scene shader.
const (
	SceneGroupGlobals = 0
	SceneGroupObject  = 1

	BindingCamera = 0
	BindingLight  = 1

	BindingModelData      = 0
	BindingMaterialParams = 1
	BindingAlbedoTexture  = 2
	BindingAlbedoSampler  = 3
)

// Bindings of the blit shader, shared by the upscale and overlay passes.
const (
	bindingBlitRect    = 0
	bindingBlitTexture = 1
	bindingBlitSampler = 2
)

// ScenePipelineKey identifies the lit mesh pipeline built by NewScenePipeline.
const ScenePipelineKey = "scene"

const (
	blitPipelineKey    = "blit"
	overlayPipelineKey = "overlay"
)

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: size,
		},
	}
}

func textureEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		},
	}
}

// NewScenePipeline describes the lit mesh pipeline. Group 0 holds the camera and spot light;
// group 1 holds one object's model matrix, material parameters, albedo texture and sampler.
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
func NewScenePipeline() pipeline.Pipeline {
	var cam camera.GPUCameraUniform
	var spot light.GPUSpotLight
	var md model.GPUModelData
	var mp material.GPUMaterialParams

	globals := wgpu.BindGroupLayoutDescriptor{
		Label: "Scene Globals Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(BindingCamera, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, uint64(cam.Size())),
			uniformEntry(BindingLight, wgpu.ShaderStageFragment, uint64(spot.Size())),
		},
	}
	object := wgpu.BindGroupLayoutDescriptor{
		Label: "Scene Object Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(BindingModelData, wgpu.ShaderStageVertex, uint64(md.Size())),
			uniformEntry(BindingMaterialParams, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, uint64(mp.Size())),
			textureEntry(BindingAlbedoTexture),
			samplerEntry(BindingAlbedoSampler),
		},
	}

	return pipeline.NewPipeline(ScenePipelineKey,
		pipeline.WithShader(shader.NewShader(shader.SceneShaderKey, shader.SceneSource)),
		pipeline.WithTarget(pipeline.TargetScene),
		pipeline.WithBindGroupLayouts(globals, object),
		pipeline.WithVertexLayouts(model.VertexLayout()),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)
}

// newBlitPipelines describes the surface passes: an opaque upscale of the scene target and a
// premultiplied-alpha composite of the overlay.
func newBlitPipelines() (blit, overlay pipeline.Pipeline) {
	var rect material.GPUOverlayRect
	layout := wgpu.BindGroupLayoutDescriptor{
		Label: "Blit Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(bindingBlitRect, wgpu.ShaderStageVertex, uint64(rect.Size())),
			textureEntry(bindingBlitTexture),
			samplerEntry(bindingBlitSampler),
		},
	}
	s := shader.NewShader(shader.BlitShaderKey, shader.BlitSource)

	blit = pipeline.NewPipeline(blitPipelineKey,
		pipeline.WithShader(s),
		pipeline.WithTarget(pipeline.TargetSurface),
		pipeline.WithBindGroupLayouts(layout),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	)
	overlay = pipeline.NewPipeline(overlayPipelineKey,
		pipeline.WithShader(s),
		pipeline.WithTarget(pipeline.TargetSurface),
		pipeline.WithBindGroupLayouts(layout),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendEnabled(true),
		pipeline.WithBlendState(pipeline.PremultipliedAlphaBlend),
	)
	return blit, overlay
}
