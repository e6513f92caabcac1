package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline("scene")
	if p.PipelineKey() != "scene" || p.Target() != TargetScene {
		t.Errorf("key/target = %q/%v, want scene/TargetScene", p.PipelineKey(), p.Target())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() || p.BlendEnabled() {
		t.Error("default should depth test and write without blending")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.CullMode() != wgpu.CullModeNone {
		t.Errorf("topology/cull = %v/%v", p.Topology(), p.CullMode())
	}
	if p.RenderPipeline() != nil || p.BindGroupLayout(0) != nil {
		t.Error("GPU objects must be nil before registration")
	}
}

func TestNewPipeline_Options(t *testing.T) {
	s := shader.NewShader(shader.BlitShaderKey, shader.BlitSource)
	layout := wgpu.BindGroupLayoutDescriptor{Label: "blit"}
	p := NewPipeline("overlay",
		WithShader(s),
		WithTarget(TargetSurface),
		WithBindGroupLayouts(layout),
		WithDepthTestEnabled(false),
		WithBlendEnabled(true),
		WithBlendState(PremultipliedAlphaBlend),
		WithCullMode(wgpu.CullModeBack),
	)

	if p.Shader() != s || p.Target() != TargetSurface {
		t.Error("shader or target not applied")
	}
	if got := p.BindGroupLayoutDescriptor(0).Label; got != "blit" {
		t.Errorf("BindGroupLayoutDescriptor(0).Label = %q, want blit", got)
	}
	if got := p.BindGroupLayoutDescriptor(3).Label; got != "" {
		t.Errorf("out of range descriptor label = %q, want empty", got)
	}
	if p.DepthTestEnabled() || !p.BlendEnabled() || p.CullMode() != wgpu.CullModeBack {
		t.Error("depth, blend or cull options not applied")
	}
	if p.BlendState().Color.SrcFactor != wgpu.BlendFactorOne {
		t.Errorf("blend src factor = %v, want One", p.BlendState().Color.SrcFactor)
	}
}
