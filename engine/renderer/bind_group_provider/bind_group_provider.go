package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label prefixed to every GPU object created for this provider.
	label string

	// The following fields are GPU allocated resources populated by the Renderer.

	bindGroup    *wgpu.BindGroup
	buffers      map[int]*wgpu.Buffer
	textures     map[int]*wgpu.Texture
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	// Mesh providers additionally hold vertex and index buffers.

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider holds the GPU resources behind one bind group, and for meshes the vertex
// and index buffers. Components (materials, meshes, the overlay) own a provider; the Renderer
// fills it in and reads it back when encoding draw calls.
//
// Usage pattern:
//  1. Component creates a provider with NewBindGroupProvider
//  2. Renderer creates buffers, textures and the bind group on it
//  3. Scene queues BufferWrites against it each frame
//  4. Renderer binds BindGroup() during draw calls
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding, or nil before initialization.
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Texture returns the texture at a binding index, or nil.
	Texture(binding int) *wgpu.Texture

	// TextureView returns the texture view at a binding index, or nil.
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at a binding index, or nil.
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil if not initialized.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices to draw.
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetTexture(binding int, tex *wgpu.Texture)
	SetTextureView(binding int, tv *wgpu.TextureView)
	SetSampler(binding int, s *wgpu.Sampler)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label for GPU objects
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string) BindGroupProvider {
	return &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture) {
	p.textures[binding] = tex
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for i, tex := range p.textures {
		if tex != nil {
			tex.Release()
		}
		delete(p.textures, i)
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}
