package material

import (
	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	baseColor         [4]float32
	metalness         float32
	roughness         float32
	uvRepeat          [2]float32
	texture           *common.TextureStagingData
	sampler           common.SamplerStagingData
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a textured physically-based material.
//
// Surface properties are set at construction and read-only through this interface. The bind
// group provider is attached later, when the renderer uploads the material.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA multiplier applied to the texture.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metalness retrieves the metalness factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metalness factor
	Metalness() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// UVRepeat retrieves how many times the texture tiles across the surface on each axis.
	UVRepeat() [2]float32

	// Texture retrieves the staged albedo texture, or nil for a plain white surface.
	Texture() *common.TextureStagingData

	// Sampler retrieves the sampler configuration for the texture.
	Sampler() common.SamplerStagingData

	// Params returns the GPU uniform for this material.
	//
	// Returns:
	//   - GPUMaterialParams: the 32-byte uniform
	Params() GPUMaterialParams

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet uploaded
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metalness: 0.0,
		roughness: 1.0,
		uvRepeat:  [2]float32{1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metalness() float32 {
	return m.metalness
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) UVRepeat() [2]float32 {
	return m.uvRepeat
}

func (m *material) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *material) Sampler() common.SamplerStagingData {
	return m.sampler
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{
		BaseColor: m.baseColor,
		Roughness: m.roughness,
		Metalness: m.metalness,
		UVRepeat:  m.uvRepeat,
	}
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
