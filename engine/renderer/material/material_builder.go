package material

import (
	"github.com/Carmen-Shannon/oxy-dpr/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithMetalness is an option builder that sets the metalness factor of the material.
//
// Parameters:
//   - metalness: the metalness factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metalness option to a material
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalness = metalness
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithUVRepeat sets how many times the texture tiles across the surface.
//
// Parameters:
//   - u, v: repeat counts along each texture axis
//
// Returns:
//   - MaterialBuilderOption: a function that applies the repeat option to a material
func WithUVRepeat(u, v float32) MaterialBuilderOption {
	return func(m *material) {
		m.uvRepeat = [2]float32{u, v}
	}
}

// WithTexture is an option builder that sets the albedo texture.
//
// Parameters:
//   - texture: staged RGBA pixels
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(texture *common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.texture = texture
	}
}

// WithSampler is an option builder that sets the texture sampler configuration.
// Zero fields fall back to repeat addressing and linear filtering.
//
// Parameters:
//   - sampler: the sampler configuration
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler option to a material
func WithSampler(sampler common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = sampler
	}
}
