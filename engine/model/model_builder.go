package model

import (
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithGeometry is an option builder that sets the mesh of the Model.
//
// Parameters:
//   - geometry: vertices and indices, usually from NewBox or NewPlane
//
// Returns:
//   - ModelBuilderOption: a function that applies the geometry option to a model
func WithGeometry(geometry Geometry) ModelBuilderOption {
	return func(m *model) {
		m.geometry = geometry
	}
}

// WithMaterial is an option builder that sets the surface material of the Model.
//
// Parameters:
//   - mat: the material to draw with
//
// Returns:
//   - ModelBuilderOption: a function that applies the material option to a model
func WithMaterial(mat material.Material) ModelBuilderOption {
	return func(m *model) {
		m.material = mat
	}
}

// WithPosition sets the initial world-space translation.
func WithPosition(x, y, z float32) ModelBuilderOption {
	return func(m *model) {
		m.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation in radians.
func WithRotation(x, y, z float32) ModelBuilderOption {
	return func(m *model) {
		m.rotation = [3]float32{x, y, z}
	}
}

// WithScale sets the per-axis scale. Defaults to 1 on every axis.
func WithScale(x, y, z float32) ModelBuilderOption {
	return func(m *model) {
		m.scale = [3]float32{x, y, z}
	}
}
