package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
)

// model is the implementation of the Model interface.
type model struct {
	mu sync.RWMutex

	name     string
	geometry Geometry
	material material.Material
	position [3]float32
	rotation [3]float32
	scale    [3]float32

	meshProvider bind_group_provider.BindGroupProvider
}

// Model is a piece of geometry placed in the world with a material.
//
// The transform is safe to mutate from the tick goroutine while the render goroutine
// reads ModelData.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Geometry retrieves the CPU-side mesh.
	//
	// Returns:
	//   - Geometry: vertices and indices
	Geometry() Geometry

	// Material retrieves the surface material, or nil if none was set.
	Material() material.Material

	// Position retrieves the world-space translation.
	Position() [3]float32

	// Rotation retrieves the Euler rotation in radians (applied Y, X, Z).
	Rotation() [3]float32

	// Scale retrieves the per-axis scale.
	Scale() [3]float32

	// SetPosition moves the model.
	SetPosition(x, y, z float32)

	// SetRotation replaces the Euler rotation.
	SetRotation(x, y, z float32)

	// Rotate adds to the Euler rotation.
	//
	// Parameters:
	//   - dx, dy, dz: radians to add around each axis
	Rotate(dx, dy, dz float32)

	// ModelData builds the GPU uniform holding the current model matrix.
	//
	// Returns:
	//   - GPUModelData: the 64-byte uniform
	ModelData() GPUModelData

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider, or nil before upload
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider attaches the GPU resources created by the Renderer.
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		scale: [3]float32{1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Geometry() Geometry {
	return m.geometry
}

func (m *model) Material() material.Material {
	return m.material
}

func (m *model) Position() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}

func (m *model) Rotation() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rotation
}

func (m *model) Scale() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scale
}

func (m *model) SetPosition(x, y, z float32) {
	m.mu.Lock()
	m.position = [3]float32{x, y, z}
	m.mu.Unlock()
}

func (m *model) SetRotation(x, y, z float32) {
	m.mu.Lock()
	m.rotation = [3]float32{x, y, z}
	m.mu.Unlock()
}

func (m *model) Rotate(dx, dy, dz float32) {
	m.mu.Lock()
	m.rotation[0] += dx
	m.rotation[1] += dy
	m.rotation[2] += dz
	m.mu.Unlock()
}

func (m *model) ModelData() GPUModelData {
	m.mu.RLock()
	p, r, s := m.position, m.rotation, m.scale
	m.mu.RUnlock()

	var d GPUModelData
	common.BuildModelMatrix(d.Model[:], p[0], p[1], p[2], r[0], r[1], r[2], s[0], s[1], s[2])
	return d
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.meshProvider = provider
}
