package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/camera"
	"github.com/Carmen-Shannon/oxy-dpr/engine/light"
	"github.com/Carmen-Shannon/oxy-dpr/engine/model"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
)

// DefaultRotationStep is the rotation in radians applied per tick to spinning models on the
// X and Y axes.
const DefaultRotationStep float32 = 0.004

// whiteTexel is bound for materials without a texture so the shader's sample is a no-op.
var whiteTexel = common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}

// Scene holds the models, camera and spot light of one view and drives their GPU side:
// Init uploads meshes and materials, Prepare writes per-frame uniforms and DrawCalls encodes
// one draw per model. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Light returns the scene's spot light, or nil.
	Light() light.Light

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Models returns the models in draw order.
	//
	// Returns:
	//   - []model.Model: a copy of the model list
	Models() []model.Model

	// Add appends a model to the scene. Models added after Init are uploaded immediately.
	//
	// Parameters:
	//   - m: the model to add
	//
	// Returns:
	//   - error: an error if the upload fails
	Add(m model.Model) error

	// Autorotate reports whether spinning models advance on Update.
	Autorotate() bool

	// SetAutorotate starts or stops spinning models.
	//
	// Parameters:
	//   - on: true to spin
	SetAutorotate(on bool)

	// Init registers the scene pipeline and uploads every model's mesh, material and bind
	// groups. Calling it again is a no-op.
	//
	// Returns:
	//   - error: an error if any GPU resource cannot be created
	Init() error

	// Update advances the scene by one fixed tick.
	Update()

	// Prepare writes the camera, light and per-model uniforms for the next frame.
	Prepare()

	// DrawCalls issues one draw call per model. Must be called within a BeginFrame/EndFrame
	// block on the renderer.
	//
	// Returns:
	//   - error: error if a draw call fails
	DrawCalls() error

	// Release frees the GPU resources the scene created.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam   camera.Camera
	spot  light.Light
	r     renderer.Renderer
	nodes []model.Model

	// models advanced by Update, and the per-tick step
	spinning     map[model.Model]bool
	rotationStep float32
	autorotate   bool

	globals     bind_group_provider.BindGroupProvider
	fallback    material.Material // shared by models without a material
	initialized bool

	// reused each frame
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer. Both are required and
// NewScene panics if either is nil. GPU resources are not created until Init.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		cam:                cam,
		r:                  r,
		spinning:           make(map[model.Model]bool),
		rotationStep:       DefaultRotationStep,
		autorotate:         true,
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 2),
	}

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Light() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spot
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Models() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Model(nil), s.nodes...)
}

func (s *scene) Add(m model.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		if err := s.initModel(m); err != nil {
			return err
		}
	}
	s.nodes = append(s.nodes, m)
	return nil
}

func (s *scene) Autorotate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autorotate
}

func (s *scene) SetAutorotate(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autorotate = on
}

func (s *scene) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := s.r.RegisterPipelines(renderer.NewScenePipeline()); err != nil {
		return fmt.Errorf("scene %q: %w", s.name, err)
	}

	s.globals = bind_group_provider.NewBindGroupProvider(s.name + " Globals")
	if err := s.r.InitBindGroup(s.globals, renderer.ScenePipelineKey, renderer.SceneGroupGlobals); err != nil {
		return fmt.Errorf("scene %q globals: %w", s.name, err)
	}

	for _, m := range s.nodes {
		if err := s.initModel(m); err != nil {
			return err
		}
	}
	s.initialized = true
	return nil
}

// initModel uploads one model. The material's texture and sampler live on their own provider
// and are shared into the model's object bind group. Callers hold s.mu.
func (s *scene) initModel(m model.Model) error {
	mat := m.Material()
	if mat == nil {
		if s.fallback == nil {
			s.fallback = material.NewMaterial(material.WithName(s.name + " Default"))
		}
		mat = s.fallback
	}

	matProvider := mat.BindGroupProvider()
	if matProvider == nil {
		matProvider = bind_group_provider.NewBindGroupProvider(m.Name() + " Material")
		tex := mat.Texture()
		if tex == nil {
			tex = &whiteTexel
		}
		if err := s.r.InitTextureView(matProvider, renderer.BindingAlbedoTexture, *tex); err != nil {
			return fmt.Errorf("model %q texture: %w", m.Name(), err)
		}
		if err := s.r.InitSampler(matProvider, renderer.BindingAlbedoSampler, mat.Sampler()); err != nil {
			return fmt.Errorf("model %q sampler: %w", m.Name(), err)
		}
		mat.SetBindGroupProvider(matProvider)
	}

	mesh := bind_group_provider.NewBindGroupProvider(m.Name())
	geo := m.Geometry()
	if err := s.r.InitMeshBuffers(mesh, geo.VertexBytes(), geo.IndexBytes(), geo.IndexCount()); err != nil {
		return fmt.Errorf("model %q mesh: %w", m.Name(), err)
	}
	if err := s.r.InitBindGroup(mesh, renderer.ScenePipelineKey, renderer.SceneGroupObject, matProvider); err != nil {
		return fmt.Errorf("model %q bind group: %w", m.Name(), err)
	}
	m.SetMeshProvider(mesh)

	params := mat.Params()
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: mesh,
			Binding:  renderer.BindingMaterialParams,
			Offset:   0,
			Data:     params.Marshal(),
		},
	})
	return nil
}

func (s *scene) Update() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.autorotate {
		return
	}
	for _, m := range s.nodes {
		if s.spinning[m] {
			m.Rotate(s.rotationStep, s.rotationStep, 0)
		}
	}
}

func (s *scene) Prepare() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}

	writes := s.writePool[:0]

	camUniform := s.cam.Uniform()
	writes = append(writes, bind_group_provider.BufferWrite{
		Provider: s.globals,
		Binding:  renderer.BindingCamera,
		Data:     camUniform.Marshal(),
	})

	if s.spot != nil {
		spotUniform := s.spot.Uniform()
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.globals,
			Binding:  renderer.BindingLight,
			Data:     spotUniform.Marshal(),
		})
	}

	for _, m := range s.nodes {
		mesh := m.MeshProvider()
		if mesh == nil {
			continue
		}
		md := m.ModelData()
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: mesh,
			Binding:  renderer.BindingModelData,
			Data:     md.Marshal(),
		})
	}

	s.r.WriteBuffers(writes)
	s.writePool = writes
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return fmt.Errorf("scene %q has not been initialized", s.name)
	}

	for _, m := range s.nodes {
		mesh := m.MeshProvider()
		if mesh == nil || mesh.IndexCount() == 0 {
			continue
		}

		bindGroups := append(s.drawBindGroupsPool[:0], s.globals, mesh)
		if err := s.r.DrawCall(renderer.ScenePipelineKey, mesh, bindGroups); err != nil {
			return fmt.Errorf("draw call failed for model %q in scene %q: %w", m.Name(), s.name, err)
		}
	}

	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := make(map[bind_group_provider.BindGroupProvider]bool)
	for _, m := range s.nodes {
		if mesh := m.MeshProvider(); mesh != nil {
			mesh.Release()
			m.SetMeshProvider(nil)
		}
		if mat := m.Material(); mat != nil {
			if p := mat.BindGroupProvider(); p != nil && !released[p] {
				p.Release()
				released[p] = true
			}
		}
	}
	if s.fallback != nil {
		if p := s.fallback.BindGroupProvider(); p != nil && !released[p] {
			p.Release()
		}
		s.fallback = nil
	}
	if s.globals != nil {
		s.globals.Release()
		s.globals = nil
	}
	s.initialized = false
}
