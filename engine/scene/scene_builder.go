package scene

import (
	"github.com/Carmen-Shannon/oxy-dpr/engine/light"
	"github.com/Carmen-Shannon/oxy-dpr/engine/model"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithModels adds initial models to the scene in draw order.
//
// Parameters:
//   - models: the models to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModels(models ...model.Model) SceneBuilderOption {
	return func(s *scene) {
		s.nodes = append(s.nodes, models...)
	}
}

// WithSpinning marks models that rotate on every Update while autorotate is on. The models
// must also be added with WithModels or Add.
//
// Parameters:
//   - models: the models to spin
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpinning(models ...model.Model) SceneBuilderOption {
	return func(s *scene) {
		for _, m := range models {
			s.spinning[m] = true
		}
	}
}

// WithAutorotate sets whether spinning models start rotating. Default is true.
func WithAutorotate(on bool) SceneBuilderOption {
	return func(s *scene) {
		s.autorotate = on
	}
}

// WithLight sets the scene's spot light.
//
// Parameters:
//   - l: the spot light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.spot = l
	}
}
