package light

import "math"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithTarget is an option builder that sets the point the light is aimed at.
//
// Parameters:
//   - x: the x target component
//   - y: the y target component
//   - z: the z target component
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = [3]float32{x, y, z}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the light intensity
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithDistance sets the cutoff distance. Zero disables the cutoff.
//
// Parameters:
//   - distance: cutoff distance in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the distance option to a lightImpl
func WithDistance(distance float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.distance = max(distance, 0)
	}
}

// WithAngle sets the cone half-angle in radians, clamped to [0, pi/2].
//
// Parameters:
//   - angle: the half-angle in radians
//
// Returns:
//   - LightBuilderOption: a function that applies the angle option to a lightImpl
func WithAngle(angle float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.angle = clamp(angle, 0, math.Pi/2)
	}
}

// WithPenumbra sets the soft-edge fraction of the cone, clamped to [0, 1].
//
// Parameters:
//   - penumbra: the penumbra fraction
//
// Returns:
//   - LightBuilderOption: a function that applies the penumbra option to a lightImpl
func WithPenumbra(penumbra float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.penumbra = clamp(penumbra, 0, 1)
	}
}

// WithDecay sets the distance falloff exponent.
//
// Parameters:
//   - decay: the exponent; 2 is physically correct
//
// Returns:
//   - LightBuilderOption: a function that applies the decay option to a lightImpl
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.decay = max(decay, 0)
	}
}

// WithAmbient sets the uniform ambient intensity evaluated alongside the spot light.
//
// Parameters:
//   - ambient: the ambient intensity
//
// Returns:
//   - LightBuilderOption: a function that applies the ambient option to a lightImpl
func WithAmbient(ambient float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = max(ambient, 0)
	}
}

// normalize3 normalizes a 3-component vector. Returns a zero vector if the input has zero length.
func normalize3(x, y, z float32) [3]float32 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	inv := 1.0 / length
	return [3]float32{x * inv, y * inv, z * inv}
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
