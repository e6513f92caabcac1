package light

import (
	"math"
	"sync"
)

type lightImpl struct {
	mu *sync.Mutex

	position  [3]float32
	target    [3]float32
	color     [3]float32
	intensity float32
	distance  float32
	angle     float32
	penumbra  float32
	decay     float32
	ambient   float32
}

// Light is a spot light aimed at a target point, plus the scene's uniform ambient term.
//
// The cone is described by a half-angle and a penumbra fraction: light is at full strength
// inside angle*(1-penumbra) and fades to zero at angle. Distance is the hard cutoff (0 means
// none) and decay the falloff exponent.
type Light interface {
	// Position returns the light's world-space position.
	Position() [3]float32

	// Target returns the world-space point the light is aimed at.
	Target() [3]float32

	// Direction returns the normalized direction from position to target.
	Direction() [3]float32

	// Color returns the RGB color.
	Color() [3]float32

	// Intensity returns the scalar multiplier.
	Intensity() float32

	// Distance returns the cutoff distance, 0 for unlimited.
	Distance() float32

	// Angle returns the cone half-angle in radians.
	Angle() float32

	// Penumbra returns the soft-edge fraction of the cone in [0, 1].
	Penumbra() float32

	// Decay returns the distance falloff exponent.
	Decay() float32

	// Ambient returns the uniform ambient intensity.
	Ambient() float32

	// SetPosition moves the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetTarget re-aims the light.
	//
	// Parameters:
	//   - x, y, z: target components
	SetTarget(x, y, z float32)

	// SetIntensity changes the scalar multiplier.
	SetIntensity(intensity float32)

	// Uniform returns the GPU representation of the light.
	//
	// Returns:
	//   - GPUSpotLight: the 64-byte uniform
	Uniform() GPUSpotLight
}

var _ Light = &lightImpl{}

// NewSpotLight creates a spot light with sensible defaults: white, intensity 1, aimed at the
// origin from (0, 0, 5) with a 30 degree cone.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the configured light
func NewSpotLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		position:  [3]float32{0, 0, 5},
		color:     [3]float32{1, 1, 1},
		intensity: 1,
		angle:     math.Pi / 6,
		decay:     2,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Target() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction()
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Distance() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.distance
}

func (l *lightImpl) Angle() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.angle
}

func (l *lightImpl) Penumbra() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.penumbra
}

func (l *lightImpl) Decay() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.decay
}

func (l *lightImpl) Ambient() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ambient
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetTarget(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = [3]float32{x, y, z}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) Uniform() GPUSpotLight {
	l.mu.Lock()
	defer l.mu.Unlock()
	return GPUSpotLight{
		Position:    l.position,
		Intensity:   l.intensity,
		Direction:   l.direction(),
		Distance:    l.distance,
		Color:       l.color,
		Decay:       l.decay,
		ConeCos:     float32(math.Cos(float64(l.angle))),
		PenumbraCos: float32(math.Cos(float64(l.angle * (1 - l.penumbra)))),
		Ambient:     l.ambient,
	}
}

// direction is computed on demand so moving either end keeps it consistent.
// Caller must hold the mutex.
func (l *lightImpl) direction() [3]float32 {
	return normalize3(
		l.target[0]-l.position[0],
		l.target[1]-l.position[1],
		l.target[2]-l.position[2],
	)
}
