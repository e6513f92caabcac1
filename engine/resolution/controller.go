package resolution

import (
	"log"
)

// Environment provides the live viewport measurements. Values are read on every recompute and never
// cached by the controller.
type Environment interface {
	// ClientSize returns the drawable area in layout pixels.
	ClientSize() (width, height float64)

	// DevicePixelRatio returns the current ratio of physical to layout pixels.
	DevicePixelRatio() float64
}

// Backend is the rendering backend whose output buffer the controller sizes.
type Backend interface {
	// SetOutputSize resizes the output buffer. Dimensions may be fractional; the backend rounds down.
	SetOutputSize(width, height float64)

	// PixelRatio returns the backend's own pixel-ratio multiplier.
	PixelRatio() float64

	// SetPixelRatio sets the backend's own pixel-ratio multiplier.
	SetPixelRatio(ratio float64)
}

// AspectTarget receives the aspect ratio after every recompute. camera.Camera satisfies it.
type AspectTarget interface {
	SetAspect(aspect float32)
}

// Listener is notified after every applied recompute.
type Listener func(target RenderTarget, viewport ViewportState)

// Controller owns the resolution policy, the DPR captured at startup and the latest render target.
// All methods are meant to be called from the UI thread.
type Controller struct {
	env     Environment
	backend Backend
	aspect  AspectTarget

	policy     Policy
	initialDPR float64

	target    RenderTarget
	hasTarget bool

	listeners []Listener
}

// NewController creates a Controller and captures the initial device pixel ratio from env.
// The default policy tracks DPR changes with an unbounded budget. No computation happens until
// Recompute is called.
//
// Parameters:
//   - env: the environment providing viewport measurements
//   - backend: the rendering backend to resize
//   - aspect: the camera receiving the aspect ratio (may be nil)
//   - options: functional options to configure the controller
//
// Returns:
//   - *Controller: the configured controller
func NewController(env Environment, backend Backend, aspect AspectTarget, options ...ControllerOption) *Controller {
	c := &Controller{
		env:     env,
		backend: backend,
		aspect:  aspect,
		policy: Policy{
			TrackDPRChanges: true,
			MaxPixels:       Unbounded,
		},
		initialDPR: env.DevicePixelRatio(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// OnChange registers a listener called after every applied recompute.
//
// Parameters:
//   - fn: the listener
func (c *Controller) OnChange(fn Listener) {
	c.listeners = append(c.listeners, fn)
}

// Viewport reads a fresh ViewportState from the environment.
func (c *Controller) Viewport() ViewportState {
	w, h := c.env.ClientSize()
	return ViewportState{
		ClientWidth:      w,
		ClientHeight:     h,
		DevicePixelRatio: c.env.DevicePixelRatio(),
	}
}

// Recompute runs the full computation against a fresh viewport and applies it: the camera aspect is
// updated, the backend pixel ratio is forced back to 1 and the backend output is resized. Listeners
// are notified afterwards.
//
// When the viewport has no area nothing is applied and the previous target is returned with false.
//
// Returns:
//   - RenderTarget: the applied target, or the previous one when nothing was applied
//   - bool: true if a new target was applied
func (c *Controller) Recompute() (RenderTarget, bool) {
	v := c.Viewport()
	t, ok := Compute(v, c.initialDPR, c.policy)
	if !ok {
		return c.target, false
	}

	if c.aspect != nil {
		c.aspect.SetAspect(float32(t.Aspect))
	}

	// The backend must not scale on its own; this controller is the only authority on pixel counts.
	if r := c.backend.PixelRatio(); r != 1 {
		log.Printf("[Resolution] renderer pixel ratio is %.2f but must be 1, overriding", r)
		c.backend.SetPixelRatio(1)
	}
	c.backend.SetOutputSize(t.Width, t.Height)

	c.target = t
	c.hasTarget = true

	for _, fn := range c.listeners {
		fn(t, v)
	}
	return t, true
}

// Policy returns the current policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Target returns the last applied render target and whether one has been applied yet.
func (c *Controller) Target() (RenderTarget, bool) {
	return c.target, c.hasTarget
}

// InitialDPR returns the device pixel ratio captured at construction.
func (c *Controller) InitialDPR() float64 {
	return c.initialDPR
}

// EffectiveDPR returns the DPR the next recompute would use under the current policy.
func (c *Controller) EffectiveDPR() float64 {
	if c.policy.TrackDPRChanges {
		return c.env.DevicePixelRatio()
	}
	return c.initialDPR
}

// SetBudget changes the pixel budget and recomputes.
//
// Parameters:
//   - b: the new budget (Unbounded for no cap)
func (c *Controller) SetBudget(b Budget) {
	c.policy.MaxPixels = b
	c.Recompute()
}

// SetTrackDPR enables or disables tracking of live DPR changes and recomputes.
//
// Parameters:
//   - track: true to follow the live DPR, false to freeze at the initial DPR
func (c *Controller) SetTrackDPR(track bool) {
	c.policy.TrackDPRChanges = track
	c.Recompute()
}

// ToggleTrackDPR flips DPR tracking and recomputes.
//
// Returns:
//   - bool: the new tracking state
func (c *Controller) ToggleTrackDPR() bool {
	c.SetTrackDPR(!c.policy.TrackDPRChanges)
	return c.policy.TrackDPRChanges
}

// SetPolicy replaces the whole policy and recomputes once.
//
// Parameters:
//   - p: the new policy
func (c *Controller) SetPolicy(p Policy) {
	c.policy = p
	c.Recompute()
}
