package resolution

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(c *Controller)

// WithBudget sets the initial pixel budget.
//
// Parameters:
//   - b: the budget (Unbounded for no cap)
//
// Returns:
//   - ControllerOption: option function to apply
func WithBudget(b Budget) ControllerOption {
	return func(c *Controller) {
		c.policy.MaxPixels = b
	}
}

// WithTrackDPR sets whether live DPR changes are followed.
//
// Parameters:
//   - track: false freezes the effective DPR at the value captured at startup
//
// Returns:
//   - ControllerOption: option function to apply
func WithTrackDPR(track bool) ControllerOption {
	return func(c *Controller) {
		c.policy.TrackDPRChanges = track
	}
}

// WithInitialDPR overrides the DPR captured from the environment at construction.
//
// Parameters:
//   - dpr: the startup device pixel ratio
//
// Returns:
//   - ControllerOption: option function to apply
func WithInitialDPR(dpr float64) ControllerOption {
	return func(c *Controller) {
		c.initialDPR = dpr
	}
}

// WithListener registers a change listener at construction.
//
// Parameters:
//   - fn: the listener
//
// Returns:
//   - ControllerOption: option function to apply
func WithListener(fn Listener) ControllerOption {
	return func(c *Controller) {
		c.listeners = append(c.listeners, fn)
	}
}
