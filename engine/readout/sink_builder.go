package readout

import "github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"

// SinkOption is a functional option for configuring a Sink.
type SinkOption func(s *Sink)

// WithBar sets the progress bar the sink drives.
func WithBar(bar *progressbar.Bar) SinkOption {
	return func(s *Sink) {
		s.bar = bar
	}
}

// WithDisplays attaches displays at construction.
func WithDisplays(displays ...Display) SinkOption {
	return func(s *Sink) {
		for _, d := range displays {
			s.AddDisplay(d)
		}
	}
}

// WithOutputSizer sets where the renderer size is read from. Without one the sink floors the
// target dimensions, which is what the renderer backend does.
func WithOutputSizer(o OutputSizer) SinkOption {
	return func(s *Sink) {
		s.output = o
	}
}

// WithPolicySource enables the initial DPR, budget and DPR tracking fields.
func WithPolicySource(p PolicySource) SinkOption {
	return func(s *Sink) {
		s.policy = p
	}
}
