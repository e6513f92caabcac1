package readout

import (
	"fmt"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
)

// PolicySource exposes the controller state that is not part of a RenderTarget.
type PolicySource interface {
	Policy() resolution.Policy
	InitialDPR() float64
}

// Sink writes controller output to a set of displays. It is not safe for concurrent use;
// Refresh runs on the UI thread.
type Sink struct {
	bar      *progressbar.Bar
	displays []Display
	output   OutputSizer
	policy   PolicySource

	last map[Field]string
}

// NewSink creates a Sink.
//
// Parameters:
//   - options: functional options to configure the sink
//
// Returns:
//   - *Sink: the sink
func NewSink(options ...SinkOption) *Sink {
	s := &Sink{
		last: make(map[Field]string, len(AllFields)),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.bar == nil {
		s.bar = progressbar.New()
	}
	return s
}

// AddDisplay attaches a display. It receives values from the next Refresh on.
func (s *Sink) AddDisplay(d Display) {
	if d == nil {
		return
	}
	s.displays = append(s.displays, d)
}

// Bar returns the sink's progress bar.
func (s *Sink) Bar() *progressbar.Bar {
	return s.bar
}

// Value returns the last string written for a field, if any.
func (s *Sink) Value(f Field) (string, bool) {
	v, ok := s.last[f]
	return v, ok
}

// Refresh formats every field from the target and viewport, writes each one to the displays
// that have a slot for it, updates the bar and pushes the bar snapshot to every BarDisplay.
// Its signature matches resolution.Listener so it can be registered with Controller.OnChange.
//
// Parameters:
//   - target: the controller's latest render target
//   - viewport: the viewport the target was computed from
func (s *Sink) Refresh(target resolution.RenderTarget, viewport resolution.ViewportState) {
	rw, rh := floorSize(target.Width, target.Height)
	if s.output != nil {
		rw, rh = s.output.OutputSize()
	}
	rendererMP := float64(rw) * float64(rh) * 1e-6

	ww, wh := int(math.Round(viewport.ClientWidth)), int(math.Round(viewport.ClientHeight))
	windowMP := float64(ww) * float64(wh) * 1e-6

	values := map[Field]string{
		FieldRendererSize: fmt.Sprintf("%d x %d", rw, rh),
		FieldRendererMP:   fmt.Sprintf(" = %.2f MegaPixels", rendererMP),
		FieldWindowSize:   fmt.Sprintf("%d x %d", ww, wh),
		FieldWindowMP:     fmt.Sprintf(" = %.2f MegaPixels", windowMP),
		FieldDPR:          fmt.Sprintf("%.2f", target.DPR),
	}
	if s.policy != nil {
		p := s.policy.Policy()
		values[FieldInitialDPR] = fmt.Sprintf("%.2f", s.policy.InitialDPR())
		values[FieldBudget] = p.MaxPixels.String()
		values[FieldTrackDPR] = onOff(p.TrackDPRChanges)
	}

	for _, f := range AllFields {
		v, ok := values[f]
		if !ok {
			continue
		}
		s.last[f] = v
		for _, d := range s.displays {
			if d.HasField(f) {
				d.SetField(f, v)
			}
		}
	}

	s.bar.Update(rendererMP)
	snap := s.bar.Snapshot()
	for _, d := range s.displays {
		if bd, ok := d.(BarDisplay); ok {
			bd.SetBar(snap)
		}
		if fl, ok := d.(Flusher); ok {
			if err := fl.Flush(); err != nil {
				log.Printf("[Readout] display flush failed: %v", err)
			}
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
