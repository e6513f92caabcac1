package readout

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
)

type fakeDisplay struct {
	slots   map[Field]bool
	values  map[Field]string
	bar     *progressbar.Snapshot
	flushes int
	err     error
}

func newFakeDisplay(fields ...Field) *fakeDisplay {
	d := &fakeDisplay{slots: make(map[Field]bool), values: make(map[Field]string)}
	for _, f := range fields {
		d.slots[f] = true
	}
	return d
}

func (d *fakeDisplay) HasField(f Field) bool          { return d.slots[f] }
func (d *fakeDisplay) SetField(f Field, value string) { d.values[f] = value }

type fakeBarDisplay struct {
	*fakeDisplay
}

func (d fakeBarDisplay) SetBar(s progressbar.Snapshot) { d.bar = &s }
func (d fakeBarDisplay) Flush() error {
	d.flushes++
	return d.err
}

type fakeOutput struct{ w, h int }

func (o fakeOutput) OutputSize() (int, int) { return o.w, o.h }

type fakePolicy struct {
	policy  resolution.Policy
	initial float64
}

func (p fakePolicy) Policy() resolution.Policy { return p.policy }
func (p fakePolicy) InitialDPR() float64       { return p.initial }

func TestSink_RefreshFormatsFields(t *testing.T) {
	d := newFakeDisplay(AllFields...)
	s := NewSink(
		WithDisplays(d),
		WithOutputSizer(fakeOutput{w: 1632, h: 1224}),
		WithPolicySource(fakePolicy{
			policy:  resolution.Policy{TrackDPRChanges: true, MaxPixels: resolution.Megapixels(2)},
			initial: 2,
		}),
	)

	s.Refresh(
		resolution.RenderTarget{Width: 1632.9, Height: 1224.6, DPR: 2},
		resolution.ViewportState{ClientWidth: 1024, ClientHeight: 768, DevicePixelRatio: 2},
	)

	want := map[Field]string{
		FieldRendererSize: "1632 x 1224",
		FieldRendererMP:   " = 2.00 MegaPixels",
		FieldWindowSize:   "1024 x 768",
		FieldWindowMP:     " = 0.79 MegaPixels",
		FieldDPR:          "2.00",
		FieldInitialDPR:   "2.00",
		FieldBudget:       "2.00 MP",
		FieldTrackDPR:     "on",
	}
	for f, w := range want {
		if got := d.values[f]; got != w {
			t.Errorf("field %s = %q, want %q", f, got, w)
		}
	}
}

func TestSink_AbsentSlotsSkipped(t *testing.T) {
	title := newFakeDisplay(FieldRendererSize, FieldDPR)
	full := newFakeDisplay(AllFields...)
	s := NewSink(WithDisplays(title, full))

	s.Refresh(
		resolution.RenderTarget{Width: 800, Height: 600, DPR: 1},
		resolution.ViewportState{ClientWidth: 800, ClientHeight: 600, DevicePixelRatio: 1},
	)

	if len(title.values) != 2 {
		t.Errorf("title display got %d fields, want 2: %v", len(title.values), title.values)
	}
	if _, ok := title.values[FieldWindowSize]; ok {
		t.Error("display without a window-size slot was written")
	}
	if full.values[FieldWindowSize] != "800 x 600" {
		t.Errorf("full display window size = %q", full.values[FieldWindowSize])
	}
}

func TestSink_NoPolicySourceLeavesPolicyFieldsUnset(t *testing.T) {
	d := newFakeDisplay(AllFields...)
	s := NewSink(WithDisplays(d))
	s.Refresh(resolution.RenderTarget{Width: 10, Height: 10, DPR: 1}, resolution.ViewportState{ClientWidth: 10, ClientHeight: 10})

	for _, f := range []Field{FieldInitialDPR, FieldBudget, FieldTrackDPR} {
		if _, ok := d.values[f]; ok {
			t.Errorf("field %s written without a policy source", f)
		}
		if _, ok := s.Value(f); ok {
			t.Errorf("Value(%s) reported without a policy source", f)
		}
	}
}

func TestSink_DrivesBarWithRendererMegapixels(t *testing.T) {
	bd := fakeBarDisplay{newFakeDisplay()}
	s := NewSink(WithDisplays(bd), WithBar(progressbar.New(progressbar.WithMax(4))))

	s.Refresh(resolution.RenderTarget{Width: 2000, Height: 1000, DPR: 1}, resolution.ViewportState{ClientWidth: 2000, ClientHeight: 1000})

	if bd.bar == nil {
		t.Fatal("bar display received no snapshot")
	}
	if bd.bar.Value != 2 || bd.bar.FillPercent() != 50 {
		t.Errorf("bar = value %v fill %v%%, want 2 and 50%%", bd.bar.Value, bd.bar.FillPercent())
	}
	if bd.flushes != 1 {
		t.Errorf("flushes = %d, want 1", bd.flushes)
	}
}

func TestSink_FlushErrorDoesNotStopOtherDisplays(t *testing.T) {
	failing := fakeBarDisplay{newFakeDisplay()}
	failing.err = errors.New("closed")
	ok := fakeBarDisplay{newFakeDisplay()}
	s := NewSink(WithDisplays(failing, ok))

	s.Refresh(resolution.RenderTarget{Width: 10, Height: 10, DPR: 1}, resolution.ViewportState{ClientWidth: 10, ClientHeight: 10})

	if ok.flushes != 1 {
		t.Errorf("second display flushes = %d, want 1", ok.flushes)
	}
}

func TestSink_FallsBackToFlooredTarget(t *testing.T) {
	s := NewSink()
	s.Refresh(resolution.RenderTarget{Width: 99.9, Height: 50.2, DPR: 1}, resolution.ViewportState{ClientWidth: 100, ClientHeight: 50})
	if got, _ := s.Value(FieldRendererSize); got != "99 x 50" {
		t.Errorf("renderer size = %q, want %q", got, "99 x 50")
	}
}
