package controls

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
)

type fakePolicy struct {
	budgets []resolution.Budget
	track   bool
	toggles int
}

func (p *fakePolicy) SetBudget(b resolution.Budget) { p.budgets = append(p.budgets, b) }
func (p *fakePolicy) ToggleTrackDPR() bool {
	p.toggles++
	p.track = !p.track
	return p.track
}

type fakeRotator struct{ on bool }

func (r *fakeRotator) Autorotate() bool      { return r.on }
func (r *fakeRotator) SetAutorotate(on bool) { r.on = on }

type fakeToggle struct {
	visible bool
	err     error
}

func (t *fakeToggle) Visible() bool { return t.visible }
func (t *fakeToggle) SetVisible(v bool) error {
	if t.err != nil {
		return t.err
	}
	t.visible = v
	return nil
}

type fakeCloser struct{ closed bool }

func (c *fakeCloser) RequestClose() { c.closed = true }

func TestBindings_Presets(t *testing.T) {
	tests := []struct {
		key  uint32
		want resolution.Budget
	}{
		{common.Key1, resolution.Megapixels(0.5)},
		{common.Key2, resolution.Megapixels(1)},
		{common.Key3, resolution.Megapixels(2)},
		{common.Key4, resolution.Megapixels(4)},
		{common.Key5, resolution.Megapixels(8)},
	}
	for _, tt := range tests {
		p := &fakePolicy{}
		b := New(p)
		if !b.HandleKey(tt.key) {
			t.Fatalf("key %d not bound", tt.key)
		}
		if len(p.budgets) != 1 || p.budgets[0] != tt.want {
			t.Errorf("key %d set %v, want %v", tt.key, p.budgets, tt.want)
		}
	}
}

func TestBindings_ZeroRemovesCap(t *testing.T) {
	p := &fakePolicy{}
	New(p).HandleKey(common.Key0)
	if len(p.budgets) != 1 || !p.budgets[0].IsUnbounded() {
		t.Errorf("key 0 set %v, want unbounded", p.budgets)
	}
}

func TestBindings_Toggles(t *testing.T) {
	p := &fakePolicy{}
	rot := &fakeRotator{on: true}
	hud := &fakeToggle{visible: true}
	closer := &fakeCloser{}
	b := New(p, WithRotator(rot), WithHUD(hud), WithCloser(closer))

	for _, k := range []uint32{common.KeyP, common.KeyR, common.KeyH, common.KeyEsc} {
		if !b.HandleKey(k) {
			t.Errorf("key %d not bound", k)
		}
	}
	if p.toggles != 1 || !p.track {
		t.Errorf("track dpr toggles = %d", p.toggles)
	}
	if rot.on {
		t.Error("R did not turn autorotate off")
	}
	if hud.visible {
		t.Error("H did not hide the hud")
	}
	if !closer.closed {
		t.Error("Esc did not request close")
	}
	if len(b.Help()) != 4 {
		t.Errorf("Help() = %q, want a line per bound group", b.Help())
	}
}

func TestBindings_Unbound(t *testing.T) {
	b := New(nil)
	for _, k := range []uint32{common.Key1, common.KeyP, common.KeyR, common.KeyH, common.KeyEsc, 'X'} {
		if b.HandleKey(k) {
			t.Errorf("key %d reported bound without a target", k)
		}
	}
}

func TestBindings_HUDErrorStillHandled(t *testing.T) {
	hud := &fakeToggle{visible: true, err: errors.New("draw failed")}
	if !New(&fakePolicy{}, WithHUD(hud)).HandleKey(common.KeyH) {
		t.Error("H should be handled even when the redraw fails")
	}
}
