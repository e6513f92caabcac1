// Package controls maps key presses to resolution, scene and display actions.
package controls

import (
	"log"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
)

// PolicyTarget is the part of the resolution controller the keys drive.
type PolicyTarget interface {
	SetBudget(b resolution.Budget)
	ToggleTrackDPR() bool
}

// Rotator toggles the scene's automatic rotation.
type Rotator interface {
	Autorotate() bool
	SetAutorotate(enabled bool)
}

// Toggle shows or hides a display.
type Toggle interface {
	Visible() bool
	SetVisible(visible bool) error
}

// Closer stops the application.
type Closer interface {
	RequestClose()
}

// Bindings dispatches key codes to actions. Nil targets leave their keys unbound.
type Bindings struct {
	policy  PolicyTarget
	rotator Rotator
	hud     Toggle
	closer  Closer

	// presetKeys maps a key to the budget it selects.
	presetKeys map[uint32]resolution.Budget
}

// New creates the key bindings. Keys 1 to 5 select the first five presets and 0 removes the
// cap; P toggles DPR tracking.
//
// Parameters:
//   - policy: the resolution controller
//   - options: functional options binding the remaining keys
//
// Returns:
//   - *Bindings: the bindings, ready for HandleKey
func New(policy PolicyTarget, options ...BindingsOption) *Bindings {
	b := &Bindings{
		policy:     policy,
		presetKeys: make(map[uint32]resolution.Budget),
	}
	keys := []uint32{common.Key1, common.Key2, common.Key3, common.Key4, common.Key5}
	for i, p := range resolution.Presets {
		if p.IsUnbounded() || i >= len(keys) {
			continue
		}
		b.presetKeys[keys[i]] = p
	}
	b.presetKeys[common.Key0] = resolution.Unbounded

	for _, opt := range options {
		opt(b)
	}
	return b
}

// HandleKey runs the action bound to keyCode. Must be called on the UI thread.
//
// Parameters:
//   - keyCode: the key that was pressed
//
// Returns:
//   - bool: true if the key was bound
func (b *Bindings) HandleKey(keyCode uint32) bool {
	if budget, ok := b.presetKeys[keyCode]; ok && b.policy != nil {
		log.Printf("[Controls] max pixels set to %s", budget)
		b.policy.SetBudget(budget)
		return true
	}

	switch keyCode {
	case common.KeyP:
		if b.policy == nil {
			return false
		}
		log.Printf("[Controls] track dpr %v", b.policy.ToggleTrackDPR())
	case common.KeyR:
		if b.rotator == nil {
			return false
		}
		b.rotator.SetAutorotate(!b.rotator.Autorotate())
	case common.KeyH:
		if b.hud == nil {
			return false
		}
		if err := b.hud.SetVisible(!b.hud.Visible()); err != nil {
			log.Printf("[Controls] failed to toggle hud: %v", err)
		}
	case common.KeyEsc:
		if b.closer == nil {
			return false
		}
		b.closer.RequestClose()
	default:
		return false
	}
	return true
}

// Help lists the bound keys for the startup banner.
func (b *Bindings) Help() []string {
	lines := []string{"1-5 = 0.5/1/2/4/8 MP cap   0 = no cap   P = track DPR"}
	if b.rotator != nil {
		lines = append(lines, "R = autorotate")
	}
	if b.hud != nil {
		lines = append(lines, "H = toggle HUD")
	}
	if b.closer != nil {
		lines = append(lines, "Esc = quit")
	}
	return lines
}
