package resolution

import (
	"errors"
	"fmt"
	"log"
)

// ErrResolutionUnsupported is returned by a ResolutionSource that cannot report resolution changes.
var ErrResolutionUnsupported = errors.New("resolution: change notifications unsupported")

// ResolutionSource reports device pixel ratio changes with point-value semantics: a subscription
// made for dppx fires when the "resolution equals dppx" predicate changes, i.e. once per threshold
// crossing. A subscription stays registered until cancelled.
type ResolutionSource interface {
	// DevicePixelRatio returns the current ratio of physical to layout pixels.
	DevicePixelRatio() float64

	// MatchResolution subscribes onChange to crossings of the given resolution.
	//
	// Parameters:
	//   - dppx: the resolution to watch, in device pixels per layout pixel
	//   - onChange: called on the UI thread when the predicate flips
	//
	// Returns:
	//   - cancel: removes the subscription; safe to call more than once
	//   - error: ErrResolutionUnsupported if the source cannot notify
	MatchResolution(dppx float64, onChange func()) (cancel func(), err error)
}

// DPRWatcher keeps exactly one live subscription on a ResolutionSource. Every time it fires, the
// previous subscription is cancelled, the handler runs, and a new subscription is made at the new
// DPR. Dispose cancels the live subscription for good.
type DPRWatcher struct {
	source  ResolutionSource
	handler func()

	cancel     func()
	generation uint64
	armedAt    float64

	disposed bool
	degraded bool
}

// NewDPRWatcher creates a disarmed watcher. Call Rearm to make the first subscription.
//
// Parameters:
//   - source: the resolution source to subscribe to
//   - handler: called on every DPR change, between unsubscribe and resubscribe
//
// Returns:
//   - *DPRWatcher: the watcher
func NewDPRWatcher(source ResolutionSource, handler func()) *DPRWatcher {
	return &DPRWatcher{
		source:  source,
		handler: handler,
	}
}

// Rearm cancels the live subscription, if any, and subscribes at the source's current DPR.
// If the source does not support notifications the watcher logs once and stays disarmed.
//
// Returns:
//   - error: a subscription failure other than ErrResolutionUnsupported
func (w *DPRWatcher) Rearm() error {
	if w.disposed {
		return nil
	}
	w.release()

	dpr := w.source.DevicePixelRatio()
	w.generation++
	gen := w.generation

	cancel, err := w.source.MatchResolution(dpr, func() { w.fire(gen) })
	if err != nil {
		if errors.Is(err, ErrResolutionUnsupported) {
			if !w.degraded {
				log.Printf("[DPR] resolution change notifications unavailable, DPR follows resizes only")
			}
			w.degraded = true
			return nil
		}
		return fmt.Errorf("subscribe to resolution %.2fdppx: %w", dpr, err)
	}

	w.cancel = cancel
	w.armedAt = dpr
	return nil
}

// Dispose cancels the live subscription. Later firings and Rearm calls are ignored.
func (w *DPRWatcher) Dispose() {
	w.release()
	w.disposed = true
}

// Active reports whether a subscription is currently live.
func (w *DPRWatcher) Active() bool {
	return w.cancel != nil
}

// ArmedAt returns the DPR the live subscription watches. Only meaningful when Active.
func (w *DPRWatcher) ArmedAt() float64 {
	return w.armedAt
}

// Degraded reports whether the source rejected subscriptions as unsupported.
func (w *DPRWatcher) Degraded() bool {
	return w.degraded
}

// fire handles a notification from the subscription made at generation gen.
func (w *DPRWatcher) fire(gen uint64) {
	if w.disposed || gen != w.generation || w.cancel == nil {
		return
	}
	log.Printf("[DPR] dpr changed to %.2f", w.source.DevicePixelRatio())

	w.release()
	if w.handler != nil {
		w.handler()
	}
	if err := w.Rearm(); err != nil {
		log.Printf("[DPR] %v", err)
	}
}

func (w *DPRWatcher) release() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
