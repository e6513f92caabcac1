package config

import (
	"sync"
	"time"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// debouncer coalesces rapid triggers into one call of the most recent callback.
type debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	seq      uint64
}

func newDebouncer(d time.Duration) *debouncer {
	if d <= 0 {
		d = DefaultDebounce
	}
	return &debouncer{duration: d}
}

// trigger schedules fn after the debounce duration, replacing any pending call.
func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		// a timer that fired while being replaced must not run
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// cancel drops any pending call.
func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
