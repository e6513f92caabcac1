package window

import (
	"math"
	"sync"
)

// scaleEpsilon absorbs float noise in platform-reported content scales.
const scaleEpsilon = 1e-4

type resolutionListener struct {
	id      uint64
	dppx    float64
	matched bool
	fn      func()
}

// resolutionListeners implements point-value resolution matching: each registration fires
// when "scale == dppx" changes truth value.
type resolutionListeners struct {
	scale   float64
	nextID  uint64
	entries []*resolutionListener
}

func newResolutionListeners(scale float64) *resolutionListeners {
	return &resolutionListeners{scale: scale}
}

func matches(scale, dppx float64) bool {
	return math.Abs(scale-dppx) < scaleEpsilon
}

func (l *resolutionListeners) add(dppx float64, fn func()) func() {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, &resolutionListener{
		id:      id,
		dppx:    dppx,
		matched: matches(l.scale, dppx),
		fn:      fn,
	})

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *resolutionListeners) remove(id uint64) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *resolutionListeners) len() int {
	return len(l.entries)
}

// update records the new scale, then calls every flipped listener. Callbacks may add or
// remove registrations.
func (l *resolutionListeners) update(scale float64) {
	l.scale = scale

	var fire []func()
	for _, e := range l.entries {
		m := matches(scale, e.dppx)
		if m == e.matched {
			continue
		}
		e.matched = m
		if e.fn != nil {
			fire = append(fire, e.fn)
		}
	}
	for _, fn := range fire {
		fn()
	}
}

// taskQueue holds closures posted from other goroutines until the window thread drains them.
type taskQueue struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *taskQueue) push(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

func (q *taskQueue) drain() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}
