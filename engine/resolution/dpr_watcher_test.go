package resolution

import (
	"errors"
	"testing"
)

type fakeSubscription struct {
	dppx    float64
	matched bool
	fn      func()
}

// fakeSource mimics a point-value resolution media query.
type fakeSource struct {
	dpr         float64
	subs        map[int]*fakeSubscription
	next        int
	unsupported bool
	failWith    error
}

func newFakeSource(dpr float64) *fakeSource {
	return &fakeSource{dpr: dpr, subs: make(map[int]*fakeSubscription)}
}

func (s *fakeSource) DevicePixelRatio() float64 { return s.dpr }

func (s *fakeSource) MatchResolution(dppx float64, fn func()) (func(), error) {
	if s.unsupported {
		return nil, ErrResolutionUnsupported
	}
	if s.failWith != nil {
		return nil, s.failWith
	}
	id := s.next
	s.next++
	s.subs[id] = &fakeSubscription{dppx: dppx, matched: dppx == s.dpr, fn: fn}
	return func() { delete(s.subs, id) }, nil
}

func (s *fakeSource) set(dpr float64) {
	s.dpr = dpr
	var fire []func()
	for _, sub := range s.subs {
		if m := sub.dppx == dpr; m != sub.matched {
			sub.matched = m
			fire = append(fire, sub.fn)
		}
	}
	for _, fn := range fire {
		fn()
	}
}

func TestDPRWatcher_RearmsAfterEveryChange(t *testing.T) {
	src := newFakeSource(1)
	calls := 0
	w := NewDPRWatcher(src, func() { calls++ })
	if err := w.Rearm(); err != nil {
		t.Fatalf("Rearm() = %v", err)
	}

	for i, dpr := range []float64{2, 1.5, 1, 3} {
		src.set(dpr)
		if calls != i+1 {
			t.Errorf("after change to %v: handler calls = %d, want %d", dpr, calls, i+1)
		}
		if len(src.subs) != 1 {
			t.Errorf("after change to %v: live subscriptions = %d, want 1", dpr, len(src.subs))
		}
		if w.ArmedAt() != dpr {
			t.Errorf("ArmedAt() = %v, want %v", w.ArmedAt(), dpr)
		}
	}
}

func TestDPRWatcher_RepeatedRearmKeepsOneSubscription(t *testing.T) {
	src := newFakeSource(1)
	w := NewDPRWatcher(src, nil)
	for range 5 {
		if err := w.Rearm(); err != nil {
			t.Fatalf("Rearm() = %v", err)
		}
	}
	if len(src.subs) != 1 {
		t.Errorf("live subscriptions = %d, want 1", len(src.subs))
	}
}

func TestDPRWatcher_HandlerRunsBetweenUnsubscribeAndResubscribe(t *testing.T) {
	src := newFakeSource(1)
	var liveDuringHandler int
	w := NewDPRWatcher(src, func() { liveDuringHandler = len(src.subs) })
	_ = w.Rearm()

	src.set(2)
	if liveDuringHandler != 0 {
		t.Errorf("subscriptions live during handler = %d, want 0", liveDuringHandler)
	}
	if !w.Active() {
		t.Error("watcher not re-armed after handler")
	}
}

func TestDPRWatcher_DisposeStopsNotifications(t *testing.T) {
	src := newFakeSource(1)
	calls := 0
	w := NewDPRWatcher(src, func() { calls++ })
	_ = w.Rearm()

	w.Dispose()
	if len(src.subs) != 0 || w.Active() {
		t.Fatalf("after Dispose: subscriptions = %d, active = %v", len(src.subs), w.Active())
	}
	src.set(2)
	_ = w.Rearm()
	if calls != 0 || len(src.subs) != 0 {
		t.Errorf("disposed watcher reacted: calls = %d, subscriptions = %d", calls, len(src.subs))
	}
}

func TestDPRWatcher_StaleFiringIgnored(t *testing.T) {
	src := newFakeSource(1)
	calls := 0
	w := NewDPRWatcher(src, func() { calls++ })
	_ = w.Rearm()

	stale := src.subs[0].fn
	_ = w.Rearm()
	stale()
	if calls != 0 {
		t.Errorf("stale subscription triggered handler %d times", calls)
	}
}

func TestDPRWatcher_UnsupportedDegrades(t *testing.T) {
	src := newFakeSource(1)
	src.unsupported = true
	w := NewDPRWatcher(src, nil)
	if err := w.Rearm(); err != nil {
		t.Fatalf("Rearm() = %v, want nil when unsupported", err)
	}
	if w.Active() || !w.Degraded() {
		t.Errorf("Active() = %v, Degraded() = %v; want false, true", w.Active(), w.Degraded())
	}
}

func TestDPRWatcher_SubscribeErrorReturned(t *testing.T) {
	src := newFakeSource(1)
	boom := errors.New("boom")
	src.failWith = boom
	w := NewDPRWatcher(src, nil)
	if err := w.Rearm(); !errors.Is(err, boom) {
		t.Errorf("Rearm() = %v, want wrapped %v", err, boom)
	}
}
