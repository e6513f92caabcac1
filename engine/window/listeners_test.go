package window

import (
	"sync"
	"testing"
)

func TestResolutionListeners_FiresOnFlip(t *testing.T) {
	l := newResolutionListeners(1)
	calls := 0
	l.add(1, func() { calls++ })

	l.update(1)
	if calls != 0 {
		t.Fatalf("calls after unchanged scale = %d, want 0", calls)
	}
	l.update(2)
	if calls != 1 {
		t.Fatalf("calls after leaving 1dppx = %d, want 1", calls)
	}
	l.update(1.5)
	if calls != 1 {
		t.Errorf("calls while still not matching = %d, want 1", calls)
	}
	l.update(1)
	if calls != 2 {
		t.Errorf("calls after returning to 1dppx = %d, want 2", calls)
	}
}

func TestResolutionListeners_CancelRemovesOnce(t *testing.T) {
	l := newResolutionListeners(1)
	cancelA := l.add(1, func() {})
	l.add(1, func() {})

	cancelA()
	cancelA()
	if l.len() != 1 {
		t.Errorf("len() = %d, want 1", l.len())
	}
}

func TestResolutionListeners_CallbackMayResubscribe(t *testing.T) {
	l := newResolutionListeners(1)
	var cancel func()
	var handler func()
	fired := 0
	handler = func() {
		fired++
		cancel()
		cancel = l.add(l.scale, handler)
	}
	cancel = l.add(1, handler)

	l.update(2)
	l.update(1.25)
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
	if l.len() != 1 {
		t.Errorf("live registrations = %d, want 1", l.len())
	}
}

func TestResolutionListeners_ToleratesFloatNoise(t *testing.T) {
	l := newResolutionListeners(1.25)
	calls := 0
	l.add(1.25, func() { calls++ })
	l.update(1.2500001)
	if calls != 0 {
		t.Errorf("calls = %d, want 0 for sub-epsilon change", calls)
	}
}

func TestTaskQueue_DrainRunsInOrder(t *testing.T) {
	q := &taskQueue{}
	var got []int
	for i := range 3 {
		q.push(func() { got = append(got, i) })
	}
	if n := q.drain(); n != 3 {
		t.Fatalf("drain() = %d, want 3", n)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("task %d ran as %d", i, v)
		}
	}
	if n := q.drain(); n != 0 {
		t.Errorf("second drain() = %d, want 0", n)
	}
}

func TestTaskQueue_ConcurrentPush(t *testing.T) {
	q := &taskQueue{}
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.push(func() {})
		}()
	}
	wg.Wait()
	if n := q.drain(); n != 50 {
		t.Errorf("drain() = %d, want 50", n)
	}
}

func TestClientSize(t *testing.T) {
	tests := []struct {
		name         string
		fbW, fbH     int
		scale        float64
		wantW, wantH float64
	}{
		{"unit scale", 1280, 720, 1, 1280, 720},
		{"retina", 2560, 1440, 2, 1280, 720},
		{"fractional", 1920, 1080, 1.5, 1280, 720},
		{"invalid scale", 800, 600, 0, 800, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := clientSize(tt.fbW, tt.fbH, tt.scale)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("clientSize() = %v x %v, want %v x %v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
