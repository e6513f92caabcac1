package profiler

import (
	"testing"
	"time"
)

func TestProfiler_FPS(t *testing.T) {
	tests := []struct {
		name    string
		frames  int
		elapsed time.Duration
		want    float64
	}{
		{"sixty frames in a second", 60, time.Second, 60},
		{"thirty frames in two seconds", 30, 2 * time.Second, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Unix(0, 0)
			clock := start
			p := NewProfiler()
			p.SetLogging(false)
			p.now = func() time.Time { return clock }
			p.lastTime = start

			for i := 1; i < tt.frames; i++ {
				if p.Tick() {
					t.Fatalf("interval completed early at frame %d", i)
				}
			}
			if got := p.FPS(); got != 0 {
				t.Errorf("FPS() before first interval = %v, want 0", got)
			}

			clock = start.Add(tt.elapsed)
			if !p.Tick() {
				t.Fatal("Tick() = false after the interval elapsed")
			}
			if got := p.FPS(); got != tt.want {
				t.Errorf("FPS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfiler_IntervalResets(t *testing.T) {
	start := time.Unix(0, 0)
	clock := start
	p := NewProfiler()
	p.SetLogging(false)
	p.now = func() time.Time { return clock }
	p.lastTime = start

	clock = start.Add(time.Second)
	p.Tick()
	clock = clock.Add(500 * time.Millisecond)
	if p.Tick() {
		t.Error("second interval completed after half the update interval")
	}
	if got := p.FPS(); got != 1 {
		t.Errorf("FPS() = %v, want the last completed value 1", got)
	}
}
