package config

import (
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, c Config)
		wantErr error
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, c Config) {
				if c != Default() {
					t.Errorf("got %+v, want defaults", c)
				}
			},
		},
		{
			name: "partial section merges",
			yaml: "window:\n  title: demo\nresolution:\n  budget: 2\n  track_dpr: false\n",
			check: func(t *testing.T, c Config) {
				if c.Window.Title != "demo" || c.Window.Width != 1280 {
					t.Errorf("window = %+v", c.Window)
				}
				if c.Budget() != resolution.Megapixels(2) || c.Policy().TrackDPRChanges {
					t.Errorf("policy = %+v", c.Policy())
				}
			},
		},
		{
			name: "infinity budget",
			yaml: "resolution:\n  budget: Infinity\n",
			check: func(t *testing.T, c Config) {
				if !c.Budget().IsUnbounded() {
					t.Errorf("Budget() = %v, want unbounded", c.Budget())
				}
			},
		},
		{
			name: "uncapped present mode",
			yaml: "window:\n  present_mode: Uncapped\n",
			check: func(t *testing.T, c Config) {
				if !c.Uncapped() {
					t.Error("Uncapped() = false")
				}
			},
		},
		{name: "zero budget", yaml: "resolution:\n  budget: 0\n", wantErr: ErrInvalidConfig},
		{name: "bad present mode", yaml: "window:\n  present_mode: fifo\n", wantErr: ErrInvalidConfig},
		{name: "bad size", yaml: "window:\n  width: 0\n", wantErr: ErrInvalidConfig},
		{name: "bad bar max", yaml: "display:\n  bar_max_mp: -1\n", wantErr: ErrInvalidConfig},
		{name: "bad frame limit", yaml: "window:\n  frame_limit: -30\n", wantErr: ErrInvalidConfig},
		{name: "bad minimum size", yaml: "window:\n  min_width: -1\n", wantErr: ErrInvalidConfig},
		{
			name: "frame limit and software adapter",
			yaml: "window:\n  frame_limit: 30\n  software: true\n",
			check: func(t *testing.T, c Config) {
				if c.Window.FrameLimit != 30 || !c.Window.Software || c.Window.MinWidth != 320 {
					t.Errorf("window = %+v", c.Window)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestParse_BudgetErrorWrapsResolution(t *testing.T) {
	_, err := Parse([]byte("resolution:\n  budget: lots\n"))
	if !errors.Is(err, resolution.ErrInvalidBudget) {
		t.Errorf("Parse() error = %v, want it to wrap resolution.ErrInvalidBudget", err)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("window: [")); err == nil {
		t.Error("Parse() of malformed YAML should fail")
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	if err != nil || c != Default() {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", c, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() of a missing file error = %v, want os.ErrNotExist", err)
	}
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("scene:\n  autorotate: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = Load(path)
	if err != nil || c.Scene.Autorotate {
		t.Errorf("Load() = %+v, %v", c.Scene, err)
	}
}

func TestFlags_Apply(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, c Config)
		wantErr bool
	}{
		{
			name: "unset flags leave file values",
			args: nil,
			check: func(t *testing.T, c Config) {
				if c.Resolution.Budget != "3" || c.Display.HUD {
					t.Errorf("got %+v", c)
				}
			},
		},
		{
			name: "explicit flags override",
			args: []string{"-budget", "inf", "-hud", "-uncapped", "-width", "640"},
			check: func(t *testing.T, c Config) {
				if !math.IsInf(c.Budget().Megapixels(), 1) || !c.Display.HUD || !c.Uncapped() || c.Window.Width != 640 {
					t.Errorf("got %+v", c)
				}
			},
		},
		{
			name: "renderer flags",
			args: []string{"-software", "-frame-limit", "75"},
			check: func(t *testing.T, c Config) {
				if !c.Window.Software || c.Window.FrameLimit != 75 {
					t.Errorf("window = %+v", c.Window)
				}
			},
		},
		{
			name:    "invalid override",
			args:    []string{"-budget", "-2"},
			wantErr: true,
		},
		{
			name:    "invalid frame limit",
			args:    []string{"-frame-limit", "-1"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			f := NewFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			base := Default()
			base.Resolution.Budget = "3"
			base.Display.HUD = false
			c, err := f.Apply(base)
			if tt.wantErr {
				if err == nil {
					t.Error("Apply() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int32
	for i := range 5 {
		d.trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 1 || last.Load() != 4 {
		t.Errorf("calls = %d, last = %d; want one call of the final trigger", calls.Load(), last.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.trigger(func() { calls.Add(1) })
	d.cancel()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("cancelled callback ran")
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.yaml")
	if err := os.WriteFile(path, []byte("resolution:\n  budget: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan Config, 4)
	w, err := NewWatcher(path, 10*time.Millisecond, func(fn func()) { fn() }, func(c Config) { got <- c })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	// an invalid edit is logged and skipped
	if err := os.WriteFile(path, []byte("resolution:\n  budget: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("resolution:\n  budget: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// a reload may observe the truncated file first; wait for the final contents
	timeout := time.After(3 * time.Second)
	for done := false; !done; {
		select {
		case c := <-got:
			done = c.Budget() == resolution.Megapixels(4)
		case <-timeout:
			t.Fatal("no reload with the final contents after the file changed")
		}
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestWatcher_ReloadKeepsFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.yaml")
	if err := os.WriteFile(path, []byte("resolution:\n  budget: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("oxydpr", flag.ContinueOnError)
	flags := NewFlags(fs)
	if err := fs.Parse([]string{"-budget", "2", "-track-dpr=false"}); err != nil {
		t.Fatal(err)
	}

	got := make(chan Config, 4)
	w, err := NewWatcher(path, 10*time.Millisecond, func(fn func()) { fn() }, func(c Config) { got <- c },
		WithOverrides(flags))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	// the edit touches neither budget nor track_dpr
	if err := os.WriteFile(path, []byte("resolution:\n  budget: 1\nscene:\n  autorotate: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(3 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Scene.Autorotate {
				continue
			}
			if b := c.Budget(); b != resolution.Megapixels(2) {
				t.Errorf("budget after reload = %v, want the -budget value 2", b)
			}
			if c.Resolution.TrackDPR {
				t.Error("track_dpr after reload = true, want the -track-dpr=false value")
			}
			return
		case <-timeout:
			t.Fatal("no reload with the edited file")
		}
	}
}

func TestWatcher_CloseWaitsForReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.yaml")
	if err := os.WriteFile(path, []byte("profiling: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var posts atomic.Int32
	post := func(fn func()) {
		if posts.Add(1) == 1 {
			close(entered)
			<-release
		}
	}
	w, err := NewWatcher(path, time.Hour, post, func(Config) {})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	go w.reload()
	<-entered

	closed := make(chan struct{})
	go func() {
		w.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close() returned while a reload was still posting")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("Close() did not return after the reload finished")
	}

	w.reload()
	if n := posts.Load(); n != 1 {
		t.Errorf("post calls = %d, want none after Close", n-1)
	}
}
