package engine

import (
	"errors"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-dpr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dpr/engine/scene"
	"github.com/Carmen-Shannon/oxy-dpr/engine/window"
)

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	resizeListener func(width, height int)

	scenes map[int]scene.Scene

	renderFrameLimit atomic.Int64 // minimum frame duration in nanoseconds; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output. Frame rate is still measured.
	DisableProfiler()

	// Profiler returns the engine's frame profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler ticked once per rendered frame
	Profiler() *profiler.Profiler

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default). Safe to call while the engine runs.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the main engine loop (blocks until window closes).
	Run()

	// Quit signals all engine goroutines to stop and waits for them to return, so GPU resources
	// can be released afterwards. Must not be called from a tick or render callback.
	// Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes the quit channel and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, frame limit, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler.SetLogging(e.profilingEnabled)

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			for _, s := range e.scenes {
				if r := s.Renderer(); r != nil {
					r.Resize(width, height)
				}
			}
			if e.resizeListener != nil {
				e.resizeListener(width, height)
			}
		})
	}

	return e
}

func (e *engine) Run() {
	e.handle()
	e.window.ProcessMessages()
}

// Quit signals all engine goroutines to stop and waits for them.
// Safe to call multiple times; the quit channel is closed once via sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	e.wg.Wait()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the fixed tick rate. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Iterates active scenes in ascending z-index order: uniforms are written first, then draw
// calls encoded.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			frameStart := time.Now()

			// Draw all active scenes in ascending z-index order.
			// The engine owns the frame lifecycle: BeginFrame once, Render each scene, EndFrame + Present once.
			// All scenes sharing the same renderer are rendered within a single render pass, enabling layered compositing.
			keys := make([]int, 0, len(e.scenes))
			for k := range e.scenes {
				keys = append(keys, k)
			}
			sort.Ints(keys)

			// Collect active scenes and find the renderer for the frame
			var activeScenes []scene.Scene
			for _, k := range keys {
				s := e.scenes[k]
				if s.Active() {
					activeScenes = append(activeScenes, s)
				}
			}

			if len(activeScenes) > 0 {
				// Use the first active scene's renderer to manage the frame
				frameRenderer := activeScenes[0].Renderer()
				if frameRenderer != nil {
					for _, s := range activeScenes {
						s.Prepare()
					}

					// All scenes sharing the renderer draw into one scene pass.
					if err := frameRenderer.BeginFrame(); err == nil {
						for _, s := range activeScenes {
							if err := s.DrawCalls(); err != nil {
								log.Printf("[Engine] %v", err)
							}
						}
						frameRenderer.EndFrame()
						frameRenderer.Present()
					} else if !errors.Is(err, renderer.ErrSurfaceUnavailable) {
						log.Printf("[Engine] begin frame: %v", err)
					}
				}
			}

			if e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if limit := e.frameLimit(); limit > 0 {
				if remaining := limit - time.Since(frameStart); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	e.profiler.SetLogging(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.profiler.SetLogging(false)
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameDuration(fps)))
}

func (e *engine) frameLimit() time.Duration {
	return time.Duration(e.renderFrameLimit.Load())
}

// frameDuration converts a frame rate into the minimum time per frame. fps <= 0 means no limit.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
