package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
//
// All methods except Post must be called from the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Runs posted tasks and the update callback each iteration.
	ProcessMessages()

	// Post queues fn to run on the window thread during the next message loop iteration.
	// Safe to call from any goroutine.
	//
	// Parameters:
	//   - fn: the task to run
	Post(fn func())

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// ClientSize returns the client area in layout units: framebuffer pixels divided by the
	// content scale.
	//
	// Returns:
	//   - float64: layout width
	//   - float64: layout height
	ClientSize() (width, height float64)

	// DevicePixelRatio returns the window's current content scale.
	//
	// Returns:
	//   - float64: physical pixels per layout unit
	DevicePixelRatio() float64

	// MatchResolution registers onChange to run whenever the predicate "content scale equals
	// dppx" changes truth value. The registration stays live until cancel is called.
	//
	// Parameters:
	//   - dppx: the resolution to match
	//   - onChange: called on the window thread when the match flips
	//
	// Returns:
	//   - func(): releases the registration; safe to call more than once
	//   - error: always nil for GLFW windows
	MatchResolution(dppx float64, onChange func()) (cancel func(), err error)
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth and minHeight bound resizing.
	minWidth, minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// scale is the current content scale.
	scale float64

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// scaleListeners are the live MatchResolution registrations.
	scaleListeners *resolutionListeners

	// tasks holds work posted from other goroutines.
	tasks *taskQueue

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window, shown and ready for a surface
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:          "oxy-dpr",
		minWidth:       320,
		minHeight:      200,
		width:          1280,
		height:         720,
		scale:          1,
		scaleListeners: newResolutionListeners(1),
		tasks:          &taskQueue{},
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		w.tasks.drain()

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Post(fn func()) {
	if fn == nil {
		return
	}
	w.tasks.push(fn)
	platformWake()
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) ClientSize() (float64, float64) {
	return clientSize(w.width, w.height, w.scale)
}

func (w *engineWindow) DevicePixelRatio() float64 {
	return w.scale
}

func (w *engineWindow) MatchResolution(dppx float64, onChange func()) (func(), error) {
	return w.scaleListeners.add(dppx, onChange), nil
}

// setContentScale records a new content scale and fires the registrations whose match flipped.
func (w *engineWindow) setContentScale(scale float64) {
	if scale <= 0 {
		return
	}
	w.scale = scale
	w.scaleListeners.update(scale)
}

// clientSize converts framebuffer pixels to layout units.
func clientSize(fbWidth, fbHeight int, scale float64) (float64, float64) {
	if scale <= 0 {
		scale = 1
	}
	return float64(fbWidth) / scale, float64(fbHeight) / scale
}
