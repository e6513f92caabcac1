package hud

import (
	"io"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout"
)

// OverlayOption is a functional option for configuring an Overlay via NewOverlay.
type OverlayOption func(*overlay)

// WithFPS adds a frame rate row fed by src.
//
// Parameters:
//   - src: the frame rate source, usually the engine profiler
//
// Returns:
//   - OverlayOption: a function that applies the FPS option to an overlay
func WithFPS(src FPSSource) OverlayOption {
	return func(o *overlay) {
		o.fps = src
	}
}

// WithScale sets the initial layout-to-pixel factor.
func WithScale(scale float64) OverlayOption {
	return func(o *overlay) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithOverlayFields restricts the overlay to the given slots, in display order.
func WithOverlayFields(fields ...readout.Field) OverlayOption {
	return func(o *overlay) {
		o.fields = newFieldSet(fields...)
	}
}

// WithHidden starts the overlay hidden.
func WithHidden() OverlayOption {
	return func(o *overlay) {
		o.visible = false
	}
}

// ConsoleOption is a functional option for configuring a Console via NewConsole.
type ConsoleOption func(*console)

// WithBarWidth sets the console bar width in cells.
//
// Parameters:
//   - width: the bar width (minimum 10)
//
// Returns:
//   - ConsoleOption: a function that applies the width option to a console
func WithBarWidth(width int) ConsoleOption {
	return func(c *console) {
		c.barWidth = max(width, 10)
	}
}

// WithConsoleWriter sets where the panel is written. Defaults to os.Stdout.
func WithConsoleWriter(w io.Writer) ConsoleOption {
	return func(c *console) {
		c.out = w
	}
}
