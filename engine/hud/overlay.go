package hud

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout"
	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Panel metrics in layout units; multiplied by the overlay scale when drawn.
const (
	panelPadding   = 12.0
	panelWidth     = 320.0
	panelRadius    = 8.0
	fontSize       = 14.0
	lineHeight     = 20.0
	barGap         = 10.0
	barHeight      = 14.0
	markerTick     = 4.0
	markerFontSize = 10.0
)

// OverlayTarget receives the finished panel image.
type OverlayTarget interface {
	SetOverlay(img *image.RGBA)
}

// FPSSource reports the measured frame rate.
type FPSSource interface {
	FPS() float64
}

// Overlay is a readout display drawn over the rendered scene. It implements readout.Display,
// readout.BarDisplay and readout.Flusher.
type Overlay interface {
	readout.Display
	readout.BarDisplay
	readout.Flusher

	// SetVisible shows or hides the panel.
	//
	// Parameters:
	//   - visible: true to draw the panel
	//
	// Returns:
	//   - error: error if redrawing fails
	SetVisible(visible bool) error

	// Visible reports whether the panel is shown.
	Visible() bool

	// SetScale sets the layout-to-pixel factor, normally the device pixel ratio.
	//
	// Parameters:
	//   - scale: pixels per layout unit; values <= 0 are ignored
	//
	// Returns:
	//   - error: error if redrawing fails
	SetScale(scale float64) error

	// Tick redraws the panel when the rounded frame rate has changed since the last draw.
	// Call once per frame.
	//
	// Returns:
	//   - error: error if redrawing fails
	Tick() error
}

// overlay is the implementation of the Overlay interface.
type overlay struct {
	target OverlayTarget
	fps    FPSSource

	fields fieldSet
	bar    *progressbar.Snapshot

	scale    float64
	visible  bool
	shownFPS int
	dirty    bool
}

var _ Overlay = &overlay{}

// NewOverlay creates an overlay display that hands its image to target.
//
// Parameters:
//   - target: where finished images go, usually the renderer
//   - options: functional options to configure the overlay
//
// Returns:
//   - Overlay: the overlay display
func NewOverlay(target OverlayTarget, options ...OverlayOption) Overlay {
	o := &overlay{
		target:  target,
		fields:  newFieldSet(readout.AllFields...),
		scale:   1,
		visible: true,
		dirty:   true,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *overlay) HasField(f readout.Field) bool {
	return o.fields.has(f)
}

func (o *overlay) SetField(f readout.Field, value string) {
	if o.fields.set(f, value) {
		o.dirty = true
	}
}

func (o *overlay) SetBar(snapshot progressbar.Snapshot) {
	o.bar = &snapshot
	o.dirty = true
}

func (o *overlay) Flush() error {
	if !o.dirty {
		return nil
	}
	return o.redraw()
}

func (o *overlay) SetVisible(visible bool) error {
	if o.visible == visible {
		return nil
	}
	o.visible = visible
	return o.redraw()
}

func (o *overlay) Visible() bool {
	return o.visible
}

func (o *overlay) SetScale(scale float64) error {
	if scale <= 0 || scale == o.scale {
		return nil
	}
	o.scale = scale
	return o.redraw()
}

func (o *overlay) Tick() error {
	if o.fps == nil || !o.visible {
		return nil
	}
	if int(math.Round(o.fps.FPS())) == o.shownFPS {
		return nil
	}
	return o.redraw()
}

func (o *overlay) redraw() error {
	o.dirty = false
	if !o.visible {
		o.target.SetOverlay(nil)
		return nil
	}
	img, err := o.draw()
	if err != nil {
		return fmt.Errorf("failed to draw overlay: %w", err)
	}
	o.target.SetOverlay(img)
	return nil
}

func (o *overlay) draw() (*image.RGBA, error) {
	src, err := fontSource()
	if err != nil {
		return nil, err
	}

	s := o.scale
	rows := o.fields.lines()
	if o.fps != nil {
		o.shownFPS = int(math.Round(o.fps.FPS()))
		rows = append(rows, fmt.Sprintf("FPS: %d", o.shownFPS))
	}

	h := 2*panelPadding + float64(len(rows))*lineHeight
	if o.bar != nil {
		h += barGap + barHeight + markerTick + 2*markerFontSize + lineHeight
	}
	w := 2*panelPadding + panelWidth

	dc := gg.NewContext(int(math.Ceil(w*s)), int(math.Ceil(h*s)))
	defer dc.Close()

	dc.Clear()
	dc.SetRGBA(8.0/255, 8.0/255, 8.0/255, 0.9)
	dc.DrawRoundedRectangle(0, 0, w*s, h*s, panelRadius*s)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	dc.SetFont(src.Face(fontSize * s))
	dc.SetRGB(1, 1, 1)
	y := panelPadding
	for _, row := range rows {
		dc.DrawString(row, panelPadding*s, (y+fontSize)*s)
		y += lineHeight
	}

	if o.bar != nil {
		if err := o.drawBar(dc, src, panelPadding, y+barGap); err != nil {
			return nil, err
		}
	}

	img := dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// drawBar draws the track, the gradient fill, the value indicator and the fixed markers with
// the bar's top-left corner at (x, y) in layout units.
func (o *overlay) drawBar(dc *gg.Context, src *text.FontSource, x, y float64) error {
	s := o.scale
	snap := o.bar
	bx, by, bw, bh := x*s, y*s, panelWidth*s, barHeight*s

	dc.SetRGBA(1, 1, 1, 0.15)
	dc.DrawRoundedRectangle(bx, by, bw, bh, bh/2)
	if err := dc.Fill(); err != nil {
		return err
	}

	if fill := bw * snap.Fraction; fill > 0 {
		dc.SetFillBrush(gg.HorizontalGradient(gg.Hex(progressbar.GradientStart), gg.Hex(progressbar.GradientEnd), bx, bx+bw))
		dc.DrawRoundedRectangle(bx, by, fill, bh, min(bh/2, fill/2))
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	dc.SetFont(src.Face(markerFontSize * s))
	for _, m := range snap.Markers {
		mx := bx + bw*m.Percent/100
		dc.SetHexColor(m.Color)
		dc.SetLineWidth(max(1, s))
		dc.DrawLine(mx, by-markerTick*s, mx, by+bh+markerTick*s)
		if err := dc.Stroke(); err != nil {
			return err
		}
		ly := by + bh + markerTick*s
		for i, part := range strings.Split(m.Label(), "\n") {
			dc.DrawStringAnchored(part, mx, ly+float64(i)*markerFontSize*s, 0.5, 1)
		}
	}

	ix := bx + bw*snap.IndicatorPercent()/100
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(max(2, 2*s))
	dc.DrawLine(ix, by-markerTick*s, ix, by+bh+markerTick*s)
	if err := dc.Stroke(); err != nil {
		return err
	}

	dc.SetFont(src.Face(fontSize * s))
	footY := by + bh + (markerTick+2*markerFontSize)*s
	dc.DrawStringAnchored(snap.MinLabel, bx, footY, 0, 1)
	dc.DrawStringAnchored(snap.ValueLabel, ix, footY, 0.5, 1)
	dc.DrawStringAnchored(snap.MaxLabel, bx+bw, footY, 1, 1)
	return nil
}
