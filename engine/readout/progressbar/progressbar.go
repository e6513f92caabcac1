// Package progressbar models the megapixel bar: a fixed-scale bar with a clamped fill, a value
// indicator and immovable threshold markers at common video resolutions.
//
// The bar holds no presentation; displays read a Snapshot and draw it their own way.
package progressbar

import (
	"fmt"
	"math"
)

// DefaultMaxMegapixels is the bar's full-scale value when no option overrides it.
const DefaultMaxMegapixels = 9.0

// Gradient stops for the filled part of the bar.
const (
	GradientStart = "#00eaff"
	GradientEnd   = "#00ff7f"
)

// Threshold is a fixed marker definition.
type Threshold struct {
	// Megapixels is the marker's value.
	Megapixels float64
	// Name is the short resolution name, e.g. "1080p".
	Name string
	// Color is the marker colour as a hex string.
	Color string
}

// Label returns the two-line marker label, e.g. "2.07\n(1080p)".
func (t Threshold) Label() string {
	return fmt.Sprintf("%.2f\n(%s)", t.Megapixels, t.Name)
}

// DefaultThresholds are the 720p, 1080p, 1440p and 2160p pixel counts in megapixels.
var DefaultThresholds = []Threshold{
	{Megapixels: 1280 * 720 * 1e-6, Name: "720p", Color: "#1976d2"},
	{Megapixels: 1920 * 1080 * 1e-6, Name: "1080p", Color: "#0097a7"},
	{Megapixels: 2560 * 1440 * 1e-6, Name: "1440p", Color: "#b98825"},
	{Megapixels: 3840 * 2160 * 1e-6, Name: "2160p", Color: "#c62828"},
}

// Marker is a threshold placed on the bar.
type Marker struct {
	Threshold
	// Percent is the position along the bar in [0, 100].
	Percent float64
}

// Snapshot is an immutable copy of the bar state for displays.
type Snapshot struct {
	// Value is the last value passed to Update, unclamped.
	Value float64
	// Max is the full-scale value.
	Max float64
	// Fraction is Value/Max clamped to [0, 1].
	Fraction float64
	// Markers are the visible thresholds.
	Markers []Marker
	// MinLabel and MaxLabel are the static end labels.
	MinLabel, MaxLabel string
	// ValueLabel is the indicator text, e.g. "1.23 MP".
	ValueLabel string
}

// FillPercent returns the filled proportion in percent.
func (s Snapshot) FillPercent() float64 {
	return s.Fraction * 100
}

// IndicatorPercent returns the value indicator's position in percent. It always matches the fill.
func (s Snapshot) IndicatorPercent() float64 {
	return s.Fraction * 100
}

// Bar is the progress bar state: a fixed maximum and the current value.
type Bar struct {
	max        float64
	thresholds []Threshold
	markers    []Marker

	value    float64
	fraction float64
}

// New creates a Bar. Markers are computed once here; they never move.
//
// Parameters:
//   - options: functional options to configure the bar
//
// Returns:
//   - *Bar: the bar, with value 0
func New(options ...Option) *Bar {
	b := &Bar{
		max:        DefaultMaxMegapixels,
		thresholds: DefaultThresholds,
	}
	for _, opt := range options {
		opt(b)
	}
	if !(b.max > 0) {
		b.max = DefaultMaxMegapixels
	}

	for _, t := range b.thresholds {
		if t.Megapixels > b.max {
			continue
		}
		b.markers = append(b.markers, Marker{
			Threshold: t,
			Percent:   t.Megapixels / b.max * 100,
		})
	}
	return b
}

// Update sets the current value and recomputes the clamped fill fraction.
//
// Parameters:
//   - megapixels: the current value
func (b *Bar) Update(megapixels float64) {
	b.value = megapixels
	f := megapixels / b.max
	switch {
	case math.IsNaN(f), f < 0:
		f = 0
	case f > 1:
		f = 1
	}
	b.fraction = f
}

// Max returns the full-scale value.
func (b *Bar) Max() float64 {
	return b.max
}

// Value returns the last value passed to Update.
func (b *Bar) Value() float64 {
	return b.value
}

// Fraction returns the clamped fill fraction in [0, 1].
func (b *Bar) Fraction() float64 {
	return b.fraction
}

// Markers returns the visible threshold markers.
func (b *Bar) Markers() []Marker {
	out := make([]Marker, len(b.markers))
	copy(out, b.markers)
	return out
}

// MinLabel is the static left-hand label.
func (b *Bar) MinLabel() string {
	return "0.00"
}

// MaxLabel is the static right-hand label.
func (b *Bar) MaxLabel() string {
	return fmt.Sprintf("%.2f", b.max)
}

// ValueLabel is the indicator text for the current value.
func (b *Bar) ValueLabel() string {
	return fmt.Sprintf("%.2f MP", b.value)
}

// Snapshot copies the current state.
func (b *Bar) Snapshot() Snapshot {
	return Snapshot{
		Value:      b.value,
		Max:        b.max,
		Fraction:   b.fraction,
		Markers:    b.Markers(),
		MinLabel:   b.MinLabel(),
		MaxLabel:   b.MaxLabel(),
		ValueLabel: b.ValueLabel(),
	}
}
