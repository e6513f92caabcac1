// Package resolution decides the size of the render framebuffer from the window's layout size,
// the device pixel ratio and a user-imposed pixel budget.
//
// The computation is pure (see Compute). The Controller wraps it with the policy state that the
// user mutates at runtime and pushes every result to the rendering backend and the camera.
package resolution

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidBudget is returned by ParseBudget when the text is neither a positive megapixel count
// nor one of the unbounded spellings.
var ErrInvalidBudget = errors.New("resolution: invalid pixel budget")

// Budget is a maximum rendered pixel count. Values that are not positive and finite mean no cap.
type Budget float64

// Unbounded is the budget that never limits the render size.
var Unbounded = Budget(math.Inf(1))

// Megapixels returns the Budget holding mp million pixels.
//
// Parameters:
//   - mp: the budget in megapixels
//
// Returns:
//   - Budget: the budget in pixels
func Megapixels(mp float64) Budget {
	return Budget(mp * 1e6)
}

// Presets are the discrete caps offered by the budget selector, in selector order.
// The last entry is Unbounded.
var Presets = []Budget{
	Megapixels(0.5),
	Megapixels(1),
	Megapixels(2),
	Megapixels(4),
	Megapixels(8),
	Unbounded,
}

// IsUnbounded reports whether the budget never limits the render size.
func (b Budget) IsUnbounded() bool {
	f := float64(b)
	return math.IsInf(f, 1) || math.IsNaN(f) || f <= 0
}

// Megapixels returns the budget in millions of pixels, or +Inf when unbounded.
func (b Budget) Megapixels() float64 {
	if b.IsUnbounded() {
		return math.Inf(1)
	}
	return float64(b) * 1e-6
}

func (b Budget) String() string {
	if b.IsUnbounded() {
		return "Unbounded"
	}
	return fmt.Sprintf("%.2f MP", b.Megapixels())
}

// ParseBudget parses a budget expressed in megapixels. "Infinity", "inf", "unbounded", "none" and the
// empty string all mean Unbounded; anything else must be a positive number.
//
// Parameters:
//   - s: the text to parse, e.g. "2" or "Infinity"
//
// Returns:
//   - Budget: the parsed budget in pixels
//   - error: ErrInvalidBudget (wrapped) if s is not a valid budget
func ParseBudget(s string) (Budget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "infinity", "+infinity", "inf", "+inf", "unbounded", "none":
		return Unbounded, nil
	}
	mp, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBudget, s)
	}
	if math.IsInf(mp, 1) {
		return Unbounded, nil
	}
	if math.IsNaN(mp) || mp <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidBudget, s)
	}
	return Megapixels(mp), nil
}

// ViewportState is a snapshot of the environment taken at the start of a single computation.
type ViewportState struct {
	// ClientWidth is the drawable area width in layout pixels.
	ClientWidth float64
	// ClientHeight is the drawable area height in layout pixels.
	ClientHeight float64
	// DevicePixelRatio is the live ratio of physical to layout pixels.
	DevicePixelRatio float64
}

// Policy is the user-controlled configuration of the controller.
type Policy struct {
	// TrackDPRChanges selects the live device pixel ratio when true and the ratio captured at startup
	// when false.
	TrackDPRChanges bool
	// MaxPixels caps the rendered pixel count.
	MaxPixels Budget
}

// RenderTarget is the result of one computation.
type RenderTarget struct {
	// Width and Height are the final, budget-limited output dimensions. They are fractional; the
	// backend rounds them down.
	Width, Height float64
	// ScaleFactor is the uniform linear downscale applied to the unscaled dimensions, in (0, 1].
	ScaleFactor float64
	// UnscaledWidth and UnscaledHeight are the layout size multiplied by the effective DPR.
	UnscaledWidth, UnscaledHeight int
	// Aspect is UnscaledWidth / UnscaledHeight.
	Aspect float64
	// DPR is the effective device pixel ratio used for this computation.
	DPR float64
}

// PixelCount returns the final pixel count Width * Height.
func (t RenderTarget) PixelCount() float64 {
	return t.Width * t.Height
}

// UnscaledPixelCount returns UnscaledWidth * UnscaledHeight.
func (t RenderTarget) UnscaledPixelCount() float64 {
	return float64(t.UnscaledWidth) * float64(t.UnscaledHeight)
}

// Compute derives the render target for one viewport snapshot.
//
// The effective DPR is the live one when the policy tracks DPR changes, initialDPR otherwise. The
// unscaled size is the layout size times that DPR, floored. When the unscaled pixel count exceeds
// the budget both dimensions are multiplied by sqrt(budget/count), so the final area lands on the
// budget. The aspect ratio always comes from the unscaled size.
//
// Parameters:
//   - v: the viewport snapshot
//   - initialDPR: the device pixel ratio captured at startup
//   - p: the current policy
//
// Returns:
//   - RenderTarget: the computed target
//   - bool: false when the viewport has no area (e.g. a minimized window) or the DPR is not positive,
//     in which case the target is the zero value and must not be applied
func Compute(v ViewportState, initialDPR float64, p Policy) (RenderTarget, bool) {
	dpr := initialDPR
	if p.TrackDPRChanges {
		dpr = v.DevicePixelRatio
	}
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		return RenderTarget{}, false
	}

	w := int(math.Floor(v.ClientWidth * dpr))
	h := int(math.Floor(v.ClientHeight * dpr))
	if w <= 0 || h <= 0 {
		return RenderTarget{}, false
	}

	count := float64(w) * float64(h)
	scale := 1.0
	if !p.MaxPixels.IsUnbounded() && count > float64(p.MaxPixels) {
		scale = math.Sqrt(float64(p.MaxPixels) / count)
	}

	return RenderTarget{
		Width:          float64(w) * scale,
		Height:         float64(h) * scale,
		ScaleFactor:    scale,
		UnscaledWidth:  w,
		UnscaledHeight: h,
		Aspect:         float64(w) / float64(h),
		DPR:            dpr,
	}, true
}
