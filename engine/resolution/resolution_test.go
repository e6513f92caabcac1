package resolution

import (
	"errors"
	"math"
	"testing"
)

func TestCompute_UnboundedUsesFullResolution(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		dpr           float64
	}{
		{"dpr 1", 1280, 720, 1},
		{"dpr 2", 1024, 768, 2},
		{"fractional dpr", 1366, 768, 1.25},
		{"odd size", 333, 211, 1.5},
		{"tiny", 1, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ViewportState{ClientWidth: tt.width, ClientHeight: tt.height, DevicePixelRatio: tt.dpr}
			got, ok := Compute(v, 1, Policy{TrackDPRChanges: true, MaxPixels: Unbounded})
			if !ok {
				t.Fatal("Compute() ok = false, want true")
			}
			wantW := int(math.Floor(tt.width * tt.dpr))
			wantH := int(math.Floor(tt.height * tt.dpr))
			if got.ScaleFactor != 1 {
				t.Errorf("ScaleFactor = %v, want 1", got.ScaleFactor)
			}
			if got.UnscaledWidth != wantW || got.UnscaledHeight != wantH {
				t.Errorf("unscaled = %dx%d, want %dx%d", got.UnscaledWidth, got.UnscaledHeight, wantW, wantH)
			}
			if got.Width != float64(wantW) || got.Height != float64(wantH) {
				t.Errorf("final = %vx%v, want %dx%d", got.Width, got.Height, wantW, wantH)
			}
		})
	}
}

func TestCompute_ZeroBudgetMeansNoCap(t *testing.T) {
	v := ViewportState{ClientWidth: 800, ClientHeight: 600, DevicePixelRatio: 1}
	got, ok := Compute(v, 1, Policy{TrackDPRChanges: true})
	if !ok {
		t.Fatal("Compute() ok = false, want true")
	}
	if got.ScaleFactor != 1 {
		t.Errorf("ScaleFactor = %v, want 1", got.ScaleFactor)
	}
}

func TestCompute_OverBudgetLandsOnBudget(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		dpr           float64
		budget        Budget
	}{
		{"1080p capped to 1MP", 1920, 1080, 1, Megapixels(1)},
		{"retina capped to 2MP", 1440, 900, 2, Megapixels(2)},
		{"4k capped to half MP", 3840, 2160, 1, Megapixels(0.5)},
		{"portrait", 600, 1200, 2.5, Megapixels(1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ViewportState{ClientWidth: tt.width, ClientHeight: tt.height, DevicePixelRatio: tt.dpr}
			got, ok := Compute(v, 1, Policy{TrackDPRChanges: true, MaxPixels: tt.budget})
			if !ok {
				t.Fatal("Compute() ok = false, want true")
			}
			p := got.UnscaledPixelCount()
			if p <= float64(tt.budget) {
				t.Fatalf("test setup: unscaled %v is within budget %v", p, tt.budget)
			}
			wantScale := math.Sqrt(float64(tt.budget) / p)
			if math.Abs(got.ScaleFactor-wantScale) > 1e-12 {
				t.Errorf("ScaleFactor = %v, want %v", got.ScaleFactor, wantScale)
			}
			if got.ScaleFactor <= 0 || got.ScaleFactor >= 1 {
				t.Errorf("ScaleFactor = %v, want in (0, 1)", got.ScaleFactor)
			}
			if area := got.PixelCount(); math.Abs(area-float64(tt.budget)) > 1e-6*float64(tt.budget) {
				t.Errorf("final area = %v, want %v", area, float64(tt.budget))
			}
		})
	}
}

func TestCompute_AtBudgetBoundaryKeepsScaleOne(t *testing.T) {
	v := ViewportState{ClientWidth: 1000, ClientHeight: 1000, DevicePixelRatio: 1}
	got, _ := Compute(v, 1, Policy{TrackDPRChanges: true, MaxPixels: Megapixels(1)})
	if got.ScaleFactor != 1 {
		t.Errorf("ScaleFactor = %v, want 1 when count equals budget", got.ScaleFactor)
	}
}

func TestCompute_AspectIgnoresBudget(t *testing.T) {
	v := ViewportState{ClientWidth: 1600, ClientHeight: 900, DevicePixelRatio: 1.5}
	for _, b := range Presets {
		got, ok := Compute(v, 1, Policy{TrackDPRChanges: true, MaxPixels: b})
		if !ok {
			t.Fatalf("Compute(%v) ok = false", b)
		}
		want := float64(got.UnscaledWidth) / float64(got.UnscaledHeight)
		if got.Aspect != want {
			t.Errorf("budget %v: Aspect = %v, want %v", b, got.Aspect, want)
		}
	}
}

func TestCompute_Scenario1024x768At2x(t *testing.T) {
	v := ViewportState{ClientWidth: 1024, ClientHeight: 768, DevicePixelRatio: 2}
	got, ok := Compute(v, 2, Policy{TrackDPRChanges: true, MaxPixels: Budget(2e6)})
	if !ok {
		t.Fatal("Compute() ok = false, want true")
	}
	if got.UnscaledWidth != 2048 || got.UnscaledHeight != 1536 {
		t.Fatalf("unscaled = %dx%d, want 2048x1536", got.UnscaledWidth, got.UnscaledHeight)
	}
	if got.UnscaledPixelCount() != 3145728 {
		t.Errorf("unscaled count = %v, want 3145728", got.UnscaledPixelCount())
	}
	if math.Abs(got.ScaleFactor-0.797) > 1e-3 {
		t.Errorf("ScaleFactor = %v, want ~0.797", got.ScaleFactor)
	}
	// The backend floors each dimension, so the realised count sits just under the budget.
	realised := math.Floor(got.Width) * math.Floor(got.Height)
	if realised > 2e6 || realised < 2e6-(got.Width+got.Height) {
		t.Errorf("realised pixel count = %v, want within rounding of 2e6", realised)
	}
}

func TestCompute_FrozenDPRIgnoresLiveRatio(t *testing.T) {
	v := ViewportState{ClientWidth: 800, ClientHeight: 600, DevicePixelRatio: 3}
	got, ok := Compute(v, 1.5, Policy{TrackDPRChanges: false, MaxPixels: Unbounded})
	if !ok {
		t.Fatal("Compute() ok = false, want true")
	}
	if got.DPR != 1.5 {
		t.Errorf("DPR = %v, want 1.5", got.DPR)
	}
	if got.UnscaledWidth != 1200 || got.UnscaledHeight != 900 {
		t.Errorf("unscaled = %dx%d, want 1200x900", got.UnscaledWidth, got.UnscaledHeight)
	}
}

func TestCompute_DegenerateViewport(t *testing.T) {
	tests := []struct {
		name string
		v    ViewportState
	}{
		{"zero height", ViewportState{ClientWidth: 800, ClientHeight: 0, DevicePixelRatio: 1}},
		{"zero width", ViewportState{ClientWidth: 0, ClientHeight: 600, DevicePixelRatio: 1}},
		{"sub-pixel height", ViewportState{ClientWidth: 800, ClientHeight: 0.4, DevicePixelRatio: 1}},
		{"zero dpr", ViewportState{ClientWidth: 800, ClientHeight: 600, DevicePixelRatio: 0}},
		{"nan dpr", ViewportState{ClientWidth: 800, ClientHeight: 600, DevicePixelRatio: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Compute(tt.v, 1, Policy{TrackDPRChanges: true}); ok {
				t.Error("Compute() ok = true, want false")
			}
		})
	}
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in      string
		want    Budget
		wantErr bool
	}{
		{"Infinity", Unbounded, false},
		{"unbounded", Unbounded, false},
		{"", Unbounded, false},
		{"inf", Unbounded, false},
		{"2", Megapixels(2), false},
		{" 0.5 ", Megapixels(0.5), false},
		{"8.29", Megapixels(8.29), false},
		{"0", 0, true},
		{"-1", 0, true},
		{"lots", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBudget(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBudget) {
					t.Errorf("ParseBudget(%q) err = %v, want ErrInvalidBudget", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBudget(%q) err = %v", tt.in, err)
			}
			if got.IsUnbounded() != tt.want.IsUnbounded() || (!got.IsUnbounded() && got != tt.want) {
				t.Errorf("ParseBudget(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBudgetString(t *testing.T) {
	if got := Unbounded.String(); got != "Unbounded" {
		t.Errorf("Unbounded.String() = %q", got)
	}
	if got := Megapixels(2).String(); got != "2.00 MP" {
		t.Errorf("Megapixels(2).String() = %q, want %q", got, "2.00 MP")
	}
	if !Presets[len(Presets)-1].IsUnbounded() {
		t.Error("last preset must be Unbounded")
	}
}
