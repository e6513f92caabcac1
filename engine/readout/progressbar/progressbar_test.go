package progressbar

import (
	"math"
	"testing"
)

func TestBar_UpdateClamps(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"zero", 0, 0},
		{"max", 9, 100},
		{"half", 4.5, 50},
		{"above max", 20, 100},
		{"negative", -3, 0},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			b.Update(tt.value)
			s := b.Snapshot()
			if s.FillPercent() != tt.want {
				t.Errorf("FillPercent() = %v, want %v", s.FillPercent(), tt.want)
			}
			if s.IndicatorPercent() != s.FillPercent() {
				t.Errorf("IndicatorPercent() = %v, want it to match fill %v", s.IndicatorPercent(), s.FillPercent())
			}
		})
	}
}

func TestBar_ValueLabelIsUnclamped(t *testing.T) {
	b := New()
	b.Update(12.345)
	if got := b.ValueLabel(); got != "12.35 MP" {
		t.Errorf("ValueLabel() = %q, want %q", got, "12.35 MP")
	}
	if b.Value() != 12.345 {
		t.Errorf("Value() = %v, want 12.345", b.Value())
	}
}

func TestBar_MarkersAboveMaxOmitted(t *testing.T) {
	b := New(WithMax(4))
	markers := b.Markers()
	if len(markers) != 3 {
		t.Fatalf("len(Markers()) = %d, want 3 (2160p omitted)", len(markers))
	}
	for _, m := range markers {
		if m.Megapixels > 4 {
			t.Errorf("marker %s (%v MP) above max", m.Name, m.Megapixels)
		}
		if want := 100 * m.Megapixels / 4; m.Percent != want {
			t.Errorf("marker %s at %v%%, want %v%%", m.Name, m.Percent, want)
		}
	}
}

func TestBar_DefaultMarkers(t *testing.T) {
	b := New()
	markers := b.Markers()
	wantNames := []string{"720p", "1080p", "1440p", "2160p"}
	if len(markers) != len(wantNames) {
		t.Fatalf("len(Markers()) = %d, want %d", len(markers), len(wantNames))
	}
	for i, m := range markers {
		if m.Name != wantNames[i] {
			t.Errorf("marker %d = %s, want %s", i, m.Name, wantNames[i])
		}
	}
	if got := markers[1].Label(); got != "2.07\n(1080p)" {
		t.Errorf("1080p label = %q", got)
	}
}

func TestBar_MarkersDoNotMove(t *testing.T) {
	b := New()
	before := b.Markers()
	b.Update(7)
	after := b.Markers()
	for i := range before {
		if before[i].Percent != after[i].Percent {
			t.Errorf("marker %s moved from %v to %v", before[i].Name, before[i].Percent, after[i].Percent)
		}
	}
}

func TestBar_StaticLabels(t *testing.T) {
	b := New(WithMax(12))
	b.Update(3)
	if b.MinLabel() != "0.00" || b.MaxLabel() != "12.00" {
		t.Errorf("labels = %q, %q; want 0.00, 12.00", b.MinLabel(), b.MaxLabel())
	}
}

func TestBar_InvalidMaxFallsBack(t *testing.T) {
	b := New(WithMax(0))
	if b.Max() != DefaultMaxMegapixels {
		t.Errorf("Max() = %v, want %v", b.Max(), DefaultMaxMegapixels)
	}
}
