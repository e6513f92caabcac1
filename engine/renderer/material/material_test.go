package material

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestNewMaterial_Defaults(t *testing.T) {
	m := NewMaterial()
	if m.BaseColor() != [4]float32{1, 1, 1, 1} {
		t.Errorf("BaseColor() = %v, want white", m.BaseColor())
	}
	if m.Roughness() != 1 || m.Metalness() != 0 {
		t.Errorf("roughness %v metalness %v, want 1 and 0", m.Roughness(), m.Metalness())
	}
	if m.UVRepeat() != [2]float32{1, 1} {
		t.Errorf("UVRepeat() = %v, want [1 1]", m.UVRepeat())
	}
	if m.Texture() != nil || m.BindGroupProvider() != nil {
		t.Error("new material should have no texture or provider")
	}
}

func TestMaterial_Params(t *testing.T) {
	m := NewMaterial(WithRoughness(1), WithMetalness(0.2), WithUVRepeat(6, 2))
	p := m.Params()
	buf := p.Marshal()
	if len(buf) != p.Size() {
		t.Fatalf("len(Marshal()) = %d, want %d", len(buf), p.Size())
	}
	read := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	tests := []struct {
		name string
		off  int
		want float32
	}{
		{"base.a", 12, 1},
		{"roughness", 16, 1},
		{"metalness", 20, 0.2},
		{"repeat.u", 24, 6},
		{"repeat.v", 28, 2},
	}
	for _, tt := range tests {
		if got := read(tt.off); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGPUOverlayRect_Marshal(t *testing.T) {
	r := FullScreenRect
	buf := r.Marshal()
	if len(buf) != 16 || r.Size() != 16 {
		t.Fatalf("overlay rect must be 16 bytes, got %d / %d", len(buf), r.Size())
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])); got != 1 {
		t.Errorf("top = %v, want 1", got)
	}
}
