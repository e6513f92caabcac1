package camera

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestCamera_SetAspectUpdatesProjection(t *testing.T) {
	c := NewCamera(WithAspect(1))
	before := c.ProjectionMatrix()

	c.SetAspect(2)
	after := c.ProjectionMatrix()

	if c.Aspect() != 2 {
		t.Fatalf("Aspect() = %v, want 2", c.Aspect())
	}
	if got, want := after[0], before[0]/2; math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("projection[0] = %v, want %v", got, want)
	}
	if after[5] != before[5] {
		t.Errorf("projection[5] changed from %v to %v; vertical fov must not depend on aspect", before[5], after[5])
	}
}

func TestCamera_SetAspectIgnoresInvalid(t *testing.T) {
	c := NewCamera(WithAspect(1.5))
	for _, a := range []float32{0, -1, float32(math.NaN())} {
		c.SetAspect(a)
		if c.Aspect() != 1.5 {
			t.Errorf("SetAspect(%v) changed aspect to %v", a, c.Aspect())
		}
	}
}

func TestCamera_Defaults(t *testing.T) {
	c := NewCamera()
	x, y, z := c.Position()
	if x != 0 || y != 0 || z != 3 {
		t.Errorf("Position() = (%v, %v, %v), want (0, 0, 3)", x, y, z)
	}
	if want := float32(75 * math.Pi / 180); math.Abs(float64(c.Fov()-want)) > 1e-6 {
		t.Errorf("Fov() = %v, want %v", c.Fov(), want)
	}
}

func TestGPUCameraUniform_Marshal(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3))
	u := c.Uniform()
	buf := u.Marshal()
	if len(buf) != 80 {
		t.Fatalf("len(Marshal()) = %d, want 80", len(buf))
	}
	for i, want := range []float32{1, 2, 3} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[64+i*4:]))
		if got != want {
			t.Errorf("position[%d] = %v, want %v", i, got, want)
		}
	}
}
