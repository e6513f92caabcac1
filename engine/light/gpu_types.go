package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSpotLightSource is the canonical WGSL definition of the SpotLight struct.
// Matches GPUSpotLight layout exactly (64 bytes).
//
//go:embed assets/spot_light.wgsl
var GPUSpotLightSource string

// GPUSpotLight is the GPU-aligned representation of the scene light.
// Matches the WGSL SpotLight struct layout exactly (see GPUSpotLightSource).
// Size: 64 bytes (WGSL uniform aligned).
type GPUSpotLight struct {
	Position    [3]float32 // offset  0: world-space position
	Intensity   float32    // offset 12: scalar multiplier
	Direction   [3]float32 // offset 16: normalized direction
	Distance    float32    // offset 28: cutoff distance, 0 = none
	Color       [3]float32 // offset 32: RGB color
	Decay       float32    // offset 44: falloff exponent
	ConeCos     float32    // offset 48: cos(angle)
	PenumbraCos float32    // offset 52: cos(angle * (1 - penumbra))
	Ambient     float32    // offset 56: ambient intensity
	_pad        float32    // offset 60: padding to 64 bytes
}

// Size returns the size of the GPUSpotLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUSpotLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpotLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUSpotLight) Marshal() []byte {
	buf := make([]byte, 64)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	for i := range 3 {
		put(i*4, g.Position[i])
		put(16+i*4, g.Direction[i])
		put(32+i*4, g.Color[i])
	}
	put(12, g.Intensity)
	put(28, g.Distance)
	put(44, g.Decay)
	put(48, g.ConeCos)
	put(52, g.PenumbraCos)
	put(56, g.Ambient)
	return buf
}
