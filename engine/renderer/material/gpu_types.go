package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform for the lit fragment shader.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialParamsSource).
// Size: 32 bytes.
type GPUMaterialParams struct {
	BaseColor [4]float32 // offset  0: RGBA multiplier applied to the texture sample
	Roughness float32    // offset 16: 0 = mirror, 1 = fully diffuse
	Metalness float32    // offset 20: 0 = dielectric, 1 = metal
	UVRepeat  [2]float32 // offset 24: texture coordinate scale
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.BaseColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Metalness))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.UVRepeat[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.UVRepeat[1]))
	return buf
}

// GPUOverlayRectSource is the canonical WGSL definition of the OverlayRect struct.
// Matches GPUOverlayRect layout exactly (16 bytes).
//
//go:embed assets/overlay_rect.wgsl
var GPUOverlayRectSource string

// GPUOverlayRect places a textured quad on screen for the blit and overlay passes.
// Matches the WGSL OverlayRect struct layout exactly (see GPUOverlayRectSource).
// Size: 16 bytes (one vec4<f32>).
type GPUOverlayRect struct {
	Bounds [4]float32 // offset 0: left, top, right, bottom in clip space
}

// FullScreenRect covers the whole render target.
var FullScreenRect = GPUOverlayRect{Bounds: [4]float32{-1, 1, 1, -1}}

// Size returns the size of the GPUOverlayRect struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUOverlayRect) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUOverlayRect struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUOverlayRect) Marshal() []byte {
	buf := make([]byte, 16)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Bounds[i]))
	}
	return buf
}
