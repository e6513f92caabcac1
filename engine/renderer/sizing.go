package renderer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
)

// outputDimensions converts a requested output size in layout units to whole pixels.
// Each axis is scaled by ratio, rounded down, and held at a minimum of 1.
func outputDimensions(width, height, ratio float64) (int, int) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	return floorAtLeastOne(width * ratio), floorAtLeastOne(height * ratio)
}

func floorAtLeastOne(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

// clampToLimit scales width x height down uniformly until neither axis exceeds limit.
// A limit <= 0 leaves the size unchanged.
func clampToLimit(width, height, limit int) (int, int) {
	if limit <= 0 || (width <= limit && height <= limit) {
		return width, height
	}
	if width >= height {
		return limit, floorAtLeastOne(float64(height) * float64(limit) / float64(width))
	}
	return floorAtLeastOne(float64(width) * float64(limit) / float64(height)), limit
}

// overlayRect places an image of imgW x imgH pixels at the top-left corner of a
// surfW x surfH surface at one texel per pixel. Images larger than the surface are clipped
// to it by the rasterizer.
func overlayRect(imgW, imgH, surfW, surfH int) material.GPUOverlayRect {
	if surfW <= 0 || surfH <= 0 {
		return material.FullScreenRect
	}
	right := -1 + 2*float32(imgW)/float32(surfW)
	bottom := 1 - 2*float32(imgH)/float32(surfH)
	return material.GPUOverlayRect{Bounds: [4]float32{-1, 1, right, bottom}}
}
