package renderer

import (
	"image"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
)

func TestOutputDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		ratio         float64
		wantW, wantH  int
	}{
		{"identity", 800, 600, 1, 800, 600},
		{"hidpi", 800, 600, 2, 1600, 1200},
		{"fractional floors", 1000.9, 500.5, 0.5, 500, 250},
		{"budget scale", 1280, 720, 1.1180339887, 1431, 804},
		{"tiny clamps to one", 0.2, 0.2, 1, 1, 1},
		{"zero ratio treated as one", 640, 480, 0, 640, 480},
		{"negative ratio treated as one", 640, 480, -3, 640, 480},
		{"infinite ratio treated as one", 640, 480, math.Inf(1), 640, 480},
		{"nan size", math.NaN(), 10, 1, 1, 10},
		{"huge capped", 1e12, 1, 1, math.MaxInt32, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := outputDimensions(tt.width, tt.height, tt.ratio)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("outputDimensions(%v, %v, %v) = %d x %d, want %d x %d",
					tt.width, tt.height, tt.ratio, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestOverlayRect(t *testing.T) {
	tests := []struct {
		name       string
		imgW, imgH int
		surfW      int
		surfH      int
		want       [4]float32
	}{
		{"full surface", 800, 600, 800, 600, [4]float32{-1, 1, 1, -1}},
		{"quarter", 400, 300, 800, 600, [4]float32{-1, 1, 0, 0}},
		{"readout strip", 200, 150, 800, 600, [4]float32{-1, 1, -0.5, 0.5}},
		{"zero surface", 10, 10, 0, 600, material.FullScreenRect.Bounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlayRect(tt.imgW, tt.imgH, tt.surfW, tt.surfH).Bounds
			if got != tt.want {
				t.Errorf("overlayRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	if got := packRGBA(img); len(got) != 4*3*4 || &got[0] != &img.Pix[0] {
		t.Error("tightly packed image should be returned without copying")
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	got := packRGBA(sub)
	if len(got) != 2*2*4 {
		t.Fatalf("len = %d, want %d", len(got), 2*2*4)
	}
	// first pixel of the sub image is (1,1) in the parent
	if got[0] != img.Pix[img.PixOffset(1, 1)] {
		t.Errorf("first byte = %d, want %d", got[0], img.Pix[img.PixOffset(1, 1)])
	}
	if got[8] != img.Pix[img.PixOffset(1, 2)] {
		t.Errorf("second row = %d, want %d", got[8], img.Pix[img.PixOffset(1, 2)])
	}
}

func TestClampToLimit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"within limit", 1920, 1080, 8192, 1920, 1080},
		{"no limit", 20000, 10000, 0, 20000, 10000},
		{"wide", 16384, 4096, 8192, 8192, 2048},
		{"tall", 3000, 12000, 8192, 2048, 8192},
		{"edge on limit", 8192, 8192, 8192, 8192, 8192},
		{"sliver stays at one", 100000, 1, 8192, 8192, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := clampToLimit(tt.w, tt.h, tt.limit)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("clampToLimit(%d, %d, %d) = %d x %d, want %d x %d",
					tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

// limitedBackend records scene target sizes; every other backend call panics on the nil embed.
type limitedBackend struct {
	RendererBackend
	limit int
	sizes [][2]int
}

func (b *limitedBackend) MaxTextureDimension() int { return b.limit }
func (b *limitedBackend) ResizeSceneTarget(w, h int) {
	b.sizes = append(b.sizes, [2]int{w, h})
}

func TestRenderer_OutputSizeClampedToDevice(t *testing.T) {
	backend := &limitedBackend{limit: 8192}
	r := &renderer{mu: &sync.Mutex{}, backend: backend, pixelRatio: 1}

	r.SetOutputSize(5120, 2880)
	r.SetPixelRatio(2)

	w, h := r.OutputSize()
	if w != 8192 || h != 4608 {
		t.Fatalf("OutputSize() = %d x %d, want 8192 x 4608", w, h)
	}
	last := backend.sizes[len(backend.sizes)-1]
	if last != [2]int{w, h} {
		t.Errorf("scene target = %v, want it to match OutputSize %d x %d", last, w, h)
	}
}
