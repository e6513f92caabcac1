package loader

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.RGBA) Generator {
	return func() (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
		return img, nil
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_Load(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	tests := []struct {
		name      string
		src       func(t *testing.T) Source
		wantW     uint32
		wantH     uint32
		wantErr   error
		wantRed00 bool
	}{
		{
			name:      "file",
			src:       func(t *testing.T) Source { return Source{Path: writePNG(t, 4, 2)} },
			wantW:     4,
			wantH:     2,
			wantRed00: true,
		},
		{
			name: "generator only",
			src:  func(t *testing.T) Source { return Source{Name: "gen", Generate: solid(3, 5, red)} },
			wantW: 3, wantH: 5, wantRed00: true,
		},
		{
			name: "missing file falls back",
			src: func(t *testing.T) Source {
				return Source{Name: "fb", Path: filepath.Join(t.TempDir(), "nope.png"), Generate: solid(2, 2, red)}
			},
			wantW: 2, wantH: 2, wantRed00: true,
		},
		{
			name: "unsupported format falls back",
			src: func(t *testing.T) Source {
				return Source{Name: "fmt", Path: "texture.tga", Generate: solid(1, 1, red)}
			},
			wantW: 1, wantH: 1, wantRed00: true,
		},
		{
			name:    "nothing to load",
			src:     func(t *testing.T) Source { return Source{Name: "empty"} },
			wantErr: ErrNoSource,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(WithWorkers(1))
			tex, err := l.Load(tt.src(t))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tex.Width != tt.wantW || tex.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", tex.Width, tex.Height, tt.wantW, tt.wantH)
			}
			if len(tex.Pixels) != int(tt.wantW*tt.wantH*4) {
				t.Errorf("len(Pixels) = %d, want %d", len(tex.Pixels), tt.wantW*tt.wantH*4)
			}
			if tt.wantRed00 && (tex.Pixels[0] != 255 || tex.Pixels[1] != 0) {
				t.Errorf("pixel (0,0) = %v, want red", tex.Pixels[:4])
			}
		})
	}
}

func TestLoader_MissingFileWithoutGenerator(t *testing.T) {
	l := NewLoader()
	if _, err := l.Load(Source{Path: filepath.Join(t.TempDir(), "missing.png")}); err == nil {
		t.Error("Load() of a missing file without a generator should fail")
	}
}

func TestLoader_Cache(t *testing.T) {
	calls := 0
	gen := func() (image.Image, error) {
		calls++
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}
	l := NewLoader()
	first, err := l.Load(Source{Name: "once", Generate: gen})
	if err != nil {
		t.Fatal(err)
	}
	second, _ := l.Load(Source{Name: "once", Generate: gen})
	if first != second || calls != 1 {
		t.Errorf("second Load() regenerated the texture (%d calls)", calls)
	}
	if l.Get("once") != first {
		t.Error("Get() did not return the cached texture")
	}
	if l.Get("other") != nil {
		t.Error("Get() of an unknown name should be nil")
	}
}

func TestLoader_LoadAll(t *testing.T) {
	l := NewLoader(WithWorkers(2))
	srcs := []Source{
		{Name: "a", Generate: solid(1, 1, color.RGBA{A: 255})},
		{Name: "bad"},
		{Name: "c", Generate: solid(2, 1, color.RGBA{A: 255})},
	}
	out, err := l.LoadAll(srcs...)
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("LoadAll() error = %v, want ErrNoSource joined", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if out[0] == nil || out[0].Width != 1 || out[2] == nil || out[2].Width != 2 {
		t.Error("results are not in source order")
	}
	if out[1] != nil {
		t.Error("failed source should have a nil result")
	}
}

func TestGenerators(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		size int
	}{
		{"uv map", UVMap(64), 64},
		{"grid", Grid(32, 4), 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.gen()
			if err != nil {
				t.Fatalf("generate error = %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.size || b.Dy() != tt.size {
				t.Errorf("bounds = %v, want %dx%d", b, tt.size, tt.size)
			}
			// interior of the first cell is opaque
			_, _, _, a := img.At(tt.size/16, tt.size/16+1).RGBA()
			if a != 0xffff {
				t.Errorf("alpha = %#x, want opaque", a)
			}
		})
	}
}

func TestGenerators_InvalidSize(t *testing.T) {
	if _, err := UVMap(4)(); err == nil {
		t.Error("UVMap(4) should fail")
	}
	if _, err := Grid(16, 0)(); err == nil {
		t.Error("Grid(16, 0) should fail")
	}
}

func TestStagingFromImage_SubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 9, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))
	tex := stagingFromImage(sub)
	if tex.Width != 2 || tex.Height != 2 || len(tex.Pixels) != 16 {
		t.Fatalf("staging = %dx%d with %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}
	if tex.Pixels[0] != 9 {
		t.Errorf("first pixel red = %d, want 9", tex.Pixels[0])
	}
}
