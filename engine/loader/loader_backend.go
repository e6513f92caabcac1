package loader

import (
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-dpr/common"
)

// loaderBackend turns one Source into RGBA pixels.
// Concrete implementations handle file decoding or procedural drawing.
type loaderBackend interface {
	// Load prepares the texture described by src.
	//
	// Parameters:
	//   - src: the texture source
	//
	// Returns:
	//   - *common.TextureStagingData: RGBA pixels ready for upload
	//   - error: error if the backend cannot produce the texture
	Load(src Source) (*common.TextureStagingData, error)
}

// fileLoaderBackend decodes PNG and JPEG files from disk.
type fileLoaderBackend struct{}

func newFileLoaderBackend() loaderBackend {
	return fileLoaderBackend{}
}

func (fileLoaderBackend) Load(src Source) (*common.TextureStagingData, error) {
	ext := strings.ToLower(filepath.Ext(src.Path))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		return nil, fmt.Errorf("unsupported texture format: %q", ext)
	}

	tex := &common.ImportedTexture{Name: src.key(), Path: src.Path}
	return tex.Staging()
}

// proceduralLoaderBackend runs the source's generator.
type proceduralLoaderBackend struct{}

func newProceduralLoaderBackend() loaderBackend {
	return proceduralLoaderBackend{}
}

func (proceduralLoaderBackend) Load(src Source) (*common.TextureStagingData, error) {
	if src.Generate == nil {
		return nil, ErrNoSource
	}
	img, err := src.Generate()
	if err != nil {
		return nil, err
	}
	return stagingFromImage(img), nil
}

// stagingFromImage copies img into a tightly packed RGBA buffer.
func stagingFromImage(img image.Image) *common.TextureStagingData {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
	}
}
