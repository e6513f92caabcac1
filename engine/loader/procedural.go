package loader

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Generator draws a texture procedurally.
type Generator func() (image.Image, error)

var fontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// UVMap returns a generator for a square UV test texture: an 8×8 checker of hue-shifted cells,
// each labelled with its column letter and row number, so orientation and stretching are
// visible on every face.
//
// Parameters:
//   - size: edge length in pixels
//
// Returns:
//   - Generator: the texture generator
func UVMap(size int) Generator {
	return func() (image.Image, error) {
		if size < 8 {
			return nil, fmt.Errorf("uv map size %d is smaller than its 8 cells", size)
		}
		src, err := fontSource()
		if err != nil {
			return nil, err
		}

		const cells = 8
		dc := gg.NewContext(size, size)
		defer dc.Close()

		dc.ClearWithColor(gg.RGB(0.5, 0.5, 0.5))
		cell := float64(size) / cells
		for row := range cells {
			for col := range cells {
				hue := float64(col*cells+row) * 360 / (cells * cells)
				light := 0.45
				if (row+col)%2 == 1 {
					light = 0.6
				}
				dc.SetColor(gg.HSL(hue, 0.7, light).Color())
				dc.DrawRectangle(float64(col)*cell, float64(row)*cell, cell, cell)
				if err := dc.Fill(); err != nil {
					return nil, err
				}
			}
		}

		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(max(1, cell/32))
		for i := 0; i <= cells; i++ {
			p := float64(i) * cell
			dc.DrawLine(p, 0, p, float64(size))
			dc.DrawLine(0, p, float64(size), p)
		}
		if err := dc.Stroke(); err != nil {
			return nil, err
		}

		dc.SetFont(src.Face(cell / 3))
		for row := range cells {
			for col := range cells {
				label := fmt.Sprintf("%c%d", 'A'+col, cells-row)
				dc.DrawStringAnchored(label, (float64(col)+0.5)*cell, (float64(row)+0.5)*cell, 0.5, 0.5)
			}
		}
		return dc.Image(), nil
	}
}

// Grid returns a generator for a tiling prototype texture: a light grey field with a thin
// line every cell and a heavier border, meant to be repeated across large surfaces.
//
// Parameters:
//   - size: edge length in pixels
//   - cells: grid divisions per edge
//
// Returns:
//   - Generator: the texture generator
func Grid(size, cells int) Generator {
	return func() (image.Image, error) {
		if size <= 0 || cells <= 0 {
			return nil, fmt.Errorf("invalid grid %d px / %d cells", size, cells)
		}
		dc := gg.NewContext(size, size)
		defer dc.Close()

		dc.ClearWithColor(gg.RGB(0.72, 0.72, 0.72))

		cell := float64(size) / float64(cells)
		dc.SetRGB(0.55, 0.55, 0.55)
		dc.SetLineWidth(1)
		for i := 1; i < cells; i++ {
			p := float64(i) * cell
			dc.DrawLine(p, 0, p, float64(size))
			dc.DrawLine(0, p, float64(size), p)
		}
		if err := dc.Stroke(); err != nil {
			return nil, err
		}

		dc.SetRGB(0.35, 0.35, 0.35)
		dc.SetLineWidth(max(2, float64(size)/128))
		dc.DrawRectangle(0, 0, float64(size), float64(size))
		if err := dc.Stroke(); err != nil {
			return nil, err
		}
		return dc.Image(), nil
	}
}
