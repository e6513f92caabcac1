package model

import (
	"github.com/Carmen-Shannon/oxy-dpr/common"
)

// Geometry is an indexed triangle list ready for upload.
type Geometry struct {
	Vertices []GPUVertex
	Indices  []uint32
}

// face is one axis-aligned quad. u × v must equal normal so the quad winds counter-clockwise
// when seen from outside.
type face struct {
	normal, u, v [3]float32
}

var boxFaces = [6]face{
	{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
	{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
}

// NewBox builds an axis-aligned box centred on the origin. Each face maps the full texture.
//
// Parameters:
//   - width, height, depth: extents along X, Y and Z
//
// Returns:
//   - Geometry: 24 vertices and 36 indices
func NewBox(width, height, depth float32) Geometry {
	half := [3]float32{width / 2, height / 2, depth / 2}
	g := Geometry{
		Vertices: make([]GPUVertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range boxFaces {
		g.appendQuad(f, half, 1)
	}
	return g
}

// NewPlane builds a quad in the XY plane facing +Z, centred on the origin.
//
// Parameters:
//   - width, height: extents along X and Y
//
// Returns:
//   - Geometry: 4 vertices and 6 indices
func NewPlane(width, height float32) Geometry {
	g := Geometry{
		Vertices: make([]GPUVertex, 0, 4),
		Indices:  make([]uint32, 0, 6),
	}
	g.appendQuad(face{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}}, [3]float32{width / 2, height / 2, 0}, 0)
	return g
}

// appendQuad adds the four corners of f. offset scales how far the quad sits along its normal.
func (g *Geometry) appendQuad(f face, half [3]float32, offset float32) {
	base := uint32(len(g.Vertices))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, c := range corners {
		var pos [3]float32
		for i := range 3 {
			pos[i] = (f.normal[i]*offset + c[0]*f.u[i] + c[1]*f.v[i]) * half[i]
		}
		g.Vertices = append(g.Vertices, GPUVertex{
			Position: pos,
			Normal:   f.normal,
			TexCoord: [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
		})
	}
	g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
}

// VertexBytes packs the vertices for a vertex buffer.
func (g Geometry) VertexBytes() []byte {
	out := make([]byte, 0, len(g.Vertices)*32)
	for i := range g.Vertices {
		out = append(out, g.Vertices[i].Marshal()...)
	}
	return out
}

// IndexBytes packs the indices for a Uint32 index buffer.
func (g Geometry) IndexBytes() []byte {
	return common.SliceToBytes(g.Indices)
}

// IndexCount returns the number of indices to draw.
func (g Geometry) IndexCount() int {
	return len(g.Indices)
}
