// Package readout formats the resolution controller's output into named display fields and
// drives the megapixel progress bar.
package readout

import (
	"math"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
)

// Field names a display slot.
type Field int

const (
	FieldRendererSize Field = iota
	FieldRendererMP
	FieldWindowSize
	FieldWindowMP
	FieldDPR
	FieldInitialDPR
	FieldBudget
	FieldTrackDPR
)

// AllFields lists every field in display order.
var AllFields = []Field{
	FieldRendererSize,
	FieldRendererMP,
	FieldWindowSize,
	FieldWindowMP,
	FieldDPR,
	FieldInitialDPR,
	FieldBudget,
	FieldTrackDPR,
}

func (f Field) String() string {
	switch f {
	case FieldRendererSize:
		return "renderer-size"
	case FieldRendererMP:
		return "renderer-mp"
	case FieldWindowSize:
		return "window-size"
	case FieldWindowMP:
		return "window-mp"
	case FieldDPR:
		return "dpr"
	case FieldInitialDPR:
		return "initial-dpr"
	case FieldBudget:
		return "budget"
	case FieldTrackDPR:
		return "track-dpr"
	default:
		return "unknown"
	}
}

// Label is the human-readable caption shown beside a field.
func (f Field) Label() string {
	switch f {
	case FieldRendererSize:
		return "Renderer"
	case FieldWindowSize:
		return "Window"
	case FieldDPR:
		return "DPR"
	case FieldInitialDPR:
		return "Initial DPR"
	case FieldBudget:
		return "Max pixels"
	case FieldTrackDPR:
		return "Track DPR"
	default:
		return ""
	}
}

// Display receives formatted field values. A display that lacks a slot reports false from
// HasField and is never written for it.
type Display interface {
	HasField(f Field) bool
	SetField(f Field, value string)
}

// BarDisplay is implemented by displays that draw the progress bar.
type BarDisplay interface {
	SetBar(snapshot progressbar.Snapshot)
}

// Flusher is implemented by displays that render once per refresh after all fields are set.
type Flusher interface {
	Flush() error
}

// OutputSizer reports the rendering backend's actual output buffer size.
type OutputSizer interface {
	OutputSize() (width, height int)
}

// floorSize is the fallback when no OutputSizer is configured.
func floorSize(w, h float64) (int, int) {
	return int(math.Floor(w)), int(math.Floor(h))
}
