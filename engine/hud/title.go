package hud

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout"
)

// TitleSetter is anything with a title bar, usually the window.
type TitleSetter interface {
	SetTitle(title string)
}

// title writes a one-line summary into the window title. It only has slots for the DPR and the
// window and renderer sizes unless configured otherwise.
type title struct {
	target TitleSetter
	base   string
	fields fieldSet
	last   string
}

// NewTitle creates a readout display that rewrites the window title on every refresh.
//
// Parameters:
//   - target: the title bar to write
//   - base: the fixed prefix, normally the application name
//
// Returns:
//   - readout.Display: the title display, which also implements readout.Flusher
func NewTitle(target TitleSetter, base string) readout.Display {
	return &title{
		target: target,
		base:   base,
		fields: newFieldSet(readout.FieldDPR, readout.FieldWindowSize, readout.FieldRendererSize),
	}
}

func (t *title) HasField(f readout.Field) bool {
	return t.fields.has(f)
}

func (t *title) SetField(f readout.Field, value string) {
	t.fields.set(f, value)
}

func (t *title) Flush() error {
	parts := t.fields.lines()
	if t.base != "" {
		parts = append([]string{t.base}, parts...)
	}
	s := strings.Join(parts, " | ")
	if s != t.last {
		t.last = s
		t.target.SetTitle(s)
	}
	return nil
}
