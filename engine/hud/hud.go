// Package hud holds the readout displays: a panel drawn into the window over the scene, a
// console panel, and the window title.
package hud

import (
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

var fontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// fieldSet is the slot table shared by the displays. Values are kept until overwritten.
type fieldSet struct {
	slots  []readout.Field
	values map[readout.Field]string
}

func newFieldSet(fields ...readout.Field) fieldSet {
	return fieldSet{
		slots:  fields,
		values: make(map[readout.Field]string, len(fields)),
	}
}

func (s *fieldSet) has(f readout.Field) bool {
	for _, slot := range s.slots {
		if slot == f {
			return true
		}
	}
	return false
}

// set stores value and reports whether it changed.
func (s *fieldSet) set(f readout.Field, value string) bool {
	if old, ok := s.values[f]; ok && old == value {
		return false
	}
	s.values[f] = value
	return true
}

// lines groups the slots into "Label: value" rows. A field without a label continues the
// row above it, so the megapixel suffix lands beside its size.
func (s *fieldSet) lines() []string {
	var rows []string
	var b strings.Builder
	for _, f := range s.slots {
		v, ok := s.values[f]
		if !ok {
			continue
		}
		if label := f.Label(); label != "" {
			if b.Len() > 0 {
				rows = append(rows, b.String())
				b.Reset()
			}
			b.WriteString(label)
			b.WriteString(": ")
		}
		b.WriteString(v)
	}
	if b.Len() > 0 {
		rows = append(rows, b.String())
	}
	return rows
}
