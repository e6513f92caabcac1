package hud

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout"
	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	consolePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1)
	consoleRowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	consoleLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	consoleValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
)

// Console is a readout display that prints a styled panel to a terminal whenever its content
// changes.
type Console interface {
	readout.Display
	readout.BarDisplay
	readout.Flusher

	// View renders the current panel without writing it.
	//
	// Returns:
	//   - string: the panel text
	View() string
}

// console is the implementation of the Console interface.
type console struct {
	out      io.Writer
	fields   fieldSet
	bar      *progressbar.Snapshot
	barWidth int
	progress progress.Model
	last     string
}

var _ Console = &console{}

// NewConsole creates a console display.
//
// Parameters:
//   - options: functional options to configure the console
//
// Returns:
//   - Console: the console display
func NewConsole(options ...ConsoleOption) Console {
	c := &console{
		out:      os.Stdout,
		fields:   newFieldSet(readout.AllFields...),
		barWidth: 40,
	}
	for _, opt := range options {
		opt(c)
	}
	c.progress = progress.New(
		progress.WithGradient(progressbar.GradientStart, progressbar.GradientEnd),
		progress.WithWidth(c.barWidth),
		progress.WithoutPercentage(),
	)
	return c
}

func (c *console) HasField(f readout.Field) bool {
	return c.fields.has(f)
}

func (c *console) SetField(f readout.Field, value string) {
	c.fields.set(f, value)
}

func (c *console) SetBar(snapshot progressbar.Snapshot) {
	c.bar = &snapshot
}

func (c *console) Flush() error {
	v := c.View()
	if v == c.last {
		return nil
	}
	c.last = v
	_, err := fmt.Fprintln(c.out, v)
	return err
}

func (c *console) View() string {
	var parts []string
	for _, row := range c.fields.lines() {
		label, value, ok := strings.Cut(row, ": ")
		if !ok {
			parts = append(parts, consoleRowStyle.Render(row))
			continue
		}
		parts = append(parts, consoleLabelStyle.Render(label+":")+" "+consoleValueStyle.Render(value))
	}
	if c.bar != nil {
		parts = append(parts, "", c.progress.ViewAs(c.bar.Fraction), c.markerRow(), c.endRow(), c.legendRow())
	}
	return consolePanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// cell maps a bar percentage to a column.
func (c *console) cell(percent float64) int {
	col := int(math.Round(percent / 100 * float64(c.barWidth-1)))
	return min(max(col, 0), c.barWidth-1)
}

func (c *console) markerRow() string {
	cols := make([]string, c.barWidth)
	for i := range cols {
		cols[i] = " "
	}
	for _, m := range c.bar.Markers {
		cols[c.cell(m.Percent)] = lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Render("▲")
	}
	cols[c.cell(c.bar.IndicatorPercent())] = consoleValueStyle.Render("●")
	return strings.Join(cols, "")
}

func (c *console) endRow() string {
	left, mid, right := c.bar.MinLabel, c.bar.ValueLabel, c.bar.MaxLabel
	gap := c.barWidth - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap < 2 {
		return left + " " + mid + " " + right
	}
	lpad := gap / 2
	return left + strings.Repeat(" ", lpad) + consoleValueStyle.Render(mid) + strings.Repeat(" ", gap-lpad) + right
}

func (c *console) legendRow() string {
	items := make([]string, 0, len(c.bar.Markers))
	for _, m := range c.bar.Markers {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color))
		items = append(items, style.Render(strings.ReplaceAll(m.Label(), "\n", " ")))
	}
	return strings.Join(items, "  ")
}
