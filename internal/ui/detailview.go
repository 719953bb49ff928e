package ui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"rasterscope/internal/colormap"
	"rasterscope/internal/loader"
	"rasterscope/internal/render"
)

// Readout is what the detail panel shows for the cursor position
type Readout struct {
	Lon, Lat  float64
	HasCursor bool
	Value     float64
	Layer     string
	Kind      string
	Zoom      float64
	Preset    colormap.Preset
	// Range is the display range of the layer under the cursor
	RangeMin, RangeMax float64
	HasRange           bool
}

// unit returns the display unit for a dataset kind
func unit(kind string) string {
	if kind == loader.KindLST {
		return "°C"
	}
	return ""
}

// Lines formats the readout rows
func (r Readout) Lines() []string {
	lines := make([]string, 0, 5)
	if r.HasCursor {
		lines = append(lines,
			fmt.Sprintf("Lon:   %9.4f°", r.Lon),
			fmt.Sprintf("Lat:   %9.4f°", r.Lat))
	} else {
		lines = append(lines, "Lon:   -", "Lat:   -")
	}

	if math.IsNaN(r.Value) || !r.HasCursor {
		lines = append(lines, "Value: no data")
	} else {
		lines = append(lines, fmt.Sprintf("Value: %.2f%s (%s)", r.Value, unit(r.Kind), r.Layer))
	}
	lines = append(lines, fmt.Sprintf("Zoom:  %.2fx  %s", r.Zoom, r.Preset))
	return lines
}

// DetailView displays the cursor readout and a color legend
type DetailView struct {
	readout       Readout
	x, y          int
	width, height int
}

// NewDetailView creates a new detail view
func NewDetailView(x, y, width, height int) *DetailView {
	return &DetailView{
		readout: Readout{Value: math.NaN()},
		x:       x,
		y:       y,
		width:   width,
		height:  height,
	}
}

// SetReadout sets the values to display
func (d *DetailView) SetReadout(r Readout) {
	d.readout = r
}

// Readout returns the displayed values
func (d *DetailView) Readout() Readout {
	return d.readout
}

// Draw renders the detail view to the screen
func (d *DetailView) Draw(screen tcell.Screen) {
	if d.width < 8 || d.height < 4 {
		return
	}

	panel := render.NewCanvas(d.width, d.height)
	panel.DrawBox(0, 0, d.width, d.height, render.StyleLabel)
	title := " Cursor "
	panel.DrawText((d.width-render.TextWidth(title))/2, 0, title, render.StyleLabel)

	row := 1
	for _, line := range d.readout.Lines() {
		if row >= d.height-2 {
			break
		}
		panel.DrawText(2, row, line, render.StyleLabel)
		row++
	}

	d.drawLegend(panel, d.height-2)

	panel.Blit(screen, d.x, d.y)
}

// drawLegend draws the preset ramp with its range end labels
func (d *DetailView) drawLegend(panel *render.Canvas, row int) {
	r := d.readout
	lo, hi := "", ""
	if r.HasRange {
		lo = fmt.Sprintf("%.1f", r.RangeMin)
		hi = fmt.Sprintf("%.1f", r.RangeMax)
	}

	width := d.width - 4 - render.TextWidth(lo) - render.TextWidth(hi) - 2
	if width < 2 {
		return
	}

	x := 2
	x += panel.DrawText(x, row, lo, render.StyleDim)
	if lo != "" {
		x++
	}
	for i, c := range colormap.Ramp(r.Preset, width) {
		panel.Set(x+i, row, '█', tcell.StyleDefault.Foreground(render.TermColor(c)))
	}
	panel.DrawTextRight(d.width-3, row, hi, render.StyleDim)
}

// UpdateDimensions updates the view dimensions
func (d *DetailView) UpdateDimensions(x, y, width, height int) {
	d.x = x
	d.y = y
	d.width = width
	d.height = height
}
