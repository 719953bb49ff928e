package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"rasterscope/internal/layout"
)

// gridChar returns the glyph for a line of the given axis drawn over an
// existing cell, joining crossings.
func gridChar(axis layout.Axis, existing rune) rune {
	switch {
	case axis == layout.Meridian && existing == '─', axis == layout.Parallel && existing == '│', existing == '┼':
		return '┼'
	case axis == layout.Meridian:
		return '│'
	default:
		return '─'
	}
}

// clampCell limits a virtual pixel coordinate to the canvas, in cells
func clampCell(v float64, n int) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(-1, math.Min(float64(n), math.Floor(v))))
}

// RenderGrid draws the graticule lines, blended over the raster
func (m *MapRenderer) RenderGrid(g layout.Grid) {
	if g.Suppressed {
		return
	}

	w, h := m.canvas.Width(), m.canvas.Height()
	for _, line := range g.Lines {
		x0 := clampCell(line.From.X, w)
		x1 := clampCell(line.To.X, w)
		y0 := clampCell(line.From.Y/m.aspect, h)
		y1 := clampCell(line.To.Y/m.aspect, h)

		m.DrawLine(x0, y0, x1, y1, func(x, y int) {
			if x < 0 || x >= w || y < 0 || y >= h {
				return
			}
			under := m.CellColor(x, y)
			style := tcell.StyleDefault.Foreground(TermColor(Blend(under, GridColor, gridAlpha)))
			if under.A > 0 {
				style = style.Background(TermColor(under))
			}
			m.canvas.Set(x, y, gridChar(line.Axis, m.canvas.Get(x, y).Char), style)
		})
	}
}

// RenderFrame draws the map border and the grid labels along it. Labels
// that would overlap their neighbor are skipped.
func (m *MapRenderer) RenderFrame(g layout.Grid) {
	w, h := m.canvas.Width(), m.canvas.Height()
	m.canvas.DrawBox(0, 0, w, h, StyleFrame)
	if g.Suppressed || w < 4 || h < 3 {
		return
	}

	// Meridian ticks arrive west to east, parallel ticks south to north.
	nextCol := map[layout.Edge]int{}
	lastRow := map[layout.Edge]int{layout.EdgeLeft: -1, layout.EdgeRight: -1}
	for _, t := range g.Ticks {
		label := t.Label
		width := TextWidth(label)

		switch t.Edge {
		case layout.EdgeTop, layout.EdgeBottom:
			x := int(math.Floor(t.Pos.X)) - width/2
			x = max(1, min(x, w-1-width))
			if x < nextCol[t.Edge] {
				continue
			}
			y := 0
			if t.Edge == layout.EdgeBottom {
				y = h - 1
			}
			m.canvas.DrawText(x, y, label, StyleTick)
			nextCol[t.Edge] = x + width + 1

		case layout.EdgeLeft, layout.EdgeRight:
			y := int(math.Floor(t.Pos.Y / m.aspect))
			if y <= 0 || y >= h-1 || y == lastRow[t.Edge] {
				continue
			}
			if t.Edge == layout.EdgeLeft {
				m.canvas.DrawText(0, y, label, StyleTick)
			} else {
				m.canvas.DrawTextRight(w-1, y, label, StyleTick)
			}
			lastRow[t.Edge] = y
		}
	}
}

// RenderScaleBar draws the distance bar on the row through its middle
// with the label above its right end.
func (m *MapRenderer) RenderScaleBar(bar layout.ScaleBar) {
	if !bar.Visible {
		return
	}

	y := int(math.Floor((bar.Rect.Y + bar.Rect.H/2) / m.aspect))
	for i, half := range bar.Halves {
		style := StyleScaleLight
		char := '█'
		if i == 1 {
			style = StyleScaleDark
			char = '▒'
		}
		x0 := int(math.Floor(half.X))
		x1 := int(math.Floor(half.Right()))
		for x := x0; x < x1; x++ {
			m.canvas.Set(x, y, char, style)
		}
	}

	right := int(math.Floor(bar.Rect.Right())) - 1
	m.canvas.DrawTextRight(right, y-1, bar.Label, StyleScaleLabel)
}
