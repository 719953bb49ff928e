package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"rasterscope/internal/render"
)

// LayerState tracks an opened file through loading
type LayerState int

const (
	LayerLoading LayerState = iota
	LayerReady
	LayerFailed
)

// LayerEntry is one row of the layer list
type LayerEntry struct {
	Name    string
	Path    string
	State   LayerState
	Err     error
	Index   int // position in raster.Layers once ready
	Visible bool
}

// Display returns the list row text
func (e LayerEntry) Display() string {
	switch e.State {
	case LayerLoading:
		return fmt.Sprintf("... %s (loading)", e.Name)
	case LayerFailed:
		return fmt.Sprintf("[!] %s (failed)", e.Name)
	}
	if e.Visible {
		return "[x] " + e.Name
	}
	return "[ ] " + e.Name
}

// ListView displays a scrollable list of layers
type ListView struct {
	entries       []LayerEntry
	selectedIndex int
	scrollOffset  int
	maxVisible    int
	x, y          int
	width, height int
}

// NewListView creates a new layer list view
func NewListView(x, y, width, height int) *ListView {
	l := &ListView{}
	l.UpdateDimensions(x, y, width, height)
	return l
}

// Update refreshes the layer list
func (l *ListView) Update(entries []LayerEntry) {
	l.entries = entries

	if l.selectedIndex >= len(l.entries) {
		l.selectedIndex = len(l.entries) - 1
	}
	if l.selectedIndex < 0 {
		l.selectedIndex = 0
	}

	l.adjustScroll()
}

// SelectNext moves selection down
func (l *ListView) SelectNext() {
	if l.selectedIndex < len(l.entries)-1 {
		l.selectedIndex++
		l.adjustScroll()
	}
}

// SelectPrev moves selection up
func (l *ListView) SelectPrev() {
	if l.selectedIndex > 0 {
		l.selectedIndex--
		l.adjustScroll()
	}
}

// adjustScroll adjusts scroll offset to keep selected item visible
func (l *ListView) adjustScroll() {
	if l.selectedIndex >= l.scrollOffset+l.maxVisible {
		l.scrollOffset = l.selectedIndex - l.maxVisible + 1
	}

	if l.selectedIndex < l.scrollOffset {
		l.scrollOffset = l.selectedIndex
	}

	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

// Selected returns the index of the selected entry, or -1 when the list
// is empty.
func (l *ListView) Selected() int {
	if l.selectedIndex >= 0 && l.selectedIndex < len(l.entries) {
		return l.selectedIndex
	}
	return -1
}

// Draw renders the list view to the screen
func (l *ListView) Draw(screen tcell.Screen) {
	if l.width < 4 || l.height < 3 {
		return
	}

	panel := render.NewCanvas(l.width, l.height)
	panel.DrawBox(0, 0, l.width, l.height, render.StyleLabel)

	title := fmt.Sprintf(" Layers (%d) ", len(l.entries))
	panel.DrawText((l.width-render.TextWidth(title))/2, 0, title, render.StyleLabel)

	if len(l.entries) == 0 {
		panel.DrawText(2, 1, "no layers", render.StyleDim)
	}

	visibleCount := min(l.maxVisible, len(l.entries)-l.scrollOffset)
	for i := 0; i < visibleCount; i++ {
		idx := l.scrollOffset + i
		entry := l.entries[idx]

		style := render.StyleListItem
		switch {
		case idx == l.selectedIndex:
			style = render.StyleListSelected
		case entry.State == LayerFailed:
			style = render.StyleError
		case entry.State == LayerLoading || !entry.Visible:
			style = render.StyleDim
		}

		row := i + 1
		panel.FillRect(1, row, l.width-2, 1, ' ', style)
		text := []rune(entry.Display())
		if len(text) > l.width-2 {
			text = append(text[:l.width-3], '…')
		}
		panel.DrawText(1, row, string(text), style)
	}

	if len(l.entries) > l.maxVisible {
		panel.Set(l.width-2, 0, '↕', render.StyleLabel)
	}

	panel.Blit(screen, l.x, l.y)
}

// UpdateDimensions updates the view dimensions
func (l *ListView) UpdateDimensions(x, y, width, height int) {
	l.x = x
	l.y = y
	l.width = width
	l.height = height
	l.maxVisible = max(1, height-2)
	l.adjustScroll()
}
