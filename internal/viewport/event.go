package viewport

import (
	"rasterscope/internal/geo"
)

// EventKind identifies the interaction that produced an Event
type EventKind int

const (
	EventWheel EventKind = iota
	EventPress
	EventMove
	EventRelease
	EventResize
)

// Button identifies a pointer button
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// Event is a host pointer or window event, already converted to screen
// pixels.
type Event struct {
	Kind  EventKind
	Point geo.Point
	// WheelDelta is positive when scrolling forward (zoom in)
	WheelDelta float64
	Button     Button
	// Width and Height carry the new viewport size for EventResize
	Width  float64
	Height float64
}

// Handle applies an event to the view state and reports whether the view
// changed and needs a repaint. Only the primary button drags.
func (t *Transform) Handle(ev Event) bool {
	switch ev.Kind {
	case EventWheel:
		return t.ZoomAt(ev.Point, ev.WheelDelta)

	case EventPress:
		if ev.Button == ButtonPrimary {
			t.PanBegin(ev.Point, ev.Button)
		}
		return false

	case EventMove:
		return t.PanMove(ev.Point)

	case EventRelease:
		t.PanEnd(ev.Button)
		return false

	case EventResize:
		t.SetViewportSize(ev.Width, ev.Height)
		return true
	}
	return false
}
