// Package interact turns pointer and touch input into scene edits: mapping
// device coordinates into scene space, topmost-first hit testing and the drag
// lifecycle that moves the selected overlay.
package interact

import (
	"github.com/menta2k/sign-composer/pkg/scene"
	"github.com/menta2k/sign-composer/pkg/types"
)

// Phase is the stage of a pointer gesture.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a pointer or touch event reduced to a phase and one raw device point.
type Event struct {
	Phase Phase
	Point types.Point
}

// FromTouches reduces a touch event to an Event using the first active touch.
// End events carry no touches; they are always accepted.
func FromTouches(phase Phase, touches []types.Point) (Event, bool) {
	if phase == PhaseEnd {
		return Event{Phase: PhaseEnd}, true
	}
	if len(touches) == 0 {
		return Event{}, false
	}
	return Event{Phase: phase, Point: touches[0]}, true
}

// PointerToScene maps a device point into scene pixel space. display is where
// the rendered surface is shown in device coordinates and surface is its
// native pixel size; each axis is scaled independently.
func PointerToScene(raw types.Point, display types.Rect, surface types.Size) types.Point {
	scaleX, scaleY := 1.0, 1.0
	if display.W > 0 {
		scaleX = surface.W / display.W
	}
	if display.H > 0 {
		scaleY = surface.H / display.H
	}
	return types.Point{
		X: (raw.X - display.X) * scaleX,
		Y: (raw.Y - display.Y) * scaleY,
	}
}

// HitTest returns the id of the topmost overlay whose box contains p.
// Overlays are given in paint order, so the search runs from last to first.
func HitTest(p types.Point, overlays []scene.Overlay) (string, bool) {
	for i := len(overlays) - 1; i >= 0; i-- {
		if overlays[i].Box().Contains(p) {
			return overlays[i].ID, true
		}
	}
	return "", false
}
