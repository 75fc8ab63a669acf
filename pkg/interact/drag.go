package interact

import (
	"log/slog"

	"github.com/menta2k/sign-composer/pkg/scene"
	"github.com/menta2k/sign-composer/pkg/types"
)

// State is the drag controller state.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Target is the part of the scene the drag controller edits.
type Target interface {
	Overlays() []scene.Overlay
	SetSelected(id string) bool
	Selected() (string, bool)
	UpdateOverlayPosition(id string, dx, dy float64)
}

// DragController runs the select-and-drag state machine over scene-space points.
type DragController struct {
	target Target
	logger *slog.Logger
	state  State
	anchor types.Point
}

// NewDragController returns an idle controller editing target.
func NewDragController(target Target, logger *slog.Logger) *DragController {
	if logger == nil {
		logger = slog.Default()
	}
	return &DragController{target: target, logger: logger}
}

// State returns the current state.
func (c *DragController) State() State {
	return c.state
}

// Anchor returns the last pointer position of an active drag.
func (c *DragController) Anchor() (types.Point, bool) {
	return c.anchor, c.state == StateDragging
}

// Start selects the topmost overlay under p (or clears the selection) and
// begins dragging it when one was hit. A Start while already dragging is
// treated as a fresh press.
func (c *DragController) Start(p types.Point) (string, bool) {
	id, hit := HitTest(p, c.target.Overlays())
	c.target.SetSelected(id)
	if !hit {
		c.reset()
		return "", false
	}
	c.transition(StateDragging)
	c.anchor = p
	return id, true
}

// Move translates the selected overlay by the distance since the previous
// point and makes p the new anchor. It reports whether anything moved.
func (c *DragController) Move(p types.Point) bool {
	if c.state != StateDragging {
		return false
	}
	id, ok := c.target.Selected()
	if !ok {
		c.reset()
		return false
	}
	d := p.Sub(c.anchor)
	c.target.UpdateOverlayPosition(id, d.X, d.Y)
	c.anchor = p
	return d.X != 0 || d.Y != 0
}

// End finishes the drag without touching the scene.
func (c *DragController) End() {
	c.reset()
}

// Handle dispatches a scene-space event and reports whether the scene changed.
func (c *DragController) Handle(phase Phase, p types.Point) bool {
	switch phase {
	case PhaseStart:
		c.Start(p)
		return true
	case PhaseMove:
		return c.Move(p)
	case PhaseEnd:
		c.End()
	}
	return false
}

func (c *DragController) reset() {
	c.anchor = types.Point{}
	c.transition(StateIdle)
}

func (c *DragController) transition(next State) {
	if c.state == next {
		return
	}
	c.logger.Debug("drag state", slog.String("from", c.state.String()), slog.String("to", next.String()))
	c.state = next
}
