// Package canvas provides the Fyne widget that shows the composited scene and
// turns mouse input into editor pointer events.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	signcomposer "github.com/menta2k/sign-composer"
	"github.com/menta2k/sign-composer/pkg/interact"
	"github.com/menta2k/sign-composer/pkg/types"
)

// SceneCanvas displays the editor surface scaled to fit, preserving aspect.
type SceneCanvas struct {
	widget.BaseWidget

	editor *signcomposer.Editor
	image  *fynecanvas.Image

	mu      sync.Mutex
	surface types.Size
	pressed bool
}

var (
	_ desktop.Mouseable = (*SceneCanvas)(nil)
	_ desktop.Hoverable = (*SceneCanvas)(nil)
	_ fyne.Draggable    = (*SceneCanvas)(nil)
)

// New creates a canvas bound to ed. The canvas repaints whenever the editor
// reports a change.
func New(ed *signcomposer.Editor) *SceneCanvas {
	img := fynecanvas.NewImageFromImage(nil)
	img.FillMode = fynecanvas.ImageFillContain
	img.ScaleMode = fynecanvas.ImageScaleSmooth

	sc := &SceneCanvas{editor: ed, image: img}
	sc.ExtendBaseWidget(sc)
	ed.OnChange(sc.setSurface)
	sc.setSurface(ed.Render())
	return sc
}

func (sc *SceneCanvas) setSurface(surface *image.RGBA) {
	sc.mu.Lock()
	if surface == nil {
		sc.surface = types.Size{}
	} else {
		b := surface.Bounds()
		sc.surface = types.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	}
	sc.mu.Unlock()

	if surface == nil {
		sc.image.Image = nil
	} else {
		sc.image.Image = surface
	}
	sc.image.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (sc *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sc.image)
}

// MinSize keeps a usable drop area before a document is loaded.
func (sc *SceneCanvas) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// DisplayRect returns where the surface is drawn inside the widget.
func (sc *SceneCanvas) DisplayRect() types.Rect {
	sc.mu.Lock()
	surface := sc.surface
	sc.mu.Unlock()
	size := sc.Size()
	return FitRect(types.Size{W: float64(size.Width), H: float64(size.Height)}, surface)
}

// FitRect centres surface inside area at the largest scale that fits both
// axes. A zero surface yields a zero rect.
func FitRect(area, surface types.Size) types.Rect {
	if surface.W <= 0 || surface.H <= 0 || area.W <= 0 || area.H <= 0 {
		return types.Rect{}
	}
	scale := min(area.W/surface.W, area.H/surface.H)
	w, h := surface.W*scale, surface.H*scale
	return types.Rect{X: (area.W - w) / 2, Y: (area.H - h) / 2, W: w, H: h}
}

func (sc *SceneCanvas) send(phase interact.Phase, pos fyne.Position) {
	display := sc.DisplayRect()
	if display.W == 0 {
		return
	}
	ev := interact.Event{Phase: phase, Point: types.Point{X: float64(pos.X), Y: float64(pos.Y)}}
	sc.editor.HandlePointer(ev, display)
}

func (sc *SceneCanvas) end() {
	sc.mu.Lock()
	was := sc.pressed
	sc.pressed = false
	sc.mu.Unlock()
	if was {
		sc.send(interact.PhaseEnd, fyne.Position{})
	}
}

// MouseDown starts a drag on the overlay under the pointer.
func (sc *SceneCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	sc.mu.Lock()
	sc.pressed = true
	sc.mu.Unlock()
	sc.send(interact.PhaseStart, ev.Position)
}

// MouseUp ends the drag.
func (sc *SceneCanvas) MouseUp(*desktop.MouseEvent) {
	sc.end()
}

// Dragged moves the selected overlay while the primary button is held.
func (sc *SceneCanvas) Dragged(ev *fyne.DragEvent) {
	sc.mu.Lock()
	pressed := sc.pressed
	sc.mu.Unlock()
	if pressed {
		sc.send(interact.PhaseMove, ev.Position)
	}
}

// DragEnd ends the drag.
func (sc *SceneCanvas) DragEnd() {
	sc.end()
}

// MouseIn implements desktop.Hoverable.
func (sc *SceneCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (sc *SceneCanvas) MouseMoved(ev *desktop.MouseEvent) {
	sc.mu.Lock()
	pressed := sc.pressed
	sc.mu.Unlock()
	if pressed {
		sc.send(interact.PhaseMove, ev.Position)
	}
}

// MouseOut ends any drag; leaving the canvas releases the overlay.
func (sc *SceneCanvas) MouseOut() {
	sc.end()
}
