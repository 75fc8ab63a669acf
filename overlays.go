package signcomposer

import (
	"fmt"
	"math"
)

// OverlayItem describes one overlay for a list view.
type OverlayItem struct {
	ID       string
	Label    string
	Name     string
	X, Y     float64
	Scale    float64
	Width    int
	Height   int
	Selected bool
}

// Overlays lists overlays in paint order, labelled "Signature #1", "#2", ...
func (e *Editor) Overlays() []OverlayItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	selected, _ := e.scene.Selected()
	overlays := e.scene.Overlays()
	items := make([]OverlayItem, len(overlays))
	for i, ov := range overlays {
		items[i] = OverlayItem{
			ID:       ov.ID,
			Label:    fmt.Sprintf("Signature #%d", i+1),
			Name:     ov.Name,
			X:        ov.X,
			Y:        ov.Y,
			Scale:    ov.Scale,
			Width:    ov.Width(),
			Height:   ov.Height(),
			Selected: ov.ID == selected,
		}
	}
	return items
}

// ScalePercent formats a scale factor as a whole percentage.
func ScalePercent(scale float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(scale*100)))
}
