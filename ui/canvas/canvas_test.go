package canvas

import (
	"testing"

	"github.com/menta2k/sign-composer/pkg/types"
)

func TestFitRect(t *testing.T) {
	tests := []struct {
		name    string
		area    types.Size
		surface types.Size
		want    types.Rect
	}{
		{"same aspect", types.Size{W: 400, H: 300}, types.Size{W: 800, H: 600}, types.Rect{X: 0, Y: 0, W: 400, H: 300}},
		{"letterbox", types.Size{W: 400, H: 400}, types.Size{W: 800, H: 400}, types.Rect{X: 0, Y: 100, W: 400, H: 200}},
		{"pillarbox", types.Size{W: 400, H: 200}, types.Size{W: 100, H: 100}, types.Rect{X: 100, Y: 0, W: 200, H: 200}},
		{"no surface", types.Size{W: 400, H: 200}, types.Size{}, types.Rect{}},
		{"no area", types.Size{}, types.Size{W: 100, H: 100}, types.Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRect(tt.area, tt.surface); got != tt.want {
				t.Errorf("FitRect(%v, %v) = %v, want %v", tt.area, tt.surface, got, tt.want)
			}
		})
	}
}
