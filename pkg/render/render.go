// Package render composites a scene into a pixel surface: base image, advisory
// placement markers, then overlays in list order with the selected one outlined.
//
// Rendering is a pure function of the scene. There is no caching; callers
// re-render after every mutation.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/menta2k/sign-composer/pkg/scene"
	"github.com/menta2k/sign-composer/pkg/types"
)

// Source is the read side of a scene.
type Source interface {
	BaseImage() image.Image
	Overlays() []scene.Overlay
	Selected() (string, bool)
	Advisory() *types.AnalysisResult
}

// Options controls marker and highlight geometry and colours.
type Options struct {
	MarkerRadius    float64
	MarkerStroke    float64
	DashLength      float64
	MarkerFill      color.NRGBA
	MarkerOutline   color.NRGBA
	HighlightWidth  float64
	HighlightMargin float64
	HighlightColor  color.NRGBA
}

// DefaultOptions returns the standard look: a 12px translucent blue marker with
// a 2px dashed outline and a 4px blue outline 2px outside the selected overlay.
func DefaultOptions() Options {
	return Options{
		MarkerRadius:    12,
		MarkerStroke:    2,
		DashLength:      5,
		MarkerFill:      color.NRGBA{59, 130, 246, 51},
		MarkerOutline:   color.NRGBA{59, 130, 246, 255},
		HighlightWidth:  4,
		HighlightMargin: 2,
		HighlightColor:  color.NRGBA{59, 130, 246, 255},
	}
}

// Renderer paints scenes.
type Renderer struct {
	opts Options
}

// New returns a Renderer with default options.
func New() *Renderer {
	return &Renderer{opts: DefaultOptions()}
}

// NewWithOptions returns a Renderer with custom options.
func NewWithOptions(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Options returns the renderer options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render composites src into a new surface the size of the base image.
// It returns nil when no base image is set.
func (r *Renderer) Render(src Source) *image.RGBA {
	base := src.BaseImage()
	if base == nil {
		return nil
	}
	bb := base.Bounds()
	surface := image.NewRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))

	draw.Draw(surface, surface.Bounds(), base, bb.Min, draw.Over)

	if adv := src.Advisory(); adv.HasPlacements() {
		for _, p := range adv.SuggestedPlacements {
			c := types.PlacementToSurface(p, bb.Dx(), bb.Dy())
			r.paintMarker(surface, c)
		}
	}

	selected, hasSelection := src.Selected()
	for _, ov := range src.Overlays() {
		if hasSelection && ov.ID == selected {
			r.paintHighlight(surface, ov.Box())
		}
		paintOverlay(surface, ov)
	}

	return surface
}

// paintHighlight strokes the box grown by the highlight margin. The stroke is
// centred on that outline.
func (r *Renderer) paintHighlight(dst *image.RGBA, box types.Rect) {
	outline := box.Inset(-r.opts.HighlightMargin)
	half := r.opts.HighlightWidth / 2
	outer := outline.Inset(-half)
	if !onSurface(outer, dst.Bounds()) {
		return
	}
	strokeRect(dst, outer, outline.Inset(half), r.opts.HighlightColor)
}

func paintOverlay(dst *image.RGBA, ov scene.Overlay) {
	if ov.Image == nil {
		return
	}
	if !onSurface(ov.Box(), dst.Bounds()) {
		return
	}
	sb := ov.Image.Bounds()
	if ov.Scale == 1 && isWhole(ov.X) && isWhole(ov.Y) {
		dp := image.Pt(int(ov.X), int(ov.Y))
		draw.Draw(dst, sb.Sub(sb.Min).Add(dp), ov.Image, sb.Min, draw.Over)
		return
	}
	s2d := f64.Aff3{
		ov.Scale, 0, ov.X - ov.Scale*float64(sb.Min.X),
		0, ov.Scale, ov.Y - ov.Scale*float64(sb.Min.Y),
	}
	xdraw.BiLinear.Transform(dst, s2d, ov.Image, sb, xdraw.Over, nil)
}

// onSurface reports whether box is finite and overlaps b. Overlays that pass
// have coordinates within a few surface widths of the origin.
func onSurface(box types.Rect, b image.Rectangle) bool {
	for _, v := range []float64{box.X, box.Y, box.W, box.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return box.X < float64(b.Max.X) && box.X+box.W > float64(b.Min.X) &&
		box.Y < float64(b.Max.Y) && box.Y+box.H > float64(b.Min.Y)
}

func isWhole(v float64) bool {
	return v == math.Trunc(v) && !math.IsInf(v, 0)
}
