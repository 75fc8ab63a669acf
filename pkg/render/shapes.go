package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/menta2k/sign-composer/pkg/types"
)

const circleSegments = 64

// strokeRect fills the ring between outer and inner, snapped to whole pixels.
func strokeRect(dst *image.RGBA, outer, inner types.Rect, c color.NRGBA) {
	o := snap(outer)
	i := snap(inner)
	if i.Empty() {
		fillRect(dst, o, c)
		return
	}
	fillRect(dst, image.Rect(o.Min.X, o.Min.Y, o.Max.X, i.Min.Y), c)
	fillRect(dst, image.Rect(o.Min.X, i.Max.Y, o.Max.X, o.Max.Y), c)
	fillRect(dst, image.Rect(o.Min.X, i.Min.Y, i.Min.X, i.Max.Y), c)
	fillRect(dst, image.Rect(i.Max.X, i.Min.Y, o.Max.X, i.Max.Y), c)
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func snap(r types.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)),
		int(math.Round(r.Y+r.H)),
	)
}

// paintMarker draws a translucent disc with a dashed outline centred on c.
func (r *Renderer) paintMarker(dst *image.RGBA, c types.Point) {
	radius := r.opts.MarkerRadius
	reach := radius + r.opts.MarkerStroke
	area := image.Rect(
		int(math.Floor(c.X-reach))-1,
		int(math.Floor(c.Y-reach))-1,
		int(math.Ceil(c.X+reach))+1,
		int(math.Ceil(c.Y+reach))+1,
	)
	if !area.Overlaps(dst.Bounds()) {
		return
	}
	cx := float32(c.X - float64(area.Min.X))
	cy := float32(c.Y - float64(area.Min.Y))

	z := vector.NewRasterizer(area.Dx(), area.Dy())
	addArc(z, cx, cy, radius, 0, 2*math.Pi, true)
	z.ClosePath()
	fillMask(dst, area, z, r.opts.MarkerFill)

	z.Reset(area.Dx(), area.Dy())
	if r.addDashes(z, cx, cy) {
		fillMask(dst, area, z, r.opts.MarkerOutline)
	}
}

// fillMask paints c through the coverage accumulated in z. The rasterizer
// writes into its own mask first so that draw.DrawMask can clip area against
// the surface.
func fillMask(dst *image.RGBA, area image.Rectangle, z *vector.Rasterizer, c color.NRGBA) {
	mask := image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, area, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// addDashes adds one ring sector per dash along the circle, alternating
// DashLength on and DashLength off starting at angle zero.
func (r *Renderer) addDashes(z *vector.Rasterizer, cx, cy float32) bool {
	radius := r.opts.MarkerRadius
	half := r.opts.MarkerStroke / 2
	if half <= 0 || radius <= 0 {
		return false
	}
	dash := r.opts.DashLength
	circumference := 2 * math.Pi * radius
	if dash <= 0 {
		dash = circumference
	}

	added := false
	for s := 0.0; s < circumference; s += 2 * dash {
		e := math.Min(s+dash, circumference)
		a0, a1 := s/radius, e/radius
		addArc(z, cx, cy, radius+half, a0, a1, true)
		addArc(z, cx, cy, radius-half, a1, a0, false)
		z.ClosePath()
		added = true
	}
	return added
}

// addArc appends an arc from angle a0 to a1. With move set it starts a new
// subpath, otherwise it continues the current one.
func addArc(z *vector.Rasterizer, cx, cy float32, radius, a0, a1 float64, move bool) {
	steps := int(math.Ceil(math.Abs(a1-a0) / (2 * math.Pi) * circleSegments))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(steps)
		x := cx + float32(radius*math.Cos(a))
		y := cy + float32(radius*math.Sin(a))
		if i == 0 && move {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
}
