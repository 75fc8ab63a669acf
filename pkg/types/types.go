package types

import "math"

// PlacementScale is the extent of the normalized placement space on each axis.
// Suggested placements live in [0, PlacementScale]².
const PlacementScale = 1000.0

// Point is a 2D coordinate. Depending on context it is in device space,
// scene (base-image pixel) space or normalized placement space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the delta from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Rect is an axis-aligned box with its top-left corner at (X, Y).
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Contains reports whether p lies inside r. Bounds are inclusive on all sides.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Inset shrinks r by d on every side; a negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Size returns the dimensions of r.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// AnalysisResult is what the document analysis service returns: a short
// description and suggested signature locations in normalized placement space.
type AnalysisResult struct {
	Description         string  `json:"description"`
	SuggestedPlacements []Point `json:"suggestedPlacements"`
}

// HasPlacements reports whether any placement was suggested.
func (r *AnalysisResult) HasPlacements() bool {
	return r != nil && len(r.SuggestedPlacements) > 0
}

// ValidPlacement reports whether p is finite and inside the placement space.
func ValidPlacement(p Point) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return false
	}
	return p.X >= 0 && p.X <= PlacementScale && p.Y >= 0 && p.Y <= PlacementScale
}

// PlacementToSurface converts a normalized placement into pixel space of a
// surface with the given dimensions.
func PlacementToSurface(p Point, width, height int) Point {
	return Point{
		X: p.X / PlacementScale * float64(width),
		Y: p.Y / PlacementScale * float64(height),
	}
}
