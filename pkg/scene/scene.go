// Package scene holds the editing state for one document: the base image, the
// ordered overlay list, the current selection and advisory placement data.
//
// Scene has no I/O and no locking. Callers mutate it from a single logical
// thread and re-render after every mutation.
package scene

import (
	"errors"
	"image"
	"math"

	"github.com/google/uuid"

	"github.com/menta2k/sign-composer/pkg/types"
)

// Defaults applied to a newly added overlay and the allowed scale range.
const (
	DefaultX     = 50.0
	DefaultY     = 50.0
	DefaultScale = 1.0
	MinScale     = 0.1
	MaxScale     = 2.5
)

// ErrNoBaseImage is returned when an overlay is added before a base image is set.
var ErrNoBaseImage = errors.New("scene: no base image set")

// Overlay is an image composited on top of the base image.
type Overlay struct {
	ID    string
	Image image.Image
	X     float64
	Y     float64
	Scale float64
	Name  string
}

// Width returns the unscaled pixel width of the overlay image.
func (o Overlay) Width() int {
	if o.Image == nil {
		return 0
	}
	return o.Image.Bounds().Dx()
}

// Height returns the unscaled pixel height of the overlay image.
func (o Overlay) Height() int {
	if o.Image == nil {
		return 0
	}
	return o.Image.Bounds().Dy()
}

// Box returns the rendered box of the overlay in base-image pixel space.
func (o Overlay) Box() types.Rect {
	return types.Rect{
		X: o.X,
		Y: o.Y,
		W: float64(o.Width()) * o.Scale,
		H: float64(o.Height()) * o.Scale,
	}
}

// Scene is the mutable model for a single editing session.
type Scene struct {
	base       image.Image
	generation uint64
	overlays   []*Overlay
	selected   string
	advisory   *types.AnalysisResult
	newID      func() string
	place      Placement
}

// Placement holds the position and scale given to new overlays and the
// allowed scale range.
type Placement struct {
	X, Y     float64
	Scale    float64
	MinScale float64
	MaxScale float64
}

// DefaultPlacement returns the standard placement defaults.
func DefaultPlacement() Placement {
	return Placement{X: DefaultX, Y: DefaultY, Scale: DefaultScale, MinScale: MinScale, MaxScale: MaxScale}
}

func (p Placement) clamp(scale float64) float64 {
	return math.Max(p.MinScale, math.Min(p.MaxScale, scale))
}

// Option configures a Scene.
type Option func(*Scene)

// WithIDGenerator replaces the overlay id generator. The generator must never
// return the same value twice for one Scene.
func WithIDGenerator(gen func() string) Option {
	return func(s *Scene) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithPlacement replaces the placement defaults. A range with MinScale <= 0
// or MaxScale < MinScale is ignored.
func WithPlacement(p Placement) Option {
	return func(s *Scene) {
		if p.MinScale > 0 && p.MaxScale >= p.MinScale {
			p.Scale = p.clamp(p.Scale)
			s.place = p
		}
	}
}

// New returns an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{newID: uuid.NewString, place: DefaultPlacement()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetBaseImage replaces the base image and drops everything tied to the
// previous one: overlays, selection and advisory data.
func (s *Scene) SetBaseImage(img image.Image) {
	s.base = img
	s.generation++
	s.overlays = nil
	s.selected = ""
	s.advisory = nil
}

// BaseImage returns the current base image or nil.
func (s *Scene) BaseImage() image.Image {
	return s.base
}

// HasBaseImage reports whether a base image is set.
func (s *Scene) HasBaseImage() bool {
	return s.base != nil
}

// Generation identifies the current base image. It changes on every
// SetBaseImage call and is used to recognise stale analysis results.
func (s *Scene) Generation() uint64 {
	return s.generation
}

// AddOverlay appends a new overlay at the default position and scale and
// selects it. Without a base image it does nothing and returns ErrNoBaseImage.
func (s *Scene) AddOverlay(img image.Image, name string) (string, error) {
	if s.base == nil {
		return "", ErrNoBaseImage
	}

	id := s.newID()
	for s.index(id) >= 0 {
		id = s.newID()
	}

	s.overlays = append(s.overlays, &Overlay{
		ID:    id,
		Image: img,
		X:     s.place.X,
		Y:     s.place.Y,
		Scale: s.place.Scale,
		Name:  name,
	})
	s.selected = id
	return id, nil
}

// RemoveOverlay deletes the overlay with the given id. Removing the selected
// overlay clears the selection. Unknown ids are ignored.
func (s *Scene) RemoveOverlay(id string) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
}

// SetSelected selects the overlay with the given id. An empty or unknown id
// clears the selection, so a selected id always refers to a live overlay.
// It reports whether an overlay is selected afterwards.
func (s *Scene) SetSelected(id string) bool {
	if id == "" || s.index(id) < 0 {
		s.selected = ""
		return false
	}
	s.selected = id
	return true
}

// ClearSelection deselects any overlay.
func (s *Scene) ClearSelection() {
	s.selected = ""
}

// Selected returns the selected overlay id, if any.
func (s *Scene) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// UpdateOverlayPosition translates the overlay by (dx, dy). Unknown ids are ignored.
func (s *Scene) UpdateOverlayPosition(id string, dx, dy float64) {
	if o := s.find(id); o != nil {
		o.X += dx
		o.Y += dy
	}
}

// SetOverlayScale sets the overlay scale clamped to the scene's scale range,
// [MinScale, MaxScale] by default. Unknown ids and NaN scales are ignored.
func (s *Scene) SetOverlayScale(id string, scale float64) {
	if math.IsNaN(scale) {
		return
	}
	if o := s.find(id); o != nil {
		o.Scale = s.place.clamp(scale)
	}
}

// Overlay returns a copy of the overlay with the given id.
func (s *Scene) Overlay(id string) (Overlay, bool) {
	if o := s.find(id); o != nil {
		return *o, true
	}
	return Overlay{}, false
}

// Overlays returns copies of all overlays in paint order (bottom first).
func (s *Scene) Overlays() []Overlay {
	out := make([]Overlay, len(s.overlays))
	for i, o := range s.overlays {
		out[i] = *o
	}
	return out
}

// Len returns the number of overlays.
func (s *Scene) Len() int {
	return len(s.overlays)
}

// Advisory returns the advisory placement data for the current base image, or nil.
func (s *Scene) Advisory() *types.AnalysisResult {
	return s.advisory
}

// SetAdvisory stores an analysis result produced for the base image of the
// given generation. Results for an older base image are discarded and false
// is returned.
func (s *Scene) SetAdvisory(generation uint64, result types.AnalysisResult) bool {
	if s.base == nil || generation != s.generation {
		return false
	}
	placements := make([]types.Point, len(result.SuggestedPlacements))
	copy(placements, result.SuggestedPlacements)
	s.advisory = &types.AnalysisResult{
		Description:         result.Description,
		SuggestedPlacements: placements,
	}
	return true
}

// ClampScale limits scale to the default overlay scale range.
func ClampScale(scale float64) float64 {
	return DefaultPlacement().clamp(scale)
}

// ScaleRange returns the allowed overlay scale range.
func (s *Scene) ScaleRange() (min, max float64) {
	return s.place.MinScale, s.place.MaxScale
}

func (s *Scene) index(id string) int {
	for i, o := range s.overlays {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) find(id string) *Overlay {
	if i := s.index(id); i >= 0 {
		return s.overlays[i]
	}
	return nil
}
