// Package signcomposer places signature images on a document image, suggests
// signature areas through an image-understanding service and exports the
// composited result.
//
// The Editor owns one scene and re-renders it after every successful
// mutation. Hosts feed it pointer events and file selections and subscribe
// to re-renders with OnChange:
//
//	ed := signcomposer.New()
//	if err := ed.LoadBaseDocument("contract.pdf", 0, 150); err != nil {
//		log.Fatal(err)
//	}
//	id, err := ed.LoadOverlay("signature.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ed.PlaceOverlay(id, 420, 980)
//	ed.SetOverlayScale(id, 0.6)
//	if err := ed.ExportFile("merged_document.png", export.Options{}); err != nil {
//		log.Fatal(err)
//	}
//
// The package consists of these components:
//
//  1. Scene (pkg/scene): base image, ordered overlays, selection, advisory data
//  2. Interaction (pkg/interact): hit testing and the drag state machine
//  3. Rendering (pkg/render): compositing with markers and the selection outline
//  4. Analysis (pkg/analysis): snapshot, transport and single-flight session
//  5. Export (pkg/export): PNG, WebP and JPEG encoding
package signcomposer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/menta2k/sign-composer/pkg/analysis"
	"github.com/menta2k/sign-composer/pkg/export"
	"github.com/menta2k/sign-composer/pkg/interact"
	"github.com/menta2k/sign-composer/pkg/processing"
	"github.com/menta2k/sign-composer/pkg/render"
	"github.com/menta2k/sign-composer/pkg/scene"
	"github.com/menta2k/sign-composer/pkg/types"
)

// Version of the sign composer library
const Version = "1.0.0"

// ErrNoAnalyzer is returned by Analyze when no analysis backend is configured.
var ErrNoAnalyzer = errors.New("no analysis backend configured")

// Editor is one signing session.
type Editor struct {
	mu        sync.Mutex
	scene     *scene.Scene
	drag      *interact.DragController
	renderer  *render.Renderer
	session   *analysis.Session
	processor *processing.Processor
	logger    *slog.Logger
	closers   []io.Closer
	listeners []func(*image.RGBA)
}

// Option configures an Editor.
type Option func(*editorOptions)

type editorOptions struct {
	logger    *slog.Logger
	renderer  *render.Renderer
	adapter   *analysis.Adapter
	processor *processing.Processor
	sceneOpts []scene.Option
	closers   []io.Closer
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *editorOptions) { o.logger = logger }
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(o *editorOptions) { o.renderer = r }
}

// WithAnalyzer enables document analysis through a.
func WithAnalyzer(a *analysis.Adapter) Option {
	return func(o *editorOptions) { o.adapter = a }
}

// WithProcessor replaces the loader used for files and URLs.
func WithProcessor(p *processing.Processor) Option {
	return func(o *editorOptions) { o.processor = p }
}

// WithSceneOptions passes options to the underlying scene.
func WithSceneOptions(opts ...scene.Option) Option {
	return func(o *editorOptions) { o.sceneOpts = append(o.sceneOpts, opts...) }
}

// WithCloser registers a resource released by Close.
func WithCloser(c io.Closer) Option {
	return func(o *editorOptions) { o.closers = append(o.closers, c) }
}

// New creates an Editor with an empty scene.
func New(opts ...Option) *Editor {
	o := editorOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.renderer == nil {
		o.renderer = render.New()
	}
	if o.processor == nil {
		o.processor = processing.NewProcessor()
	}

	sc := scene.New(o.sceneOpts...)
	e := &Editor{
		scene:     sc,
		drag:      interact.NewDragController(sc, o.logger),
		renderer:  o.renderer,
		processor: o.processor,
		logger:    o.logger,
		closers:   o.closers,
	}
	if o.adapter != nil {
		e.session = analysis.NewSession(o.adapter, o.logger)
	}
	return e
}

// Close releases backend resources.
func (e *Editor) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// OnChange registers fn to receive the new surface after every mutation.
// fn runs on the goroutine that made the change, outside the editor lock.
func (e *Editor) OnChange(fn func(*image.RGBA)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// update runs fn under the lock and, if it reports a change, re-renders and
// notifies listeners.
func (e *Editor) update(fn func() bool) bool {
	e.mu.Lock()
	if !fn() {
		e.mu.Unlock()
		return false
	}
	surface := e.renderer.Render(e.scene)
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l(surface)
	}
	return true
}

// Render composites the current scene. It returns nil without a base image.
func (e *Editor) Render() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderer.Render(e.scene)
}

// SetBaseImage replaces the document and clears overlays, selection and
// advisory data. A nil image is ignored.
func (e *Editor) SetBaseImage(img image.Image) {
	e.update(func() bool {
		if img == nil {
			return false
		}
		e.drag.End()
		e.scene.SetBaseImage(img)
		e.logger.Info("base image set", "width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "generation", e.scene.Generation())
		return true
	})
}

// LoadBaseDocument loads an image file, URL or PDF page as the base image.
func (e *Editor) LoadBaseDocument(source string, page, dpi int) error {
	img, err := e.processor.LoadDocument(source, page, dpi)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", source, err)
	}
	e.SetBaseImage(img)
	return nil
}

// HasBaseImage reports whether a document is loaded.
func (e *Editor) HasBaseImage() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.HasBaseImage()
}

// BaseSize returns the base image size, or zero without a base image.
func (e *Editor) BaseSize() types.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseSize()
}

func (e *Editor) baseSize() types.Size {
	base := e.scene.BaseImage()
	if base == nil {
		return types.Size{}
	}
	b := base.Bounds()
	return types.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// AddOverlay adds img at the default position and selects it. Without a base
// image it returns scene.ErrNoBaseImage and changes nothing.
func (e *Editor) AddOverlay(img image.Image, name string) (string, error) {
	var (
		id  string
		err error
	)
	e.update(func() bool {
		id, err = e.scene.AddOverlay(img, name)
		if err == nil {
			e.logger.Debug("overlay added", "id", id, "name", name)
		}
		return err == nil
	})
	return id, err
}

// LoadOverlay loads a signature file or URL and adds it. The base image is
// checked first so nothing is read when the precondition fails.
func (e *Editor) LoadOverlay(source string) (string, error) {
	if !e.HasBaseImage() {
		return "", scene.ErrNoBaseImage
	}
	img, err := e.processor.LoadOverlay(source)
	if err != nil {
		return "", fmt.Errorf("failed to load overlay %s: %w", source, err)
	}
	return e.AddOverlay(img, filepath.Base(source))
}

// RemoveOverlay deletes an overlay. Unknown ids are ignored.
func (e *Editor) RemoveOverlay(id string) {
	e.update(func() bool {
		if _, ok := e.scene.Overlay(id); !ok {
			return false
		}
		e.scene.RemoveOverlay(id)
		return true
	})
}

// RemoveSelected deletes the selected overlay, if any.
func (e *Editor) RemoveSelected() {
	e.update(func() bool {
		id, ok := e.scene.Selected()
		if !ok {
			return false
		}
		e.scene.RemoveOverlay(id)
		return true
	})
}

// Select selects an overlay; an unknown id clears the selection.
func (e *Editor) Select(id string) bool {
	var selected bool
	e.update(func() bool {
		selected = e.scene.SetSelected(id)
		return true
	})
	return selected
}

// ClearSelection deselects any overlay.
func (e *Editor) ClearSelection() {
	e.update(func() bool {
		e.scene.ClearSelection()
		return true
	})
}

// Selected returns the selected overlay id.
func (e *Editor) Selected() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Selected()
}

// UpdateOverlayPosition moves an overlay by (dx, dy).
func (e *Editor) UpdateOverlayPosition(id string, dx, dy float64) {
	e.update(func() bool {
		if _, ok := e.scene.Overlay(id); !ok {
			return false
		}
		e.scene.UpdateOverlayPosition(id, dx, dy)
		return true
	})
}

// PlaceOverlay moves an overlay so its top-left corner is at (x, y).
func (e *Editor) PlaceOverlay(id string, x, y float64) {
	e.update(func() bool {
		ov, ok := e.scene.Overlay(id)
		if !ok {
			return false
		}
		e.scene.UpdateOverlayPosition(id, x-ov.X, y-ov.Y)
		return true
	})
}

// SetOverlayScale sets an overlay's scale, clamped to the allowed range.
func (e *Editor) SetOverlayScale(id string, s float64) {
	e.update(func() bool {
		if _, ok := e.scene.Overlay(id); !ok {
			return false
		}
		e.scene.SetOverlayScale(id, s)
		return true
	})
}

// SetSelectedScale sets the scale of the selected overlay.
func (e *Editor) SetSelectedScale(s float64) {
	e.update(func() bool {
		id, ok := e.scene.Selected()
		if !ok {
			return false
		}
		e.scene.SetOverlayScale(id, s)
		return true
	})
}

// SelectedScale returns the selected overlay's scale, or 1 with no selection.
func (e *Editor) SelectedScale() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.scene.Selected(); ok {
		if ov, ok := e.scene.Overlay(id); ok {
			return ov.Scale
		}
	}
	return 1
}

// ScaleRange returns the allowed overlay scale range.
func (e *Editor) ScaleRange() (min, max float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.ScaleRange()
}

// HandlePointer maps a host pointer event from display coordinates into
// base-image pixels and feeds it to the drag controller. display is where the
// surface is drawn on screen. It reports whether the scene changed.
func (e *Editor) HandlePointer(ev interact.Event, display types.Rect) bool {
	return e.update(func() bool {
		if !e.scene.HasBaseImage() {
			return false
		}
		p := interact.PointerToScene(ev.Point, display, e.baseSize())
		return e.drag.Handle(ev.Phase, p)
	})
}

// Dragging reports whether a drag is in progress.
func (e *Editor) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.State() == interact.StateDragging
}

// CanExport reports whether there is something to export.
func (e *Editor) CanExport() bool {
	return e.HasBaseImage()
}

// Export writes the composited document to w.
func (e *Editor) Export(w io.Writer, opts export.Options) error {
	surface := e.Render()
	if surface == nil {
		return scene.ErrNoBaseImage
	}
	return export.Encode(w, surface, opts)
}

// ExportFile writes the composited document to path.
func (e *Editor) ExportFile(path string, opts export.Options) error {
	surface := e.Render()
	if surface == nil {
		return scene.ErrNoBaseImage
	}
	if err := export.WriteFile(path, surface, opts); err != nil {
		return err
	}
	e.logger.Info("document exported", "path", path, "format", string(opts.Format))
	return nil
}
