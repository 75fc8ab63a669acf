// Package mainwindow provides the sign-composer desktop window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	signcomposer "github.com/menta2k/sign-composer"
	"github.com/menta2k/sign-composer/internal/config"
	"github.com/menta2k/sign-composer/pkg/analysis"
	"github.com/menta2k/sign-composer/pkg/export"
	"github.com/menta2k/sign-composer/pkg/processing"
	"github.com/menta2k/sign-composer/ui/canvas"
)

const prefKeyLastDir = "lastDirectory"

var (
	documentExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff", ".gif", ".pdf"}
	overlayExtensions  = []string{".png", ".webp", ".gif", ".tif", ".tiff"}
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	editor *signcomposer.Editor
	cfg    *config.Config
	logger *slog.Logger

	canvas     *canvas.SceneCanvas
	list       *widget.List
	items      []signcomposer.OverlayItem
	slider     *widget.Slider
	scaleLabel *widget.Label
	advisory   *widget.Label
	statusBar  *widget.Label

	analyzeBtn *widget.Button
	exportBtn  *widget.Button
	removeBtn  *widget.Button
	overlayBtn *widget.Button

	// syncing suppresses widget callbacks while controls mirror the editor.
	syncing bool
}

// New creates the main window around ed.
func New(fyneApp fyne.App, ed *signcomposer.Editor, cfg *config.Config, logger *slog.Logger) *MainWindow {
	mw := &MainWindow{
		Window: fyneApp.NewWindow("Sign Composer"),
		app:    fyneApp,
		editor: ed,
		cfg:    cfg,
		logger: logger,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.editor.OnChange(mw.onEditorChange)
	mw.syncControls()
	mw.Resize(fyne.NewSize(1100, 760))
	return mw
}

// setupUI creates the main layout: controls | canvas.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.editor)
	mw.statusBar = widget.NewLabel("Load a document to begin")
	mw.advisory = widget.NewLabel("")
	mw.advisory.Wrapping = fyne.TextWrapWord

	lo, hi := mw.editor.ScaleRange()
	mw.slider = widget.NewSlider(lo*100, hi*100)
	mw.slider.Step = 1
	mw.slider.OnChanged = func(v float64) {
		if mw.syncing {
			return
		}
		mw.editor.SetSelectedScale(v / 100)
	}
	mw.scaleLabel = widget.NewLabel(signcomposer.ScalePercent(1))

	mw.list = widget.NewList(
		func() int { return len(mw.items) },
		func() fyne.CanvasObject { return widget.NewLabel("Signature #0") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(mw.items) {
				it := mw.items[id]
				obj.(*widget.Label).SetText(fmt.Sprintf("%s  %s", it.Label, signcomposer.ScalePercent(it.Scale)))
			}
		},
	)
	mw.list.OnSelected = func(id widget.ListItemID) {
		if mw.syncing || id >= len(mw.items) {
			return
		}
		mw.editor.Select(mw.items[id].ID)
	}

	docBtn := widget.NewButton("Open Document...", mw.onOpenDocument)
	mw.overlayBtn = widget.NewButton("Add Signature...", mw.onAddSignature)
	mw.removeBtn = widget.NewButton("Remove", mw.editor.RemoveSelected)
	mw.analyzeBtn = widget.NewButton("Analyze", mw.onAnalyze)
	mw.exportBtn = widget.NewButton("Export...", mw.onExport)

	controls := container.NewBorder(
		container.NewVBox(
			docBtn,
			mw.overlayBtn,
			mw.analyzeBtn,
			mw.exportBtn,
			widget.NewSeparator(),
			widget.NewLabel("Scale"),
			container.NewBorder(nil, nil, nil, mw.scaleLabel, mw.slider),
			widget.NewSeparator(),
			widget.NewLabel("Signatures"),
		),
		container.NewVBox(mw.removeBtn, widget.NewSeparator(), mw.advisory),
		nil,
		nil,
		mw.list,
	)

	split := container.NewHSplit(controls, mw.canvas)
	split.SetOffset(0.25)

	mw.SetContent(container.NewBorder(nil, container.NewPadded(mw.statusBar), nil, nil, split))
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Document...", mw.onOpenDocument),
		fyne.NewMenuItem("Add Signature...", mw.onAddSignature),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export...", mw.onExport),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Remove Signature", mw.editor.RemoveSelected),
		fyne.NewMenuItem("Clear Selection", mw.editor.ClearSelection),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About Sign Composer",
				"Sign Composer "+signcomposer.Version+"\nPlace signature images on documents.", mw.Window)
		}),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, helpMenu))
}

func (mw *MainWindow) onEditorChange(*image.RGBA) {
	mw.syncControls()
}

// syncControls mirrors editor state into the side panel.
func (mw *MainWindow) syncControls() {
	mw.syncing = true
	defer func() { mw.syncing = false }()

	ed := mw.editor
	mw.items = ed.Overlays()
	mw.list.Refresh()
	mw.list.UnselectAll()
	for i, it := range mw.items {
		if it.Selected {
			mw.list.Select(i)
		}
	}

	_, selected := ed.Selected()
	scale := ed.SelectedScale()
	mw.slider.SetValue(scale * 100)
	mw.scaleLabel.SetText(signcomposer.ScalePercent(scale))
	enable(mw.removeBtn, selected)

	hasBase := ed.HasBaseImage()
	enable(mw.overlayBtn, hasBase)
	enable(mw.exportBtn, ed.CanExport())
	enable(mw.analyzeBtn, ed.CanAnalyze())
	if ed.Analyzing() {
		mw.analyzeBtn.SetText("Analyzing...")
	} else {
		mw.analyzeBtn.SetText("Analyze")
	}

	if adv, ok := ed.Advisory(); ok {
		mw.advisory.SetText(fmt.Sprintf("%s\n%d suggested area(s)", adv.Description, adv.Placements))
	} else {
		mw.advisory.SetText("")
	}
}

type disableable interface {
	Enable()
	Disable()
}

func enable(w disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (mw *MainWindow) onOpenDocument() {
	mw.openFile(documentExtensions, func(path string) error {
		if err := mw.editor.LoadBaseDocument(path, 0, processing.DefaultPDFDPI); err != nil {
			return err
		}
		size := mw.editor.BaseSize()
		mw.SetTitle("Sign Composer - " + filepath.Base(path))
		mw.updateStatus(fmt.Sprintf("Loaded %s (%.0fx%.0f)", filepath.Base(path), size.W, size.H))
		return nil
	})
}

func (mw *MainWindow) onAddSignature() {
	mw.openFile(overlayExtensions, func(path string) error {
		if _, err := mw.editor.LoadOverlay(path); err != nil {
			return err
		}
		mw.updateStatus("Added " + filepath.Base(path))
		return nil
	})
}

func (mw *MainWindow) openFile(exts []string, load func(path string) error) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(filepath.Dir(path))
		if err := load(path); err != nil {
			mw.logger.Error("load failed", "path", path, "error", err)
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if dir := mw.lastDir(); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) onAnalyze() {
	err := mw.editor.AnalyzeAsync(context.Background(), func(o analysis.Outcome, applied bool) {
		if !applied {
			mw.updateStatus("Analysis discarded: the document changed")
		} else {
			mw.updateStatus(fmt.Sprintf("Analysis complete: %d suggested area(s)", len(o.Result.SuggestedPlacements)))
		}
		mw.syncControls()
	})
	switch {
	case errors.Is(err, analysis.ErrBusy):
		mw.updateStatus("Analysis already running")
	case err != nil:
		dialog.ShowError(err, mw.Window)
	default:
		mw.updateStatus("Analyzing document...")
		mw.syncControls()
	}
}

func (mw *MainWindow) onExport() {
	if !mw.editor.CanExport() {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		opts := export.Options{
			Format:   export.FormatForPath(path),
			Quality:  mw.cfg.Output.Quality,
			Lossless: mw.cfg.Output.Lossless,
		}
		if err := mw.editor.Export(writer, opts); err != nil {
			mw.logger.Error("export failed", "path", path, "error", err)
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(filepath.Dir(path))
		mw.updateStatus("Exported " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName(mw.cfg.Output.Filename)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".webp", ".jpg", ".jpeg"}))
	if dir := mw.lastDir(); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) updateStatus(msg string) {
	mw.statusBar.SetText(msg)
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) saveLastDir(dir string) {
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}
