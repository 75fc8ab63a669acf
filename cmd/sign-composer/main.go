package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	signcomposer "github.com/menta2k/sign-composer"
	"github.com/menta2k/sign-composer/internal/config"
	"github.com/menta2k/sign-composer/internal/logging"
	"github.com/menta2k/sign-composer/internal/utils"
	"github.com/menta2k/sign-composer/pkg/export"
)

func main() {
	var base, cfgPath, backend, url, model, language string
	var outDir, name, ext, analysisJSON, logFormat string
	var page, dpi, quality int
	var analyze, lossless, keepSelection, verbose bool
	var sigs overlayFlags

	flag.StringVar(&base, "base", "", "base document: image path, PDF path or URL")
	flag.IntVar(&page, "page", 1, "PDF page number (1-based)")
	flag.IntVar(&dpi, "dpi", 150, "PDF rasterization DPI")
	flag.Var(&sigs, "sig", "signature image path[@x,y[,scale]] (repeatable)")
	flag.BoolVar(&keepSelection, "keep-selection", false, "keep the last signature selected (its outline is exported)")

	flag.StringVar(&cfgPath, "config", "", "config file (JSON or YAML); defaults to "+config.GetConfigPath()+" if present")
	flag.BoolVar(&analyze, "analyze", false, "ask the analysis backend for signature areas")
	flag.StringVar(&backend, "backend", "", "analysis backend: ollama|llamacpp|ocr")
	flag.StringVar(&url, "url", "", "analysis server URL")
	flag.StringVar(&model, "model", "", "analysis model name")
	flag.StringVar(&language, "lang", "", "language of the document description")
	flag.StringVar(&analysisJSON, "analysis-json", "", "write the analysis result to this JSON file")

	flag.StringVar(&outDir, "out", "", "output directory")
	flag.StringVar(&name, "name", "", "output file name (default "+export.DefaultFilename+")")
	flag.StringVar(&ext, "ext", "", "output format: png|webp|jpg")
	flag.IntVar(&quality, "quality", 0, "WebP/JPEG quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")

	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.StringVar(&logFormat, "log-format", "text", "log format: text|json")
	flag.Parse()

	if base == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -base document.(png|jpg|pdf)|URL [-sig signature.png@x,y,scale]... [-analyze] [-out dir] [-ext png|webp|jpg]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyFlag(&cfg.Analysis.Backend, backend)
	applyFlag(&cfg.Analysis.URL, url)
	applyFlag(&cfg.Analysis.Model, model)
	applyFlag(&cfg.Analysis.Language, language)
	applyFlag(&cfg.Output.Dir, outDir)
	applyFlag(&cfg.Output.Filename, name)
	applyFlag(&cfg.Output.Format, ext)
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewLogger(level, logFormat)
	slog.SetDefault(logger)

	if err := run(logger, cfg, base, page, dpi, sigs, analyze, keepSelection, analysisJSON); err != nil {
		logger.Error("sign-composer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, base string, page, dpi int, sigs overlayFlags, analyze, keepSelection bool, analysisJSON string) error {
	ed, err := signcomposer.NewFromConfig(cfg, analyze, signcomposer.WithLogger(logger))
	if ed == nil {
		return err
	}
	defer ed.Close()
	if err != nil {
		return fmt.Errorf("analysis backend: %w", err)
	}

	if err := ed.LoadBaseDocument(base, page-1, dpi); err != nil {
		return err
	}
	size := ed.BaseSize()
	logger.Info("document loaded", "source", base, "width", size.W, "height", size.H)

	for _, s := range sigs {
		id, err := ed.LoadOverlay(s.Path)
		if err != nil {
			return err
		}
		if s.HasPos {
			ed.PlaceOverlay(id, s.X, s.Y)
		}
		if s.HasScale {
			ed.SetOverlayScale(id, s.Scale)
		}
	}
	for _, item := range ed.Overlays() {
		logger.Info("signature placed",
			"label", item.Label,
			"name", item.Name,
			"x", item.X,
			"y", item.Y,
			"scale", signcomposer.ScalePercent(item.Scale))
	}
	if !keepSelection {
		ed.ClearSelection()
	}

	if analyze {
		ch, err := ed.Analyze(context.Background())
		if err != nil {
			return err
		}
		outcome := <-ch
		ed.ApplyAnalysis(outcome)
		if adv, ok := ed.Advisory(); ok {
			logger.Info("analysis", "description", adv.Description, "suggested_areas", adv.Placements)
		}
		if analysisJSON != "" {
			js, err := json.MarshalIndent(outcome.Result, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(analysisJSON, js, 0o644); err != nil {
				return fmt.Errorf("failed to write analysis: %w", err)
			}
		}
	}

	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := utils.GenerateOutputFilename(base, cfg.Output.Dir, cfg.Output.Filename, "_signed", string(format))
	opts := export.Options{Format: format, Quality: cfg.Output.Quality, Lossless: cfg.Output.Lossless}
	if err := ed.ExportFile(outPath, opts); err != nil {
		return err
	}
	if info, err := os.Stat(outPath); err == nil {
		logger.Info("wrote", "path", outPath, "size", utils.FormatFileSize(info.Size()))
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if p := config.GetConfigPath(); utils.FileExists(p) {
			path = p
		}
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func applyFlag(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
