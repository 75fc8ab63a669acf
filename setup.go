package signcomposer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/menta2k/sign-composer/internal/config"
	"github.com/menta2k/sign-composer/pkg/analysis"
	"github.com/menta2k/sign-composer/pkg/client"
	"github.com/menta2k/sign-composer/pkg/llamacpp"
	"github.com/menta2k/sign-composer/pkg/ocr"
	"github.com/menta2k/sign-composer/pkg/ollama"
	"github.com/menta2k/sign-composer/pkg/render"
	"github.com/menta2k/sign-composer/pkg/scene"
)

// NewVisionClient builds the transport selected by cfg.Backend. The returned
// closer is nil when the transport holds no resources.
func NewVisionClient(cfg config.AnalysisConfig, apiKey string) (client.VisionClient, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendOllama:
		c, err := ollama.NewClient(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("ollama client: %w", err)
		}
		return c, nil, nil
	case config.BackendLlamaCpp:
		c, err := llamacpp.NewClient(cfg.URL, llamacpp.WithAPIKey(apiKey))
		if err != nil {
			return nil, nil, fmt.Errorf("llamacpp client: %w", err)
		}
		return c, nil, nil
	case config.BackendOCR:
		var langs []string
		if cfg.OCRLanguages != "" {
			langs = strings.Split(cfg.OCRLanguages, "+")
		}
		c, err := ocr.New(langs...)
		if err != nil {
			return nil, nil, fmt.Errorf("ocr client: %w", err)
		}
		return c, c, nil
	}
	return nil, nil, fmt.Errorf("unknown analysis backend %q", cfg.Backend)
}

// RenderOptions converts the render section of cfg, keeping default colours.
func RenderOptions(cfg config.RenderConfig) render.Options {
	opts := render.DefaultOptions()
	opts.MarkerRadius = cfg.MarkerRadius
	opts.MarkerStroke = cfg.MarkerStroke
	opts.DashLength = cfg.DashLength
	opts.HighlightWidth = cfg.HighlightWidth
	opts.HighlightMargin = cfg.HighlightMargin
	return opts
}

// NewFromConfig builds an Editor from cfg. When withAnalysis is false or the
// backend cannot be created, the editor works without analysis and the
// backend error is returned alongside it.
func NewFromConfig(cfg *config.Config, withAnalysis bool, opts ...Option) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := cfg.Editor
	base := []Option{
		WithRenderer(render.NewWithOptions(RenderOptions(cfg.Render))),
		WithSceneOptions(scene.WithPlacement(scene.Placement{
			X:        e.DefaultX,
			Y:        e.DefaultY,
			Scale:    e.DefaultScale,
			MinScale: e.MinScale,
			MaxScale: e.MaxScale,
		})),
	}

	var backendErr error
	if withAnalysis {
		vc, closer, err := NewVisionClient(cfg.Analysis, cfg.APIKey())
		if err != nil {
			backendErr = err
		} else {
			a := cfg.Analysis
			adapterOpts := []analysis.Option{
				analysis.WithModel(a.Model),
				analysis.WithLanguage(a.Language),
				analysis.WithMaxDim(a.MaxDim),
				analysis.WithTimeout(a.Timeout.Std()),
				analysis.WithFallbackDescription(a.FallbackDescription),
			}
			if logger := loggerFrom(opts); logger != nil {
				adapterOpts = append(adapterOpts, analysis.WithLogger(logger))
			}
			base = append(base, WithAnalyzer(analysis.New(vc, adapterOpts...)))
			if closer != nil {
				base = append(base, WithCloser(closer))
			}
		}
	}

	return New(append(base, opts...)...), backendErr
}

// loggerFrom returns the logger set among opts, if any.
func loggerFrom(opts []Option) *slog.Logger {
	var o editorOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.logger
}
