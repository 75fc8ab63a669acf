// Package analysis asks an external image-understanding service to describe a
// base document and suggest signature placements.
//
// The Adapter never returns an error: every failure degrades to a fallback
// description with no placements. The Session enforces at most one outstanding
// request and tags each result with the scene generation it was started for.
package analysis

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/menta2k/sign-composer/pkg/client"
	"github.com/menta2k/sign-composer/pkg/processing"
	"github.com/menta2k/sign-composer/pkg/types"
)

const (
	DefaultTimeout             = 60 * time.Second
	DefaultFallbackDescription = "Unable to analyze document."
)

// Adapter turns a base image into an AnalysisResult.
type Adapter struct {
	client    client.VisionClient
	processor *processing.Processor
	model     string
	prompt    string
	maxDim    int
	timeout   time.Duration
	fallback  string
	logger    *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithModel sets the model name passed to the transport.
func WithModel(model string) Option {
	return func(a *Adapter) { a.model = model }
}

// WithLanguage asks for the description in language.
func WithLanguage(language string) Option {
	return func(a *Adapter) { a.prompt = Prompt(language) }
}

// WithPrompt replaces the instruction prompt.
func WithPrompt(prompt string) Option {
	return func(a *Adapter) { a.prompt = prompt }
}

// WithMaxDim bounds the longest side of the snapshot.
func WithMaxDim(maxDim int) Option {
	return func(a *Adapter) {
		if maxDim > 0 {
			a.maxDim = maxDim
		}
	}
}

// WithTimeout bounds requests whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithFallbackDescription sets the description returned on failure.
func WithFallbackDescription(text string) Option {
	return func(a *Adapter) {
		if text != "" {
			a.fallback = text
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Adapter that sends snapshots through c.
func New(c client.VisionClient, opts ...Option) *Adapter {
	a := &Adapter{
		client:    c,
		processor: processing.NewProcessor(),
		prompt:    Prompt(DefaultLanguage),
		maxDim:    processing.DefaultMaxDim,
		timeout:   DefaultTimeout,
		fallback:  DefaultFallbackDescription,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fallback returns the result used when analysis fails.
func (a *Adapter) Fallback() types.AnalysisResult {
	return types.AnalysisResult{
		Description:         a.fallback,
		SuggestedPlacements: []types.Point{},
	}
}

// Analyze snapshots img and asks the service about it. Failures are logged
// and reported as the fallback result.
func (a *Adapter) Analyze(ctx context.Context, img image.Image) types.AnalysisResult {
	if img == nil || a.client == nil {
		a.logger.Warn("analysis skipped", "reason", "no image or client")
		return a.Fallback()
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	snapshot, err := a.processor.PrepareImageForModel(img, a.maxDim)
	if err != nil {
		a.logger.Warn("analysis snapshot failed", "error", err)
		return a.Fallback()
	}

	result, err := a.client.AnalyzeImage(ctx, a.model, a.prompt, snapshot)
	if err != nil {
		a.logger.Warn("analysis request failed", "model", a.model, "error", err, "elapsed", time.Since(start))
		return a.Fallback()
	}
	if result == nil {
		a.logger.Warn("analysis returned no result", "model", a.model)
		return a.Fallback()
	}

	out := types.AnalysisResult{
		Description:         result.Description,
		SuggestedPlacements: make([]types.Point, 0, len(result.SuggestedPlacements)),
	}
	for _, p := range result.SuggestedPlacements {
		if types.ValidPlacement(p) {
			out.SuggestedPlacements = append(out.SuggestedPlacements, p)
		}
	}

	a.logger.Info("analysis complete",
		"model", a.model,
		"placements", len(out.SuggestedPlacements),
		"elapsed", time.Since(start))
	return out
}
