package signcomposer

import (
	"context"

	"github.com/menta2k/sign-composer/pkg/analysis"
	"github.com/menta2k/sign-composer/pkg/scene"
)

// Advisory summarizes the analysis applied to the current document.
type Advisory struct {
	Description string
	Placements  int
}

// Advisory returns the applied analysis for the current base image.
func (e *Editor) Advisory() (Advisory, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	adv := e.scene.Advisory()
	if adv == nil {
		return Advisory{}, false
	}
	return Advisory{Description: adv.Description, Placements: len(adv.SuggestedPlacements)}, true
}

// CanAnalyze reports whether an analysis can be started now.
func (e *Editor) CanAnalyze() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil && e.scene.HasBaseImage() && !e.session.Pending()
}

// Analyzing reports whether an analysis request is outstanding.
func (e *Editor) Analyzing() bool {
	return e.session != nil && e.session.Pending()
}

// Analyze starts analysis of the current base image. The outcome arrives on
// the returned channel and must be passed to ApplyAnalysis. While a request is
// outstanding it returns analysis.ErrBusy. The session is idle as soon as the
// outcome is delivered; AnalyzeAsync applies it before that.
func (e *Editor) Analyze(ctx context.Context) (<-chan analysis.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkAnalyzable(); err != nil {
		return nil, err
	}
	return e.session.Start(ctx, e.scene.BaseImage(), e.scene.Generation())
}

func (e *Editor) checkAnalyzable() error {
	if e.session == nil {
		return ErrNoAnalyzer
	}
	if !e.scene.HasBaseImage() {
		return scene.ErrNoBaseImage
	}
	return nil
}

// ApplyAnalysis stores an outcome as advisory data. Outcomes for a previous
// base image are discarded and false is returned.
func (e *Editor) ApplyAnalysis(o analysis.Outcome) bool {
	return e.update(func() bool {
		if !e.scene.SetAdvisory(o.Generation, o.Result) {
			e.logger.Info("stale analysis discarded", "generation", o.Generation, "current", e.scene.Generation())
			return false
		}
		return true
	})
}

// AnalyzeAsync starts analysis and applies the outcome when it arrives, before
// another request can start. done, if not nil, is called afterwards with the
// outcome and whether it was applied; CanAnalyze is true again by then.
func (e *Editor) AnalyzeAsync(ctx context.Context, done func(analysis.Outcome, bool)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkAnalyzable(); err != nil {
		return err
	}
	return e.session.Run(ctx, e.scene.BaseImage(), e.scene.Generation(), e.ApplyAnalysis, done)
}
