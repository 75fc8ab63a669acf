package analysis

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/menta2k/sign-composer/pkg/types"
)

// ErrBusy is returned by Start while a request is outstanding.
var ErrBusy = errors.New("analysis already in progress")

// Outcome is a finished analysis for the base image of one scene generation.
type Outcome struct {
	Generation uint64
	Result     types.AnalysisResult
}

// Session runs at most one analysis at a time in the background.
type Session struct {
	adapter *Adapter
	sem     *semaphore.Weighted
	pending atomic.Bool
	logger  *slog.Logger
}

// NewSession creates a Session around adapter.
func NewSession(adapter *Adapter, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		adapter: adapter,
		sem:     semaphore.NewWeighted(1),
		logger:  logger,
	}
}

// Pending reports whether a request is outstanding.
func (s *Session) Pending() bool {
	return s.pending.Load()
}

// Start analyzes img in a new goroutine and delivers exactly one Outcome on
// the returned channel, which is then closed. The session is idle again by the
// time the outcome can be received, so a caller that must apply the outcome
// before another request starts should use Run.
func (s *Session) Start(ctx context.Context, img image.Image, generation uint64) (<-chan Outcome, error) {
	ch := make(chan Outcome, 1)
	err := s.launch(ctx, img, generation, nil, func(o Outcome, _ bool) {
		ch <- o
		close(ch)
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Run analyzes img in a new goroutine. apply receives the outcome while the
// session is still busy and reports whether it was used; done, if not nil,
// runs once the session is idle again.
func (s *Session) Run(ctx context.Context, img image.Image, generation uint64, apply func(Outcome) bool, done func(Outcome, bool)) error {
	return s.launch(ctx, img, generation, apply, done)
}

func (s *Session) launch(ctx context.Context, img image.Image, generation uint64, apply func(Outcome) bool, done func(Outcome, bool)) error {
	if !s.sem.TryAcquire(1) {
		return ErrBusy
	}
	s.pending.Store(true)
	s.logger.Debug("analysis started", "generation", generation)

	go func() {
		o := Outcome{Generation: generation, Result: s.adapter.Analyze(ctx, img)}
		applied := false
		if apply != nil {
			applied = apply(o)
		}

		s.pending.Store(false)
		s.sem.Release(1)
		if done != nil {
			done(o, applied)
		}
	}()
	return nil
}
