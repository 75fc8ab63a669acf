package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/menta2k/sign-composer/pkg/client"
	"github.com/menta2k/sign-composer/pkg/types"
)

// createTestImage creates a solid test image
func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{250, 250, 250, 255})
		}
	}
	return img
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzeSendsDownscaledPNG(t *testing.T) {
	var gotModel, gotPrompt string
	var gotSize image.Point
	fake := client.Func(func(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error) {
		gotModel, gotPrompt = model, prompt
		data, err := base64.StdEncoding.DecodeString(imgB64)
		if err != nil {
			t.Fatalf("Snapshot is not base64: %v", err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil || format != "png" {
			t.Fatalf("Snapshot is not a PNG: %v %s", err, format)
		}
		gotSize = image.Pt(cfg.Width, cfg.Height)
		if _, ok := ctx.Deadline(); !ok {
			t.Error("Expected a deadline on the request context")
		}
		return &types.AnalysisResult{
			Description:         "Lease",
			SuggestedPlacements: []types.Point{{X: 100, Y: 900}},
		}, nil
	})

	a := New(fake, WithModel("minicpm-v"), WithLanguage("Traditional Chinese"), WithLogger(quietLogger()))
	result := a.Analyze(context.Background(), createTestImage(2480, 3508))

	if result.Description != "Lease" || len(result.SuggestedPlacements) != 1 {
		t.Errorf("Unexpected result %+v", result)
	}
	if gotModel != "minicpm-v" {
		t.Errorf("Unexpected model %q", gotModel)
	}
	if !strings.Contains(gotPrompt, "Traditional Chinese") || !strings.Contains(gotPrompt, "0-1000") {
		t.Errorf("Prompt missing language or coordinate range: %q", gotPrompt)
	}
	if gotSize.Y != 1024 || gotSize.X != 723 {
		t.Errorf("Expected 723x1024 snapshot, got %v", gotSize)
	}
}

func TestAnalyzeFallbackOnError(t *testing.T) {
	fake := client.Func(func(context.Context, string, string, string) (*types.AnalysisResult, error) {
		return nil, errors.New("connection refused")
	})

	a := New(fake, WithFallbackDescription("unavailable"), WithLogger(quietLogger()))
	result := a.Analyze(context.Background(), createTestImage(100, 100))

	if result.Description != "unavailable" {
		t.Errorf("Expected fallback description, got %q", result.Description)
	}
	if result.SuggestedPlacements == nil || len(result.SuggestedPlacements) != 0 {
		t.Errorf("Expected empty placements, got %v", result.SuggestedPlacements)
	}
}

func TestAnalyzeFallbackOnNilResult(t *testing.T) {
	fake := client.Func(func(context.Context, string, string, string) (*types.AnalysisResult, error) {
		return nil, nil
	})
	result := New(fake, WithLogger(quietLogger())).Analyze(context.Background(), createTestImage(10, 10))
	if result.Description != DefaultFallbackDescription {
		t.Errorf("Expected default fallback, got %q", result.Description)
	}
}

func TestAnalyzeWithoutImage(t *testing.T) {
	called := false
	fake := client.Func(func(context.Context, string, string, string) (*types.AnalysisResult, error) {
		called = true
		return nil, nil
	})
	result := New(fake, WithLogger(quietLogger())).Analyze(context.Background(), nil)
	if called {
		t.Error("Transport must not be called without an image")
	}
	if result.HasPlacements() {
		t.Error("Expected no placements")
	}
}

func TestAnalyzeDropsInvalidPlacements(t *testing.T) {
	fake := client.Func(func(context.Context, string, string, string) (*types.AnalysisResult, error) {
		return &types.AnalysisResult{
			Description:         "Form",
			SuggestedPlacements: []types.Point{{X: 500, Y: 500}, {X: 1001, Y: 0}, {X: -1, Y: 3}},
		}, nil
	})
	result := New(fake, WithLogger(quietLogger())).Analyze(context.Background(), createTestImage(10, 10))
	if len(result.SuggestedPlacements) != 1 {
		t.Errorf("Expected 1 valid placement, got %v", result.SuggestedPlacements)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	fake := client.Func(func(ctx context.Context, _, _, _ string) (*types.AnalysisResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	a := New(fake, WithTimeout(20*time.Millisecond), WithLogger(quietLogger()))

	done := make(chan types.AnalysisResult, 1)
	go func() { done <- a.Analyze(context.Background(), createTestImage(10, 10)) }()

	select {
	case result := <-done:
		if result.Description != DefaultFallbackDescription {
			t.Errorf("Expected fallback after timeout, got %q", result.Description)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Analyze did not honour the timeout")
	}
}

func TestSessionSingleFlight(t *testing.T) {
	release := make(chan struct{})
	fake := client.Func(func(context.Context, string, string, string) (*types.AnalysisResult, error) {
		<-release
		return &types.AnalysisResult{Description: "done", SuggestedPlacements: []types.Point{}}, nil
	})
	s := NewSession(New(fake, WithLogger(quietLogger())), quietLogger())

	ch, err := s.Start(context.Background(), createTestImage(10, 10), 7)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.Pending() {
		t.Error("Expected pending while request is outstanding")
	}
	if _, err := s.Start(context.Background(), createTestImage(10, 10), 7); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for a second request, got %v", err)
	}

	close(release)
	outcome, ok := <-ch
	if !ok {
		t.Fatal("Expected an outcome")
	}
	if outcome.Generation != 7 || outcome.Result.Description != "done" {
		t.Errorf("Unexpected outcome %+v", outcome)
	}
	if s.Pending() {
		t.Error("Session must be idle once the outcome is delivered")
	}
	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after one outcome")
	}

	ch2, err := s.Start(context.Background(), createTestImage(10, 10), 8)
	if err != nil {
		t.Fatalf("Expected a new request to be accepted, got %v", err)
	}
	<-ch2
}

func TestSessionRunAppliesBeforeIdle(t *testing.T) {
	fake := client.Func(func(context.Context, string, string, string) (*types.AnalysisResult, error) {
		return &types.AnalysisResult{Description: "done", SuggestedPlacements: []types.Point{}}, nil
	})
	s := NewSession(New(fake, WithLogger(quietLogger())), quietLogger())

	var busyDuringApply, pendingDuringApply bool
	apply := func(o Outcome) bool {
		pendingDuringApply = s.Pending()
		_, err := s.Start(context.Background(), createTestImage(10, 10), 4)
		busyDuringApply = errors.Is(err, ErrBusy)
		return o.Generation == 3
	}

	finished := make(chan bool, 1)
	done := func(_ Outcome, applied bool) {
		if s.Pending() {
			t.Error("Session must be idle when done runs")
		}
		finished <- applied
	}
	if err := s.Run(context.Background(), createTestImage(10, 10), 3, apply, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	select {
	case applied := <-finished:
		if !applied {
			t.Error("Expected apply result to reach done")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish")
	}
	if !pendingDuringApply {
		t.Error("Expected pending while the outcome is applied")
	}
	if !busyDuringApply {
		t.Error("Expected ErrBusy for a request started while the outcome is applied")
	}
}

func TestPromptDefaultsToEnglish(t *testing.T) {
	if !strings.Contains(Prompt(""), "in English") {
		t.Error("Expected English by default")
	}
}
