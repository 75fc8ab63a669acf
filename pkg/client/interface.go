// Package client defines the transport used to ask a vision model about a
// document image.
package client

import (
	"context"

	"github.com/menta2k/sign-composer/pkg/types"
)

// VisionClient sends one base64-encoded PNG plus an instruction prompt to an
// image-understanding service and returns its description and suggested
// signature placements.
type VisionClient interface {
	AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error)
}

// Func adapts a plain function to VisionClient.
type Func func(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error)

// AnalyzeImage calls f.
func (f Func) AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error) {
	return f(ctx, model, prompt, imgB64)
}
