//go:build !ocr

package ocr

import (
	"context"
	"errors"

	"github.com/menta2k/sign-composer/pkg/types"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
// Rebuild with -tags ocr (Tesseract must be installed).
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is a stub OCR client that returns errors for all operations.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New(languages ...string) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// SetKeywords is a no-op for the stub client.
func (c *Client) SetKeywords(keywords []string) {}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// AnalyzeImage returns ErrOCRNotEnabled.
func (c *Client) AnalyzeImage(ctx context.Context, _, _ string, imgB64 string) (*types.AnalysisResult, error) {
	return nil, ErrOCRNotEnabled
}
