//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/menta2k/sign-composer/pkg/types"
)

// Client recognizes words with Tesseract and implements client.VisionClient.
// The model and prompt arguments of AnalyzeImage are ignored.
type Client struct {
	mu       sync.Mutex
	client   *gosseract.Client
	keywords []string
}

// New creates a new OCR client for the given Tesseract languages, e.g.
// "eng" or "eng+chi_tra". It should be closed when no longer needed.
func New(languages ...string) (*Client, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Client{client: client, keywords: DefaultKeywords}, nil
}

// SetKeywords replaces the signature label list.
func (c *Client) SetKeywords(keywords []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keywords = keywords
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// AnalyzeImage recognizes the snapshot and suggests placements next to
// signature labels.
func (c *Client) AnalyzeImage(ctx context.Context, _, _ string, imgB64 string) (*types.AnalysisResult, error) {
	data, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image size: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{Text: b.Word, Box: b.Box, Confidence: b.Confidence})
	}

	result := Suggest(words, cfg.Width, cfg.Height, c.keywords)
	return &result, nil
}
