// Package export encodes a composited surface for download or saving.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// DefaultFilename is the name offered for an exported document.
const DefaultFilename = "merged_document.png"

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	JPEG Format = "jpg"
)

// Options controls the encoding. The zero value encodes PNG.
type Options struct {
	Format   Format
	Quality  int
	Lossless bool
}

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "", "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// FormatForPath picks the format from the file extension, defaulting to PNG.
func FormatForPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return PNG
	}
	return f
}

// Encode writes img to w. The output is a deterministic function of the
// pixels and options.
func Encode(w io.Writer, img image.Image, opts Options) error {
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	switch opts.Format {
	case "", PNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case WebP:
		if err := webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(quality)}); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
	case JPEG:
		if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
	return nil
}

// Bytes encodes img in memory.
func Bytes(img image.Image, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes img to path, creating parent directories. The file is
// written to a temporary name first and renamed into place.
func WriteFile(path string, img image.Image, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}
