package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// DefaultMaxDim bounds the longest side of a model snapshot.
const DefaultMaxDim = 1024

// Downscale shrinks img so that neither side exceeds maxDim, keeping the
// aspect ratio. Smaller images and maxDim <= 0 return img unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	md := float64(maxDim)

	switch {
	case w > h && w > md:
		h *= md / w
		w = md
	case h > md:
		w *= md / h
		h = md
	default:
		return img
	}

	nw, nh := int(w), int(h)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareImageForModel downscales img to maxDim and returns it as base64 PNG.
func (p *Processor) PrepareImageForModel(img image.Image, maxDim int) (string, error) {
	data, err := EncodePNG(Downscale(img, maxDim))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
