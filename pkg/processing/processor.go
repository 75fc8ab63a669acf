package processing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/sign-composer/internal/utils"
)

var (
	// ErrUnsupportedFormat is returned when no registered decoder accepts the data.
	ErrUnsupportedFormat = errors.New("image: unknown or unsupported format")
	// ErrNoAlpha is returned for overlay files whose format cannot carry
	// transparency.
	ErrNoAlpha = errors.New("overlay format has no alpha channel")
)

const (
	// DefaultPDFDPI is the resolution PDF pages are rasterized at.
	DefaultPDFDPI = 150
	userAgent     = "Sign-Composer/1.0"
	maxDownload   = 64 << 20
)

// Processor loads base documents and overlays and prepares model snapshots.
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewProcessorWithClient creates a processor that downloads through hc.
func NewProcessorWithClient(hc *http.Client) *Processor {
	return &Processor{httpClient: hc}
}

// Download fetches a URL and returns its body and content type.
func (p *Processor) Download(rawURL string) ([]byte, string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// LoadImageFromURL downloads and decodes an image.
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	data, contentType, err := p.Download(imageURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}
	img, _, err := DecodeImage(data)
	return img, err
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if isURL(source) {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// LoadDocument loads a base document. PDFs, local or remote, are rasterized
// at the given page (0-based) and DPI; everything else is decoded as an image.
func (p *Processor) LoadDocument(source string, page, dpi int) (image.Image, error) {
	if !utils.IsPDFFile(source) {
		return p.LoadImageSmart(source)
	}
	if !isURL(source) {
		return LoadPDFPage(source, page, dpi)
	}
	data, _, err := p.Download(source)
	if err != nil {
		return nil, err
	}
	return LoadPDFPageFromMemory(data, page, dpi)
}

// LoadOverlay loads a signature image. Formats that cannot carry alpha are
// rejected with ErrNoAlpha.
func (p *Processor) LoadOverlay(source string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, _, err = p.Download(source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	return DecodeOverlay(data)
}

// DecodeOverlay decodes overlay bytes, rejecting formats without alpha.
func DecodeOverlay(data []byte) (image.Image, error) {
	img, format, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	switch format {
	case "jpeg", "bmp":
		return nil, fmt.Errorf("%w: %s", ErrNoAlpha, format)
	}
	return img, nil
}

// DecodeImage decodes image bytes with the registered decoders and falls back
// to the libwebp decoder. It returns the format name.
func DecodeImage(data []byte) (image.Image, string, error) {
	if img, format, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, format, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}
	return nil, "", ErrUnsupportedFormat
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
