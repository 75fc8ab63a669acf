package processing

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// LoadPDFPage rasterizes one page (0-based) of a PDF file.
func LoadPDFPage(path string, page, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return renderPage(doc, page, dpi)
}

// LoadPDFPageFromMemory rasterizes one page of an in-memory PDF.
func LoadPDFPageFromMemory(data []byte, page, dpi int) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return renderPage(doc, page, dpi)
}

// PDFPageCount returns the number of pages in a PDF file.
func PDFPageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

func renderPage(doc *fitz.Document, page, dpi int) (image.Image, error) {
	if n := doc.NumPage(); page < 0 || page >= n {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page, n)
	}
	if dpi <= 0 {
		dpi = DefaultPDFDPI
	}
	img, err := doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}
