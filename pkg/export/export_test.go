package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a test image with a colored rectangle in the center
func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{240, 240, 240, 255})
		}
	}
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.SetRGBA(x, y, color.RGBA{20, 40, 160, 255})
		}
	}
	return img
}

func TestEncodePNGIsLossless(t *testing.T) {
	img := createTestImage(50, 40)

	data, err := Bytes(img, Options{})
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "png" {
		t.Errorf("Expected png, got %s", format)
	}
	for _, p := range []image.Point{{0, 0}, {25, 20}, {49, 39}} {
		r, g, b, a := decoded.At(p.X, p.Y).RGBA()
		want := img.RGBAAt(p.X, p.Y)
		if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B || uint8(a>>8) != want.A {
			t.Errorf("Pixel %v changed after export", p)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	img := createTestImage(64, 64)
	for _, f := range []Format{PNG, WebP, JPEG} {
		a, err := Bytes(img, Options{Format: f, Quality: 80})
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		b, _ := Bytes(img, Options{Format: f, Quality: 80})
		if !bytes.Equal(a, b) {
			t.Errorf("%s: expected identical bytes for identical input", f)
		}
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if _, err := Bytes(createTestImage(4, 4), Options{Format: "tga"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": PNG, ".PNG": PNG, "webp": WebP, "jpeg": JPEG, ".jpg": JPEG}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("Expected error for gif")
	}
	if FormatForPath("out/merged_document.webp") != WebP || FormatForPath("out/doc") != PNG {
		t.Error("Unexpected FormatForPath result")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFilename)
	if err := WriteFile(path, createTestImage(10, 10), Options{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Output missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}
