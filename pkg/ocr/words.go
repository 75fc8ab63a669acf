// Package ocr suggests signature placements without a vision model by finding
// signature labels in the recognized text of a document.
//
// Recognition uses Tesseract through gosseract and is only compiled with the
// "ocr" build tag. Without it New returns ErrOCRNotEnabled. The placement logic
// in this file is always available.
package ocr

import (
	"fmt"
	"image"
	"math"
	"strings"
	"unicode"

	"github.com/menta2k/sign-composer/pkg/types"
)

// Word is one recognized word and its pixel box.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// DefaultKeywords are the labels that usually precede a signature line.
var DefaultKeywords = []string{
	"signature",
	"signed",
	"sign",
	"signatory",
	"簽名",
	"簽章",
	"签名",
	"unterschrift",
	"firma",
}

// MinConfidence is the lowest word confidence considered a label.
const MinConfidence = 40

// Suggest turns recognized words on a width×height page into an analysis
// result with one placement to the right of each signature label.
func Suggest(words []Word, width, height int, keywords []string) types.AnalysisResult {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	result := types.AnalysisResult{SuggestedPlacements: []types.Point{}}
	if width <= 0 || height <= 0 {
		result.Description = "Empty page"
		return result
	}

	for _, w := range words {
		if w.Confidence < MinConfidence || !isLabel(w.Text, keywords) {
			continue
		}
		// Leave roughly four line heights between the label and the signature.
		lineH := float64(w.Box.Dy())
		x := float64(w.Box.Max.X) + 4*lineH
		y := float64(w.Box.Min.Y) + lineH/2
		x = math.Min(x, float64(width))

		p := types.Point{
			X: math.Round(x / float64(width) * types.PlacementScale),
			Y: math.Round(y / float64(height) * types.PlacementScale),
		}
		if types.ValidPlacement(p) {
			result.SuggestedPlacements = append(result.SuggestedPlacements, p)
		}
	}

	result.Description = describe(words, len(result.SuggestedPlacements))
	return result
}

func isLabel(text string, keywords []string) bool {
	t := strings.ToLower(strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	}))
	if t == "" {
		return false
	}
	for _, k := range keywords {
		if t == k || strings.HasPrefix(t, k+":") {
			return true
		}
		// CJK labels are often merged with neighbouring characters.
		if !isASCII(k) && strings.Contains(t, k) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func describe(words []Word, found int) string {
	var heading []string
	for _, w := range words {
		if len(heading) == 6 {
			break
		}
		if t := strings.TrimSpace(w.Text); t != "" && w.Confidence >= MinConfidence {
			heading = append(heading, t)
		}
	}
	text := "No readable text"
	if len(heading) > 0 {
		text = "Document starting \"" + strings.Join(heading, " ") + "\""
	}
	switch found {
	case 0:
		return text + "; no signature labels found."
	case 1:
		return text + "; 1 signature label found."
	default:
		return fmt.Sprintf("%s; %d signature labels found.", text, found)
	}
}
