package ocr

import (
	"image"
	"strings"
	"testing"
)

func TestSuggestPlacesRightOfLabel(t *testing.T) {
	words := []Word{
		{Text: "Lease", Box: image.Rect(100, 40, 180, 60), Confidence: 92},
		{Text: "Agreement", Box: image.Rect(190, 40, 330, 60), Confidence: 90},
		{Text: "Signature:", Box: image.Rect(100, 880, 200, 900), Confidence: 88},
	}

	result := Suggest(words, 1000, 1000, nil)
	if len(result.SuggestedPlacements) != 1 {
		t.Fatalf("Expected 1 placement, got %d", len(result.SuggestedPlacements))
	}
	p := result.SuggestedPlacements[0]
	// 200 + 4*20 = 280 horizontally, 880 + 10 vertically.
	if p.X != 280 || p.Y != 890 {
		t.Errorf("Expected placement (280,890), got %v", p)
	}
	if !strings.Contains(result.Description, "Lease Agreement") {
		t.Errorf("Expected heading in description, got %q", result.Description)
	}
}

func TestSuggestNormalizesToPage(t *testing.T) {
	words := []Word{{Text: "sign", Box: image.Rect(50, 390, 90, 410), Confidence: 80}}

	result := Suggest(words, 500, 800, nil)
	if len(result.SuggestedPlacements) != 1 {
		t.Fatalf("Expected 1 placement, got %d", len(result.SuggestedPlacements))
	}
	p := result.SuggestedPlacements[0]
	if p.X != 340 || p.Y != 500 {
		t.Errorf("Expected (340,500), got %v", p)
	}
}

func TestSuggestClampsToRightEdge(t *testing.T) {
	words := []Word{{Text: "Signed", Box: image.Rect(900, 100, 990, 130), Confidence: 75}}

	result := Suggest(words, 1000, 1000, nil)
	if len(result.SuggestedPlacements) != 1 || result.SuggestedPlacements[0].X != 1000 {
		t.Errorf("Expected placement clamped to the right edge, got %v", result.SuggestedPlacements)
	}
}

func TestSuggestIgnoresLowConfidenceAndOtherWords(t *testing.T) {
	words := []Word{
		{Text: "signature", Box: image.Rect(0, 0, 10, 10), Confidence: 12},
		{Text: "designated", Box: image.Rect(0, 20, 10, 30), Confidence: 95},
		{Text: "---", Box: image.Rect(0, 40, 10, 50), Confidence: 95},
	}

	result := Suggest(words, 100, 100, nil)
	if len(result.SuggestedPlacements) != 0 {
		t.Errorf("Expected no placements, got %v", result.SuggestedPlacements)
	}
	if result.SuggestedPlacements == nil {
		t.Error("Expected an empty, non-nil placement list")
	}
	if !strings.Contains(result.Description, "no signature labels") {
		t.Errorf("Unexpected description %q", result.Description)
	}
}

func TestSuggestCJKLabel(t *testing.T) {
	words := []Word{{Text: "立約人簽章：", Box: image.Rect(100, 500, 220, 530), Confidence: 70}}

	result := Suggest(words, 1000, 1000, nil)
	if len(result.SuggestedPlacements) != 1 {
		t.Errorf("Expected CJK label to match, got %v", result.SuggestedPlacements)
	}
}

func TestSuggestCustomKeywords(t *testing.T) {
	words := []Word{{Text: "Initials", Box: image.Rect(10, 10, 50, 20), Confidence: 90}}

	if got := Suggest(words, 100, 100, nil); len(got.SuggestedPlacements) != 0 {
		t.Errorf("Default keywords should not match, got %v", got.SuggestedPlacements)
	}
	if got := Suggest(words, 100, 100, []string{"initials"}); len(got.SuggestedPlacements) != 1 {
		t.Errorf("Custom keyword should match, got %v", got.SuggestedPlacements)
	}
}

func TestSuggestEmptyPage(t *testing.T) {
	result := Suggest(nil, 0, 0, nil)
	if len(result.SuggestedPlacements) != 0 {
		t.Error("Expected no placements for an empty page")
	}
}
