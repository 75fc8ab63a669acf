// Package modelout cleans up and validates the JSON a vision model returns for
// a document analysis request.
package modelout

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/menta2k/sign-composer/pkg/types"
)

// ErrMalformed is returned when the response does not have the expected shape.
var ErrMalformed = errors.New("malformed analysis response")

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// Sanitize strips code fences, comments and trailing commas and keeps only the
// outermost JSON object. The comment and comma rules are textual, so Parse only
// applies them when the response is not already valid JSON.
func Sanitize(raw string) string {
	raw = trimFences(raw)
	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")
	return outerObject(raw)
}

func trimFences(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	return strings.Trim(raw, "`")
}

func outerObject(raw string) string {
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

type wirePoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type wireResult struct {
	Description         *string      `json:"description"`
	SuggestedPlacements *[]wirePoint `json:"suggestedPlacements"`
}

// Parse decodes a model response into an AnalysisResult. The description and
// the placement list are both required and every placement needs numeric x and
// y. Placements outside [0,1000]² are dropped.
func Parse(raw string) (*types.AnalysisResult, error) {
	cleaned := outerObject(trimFences(raw))
	if !json.Valid([]byte(cleaned)) {
		cleaned = Sanitize(raw)
	}
	if !strings.HasPrefix(cleaned, "{") {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformed)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wire.Description == nil {
		return nil, fmt.Errorf("%w: missing description", ErrMalformed)
	}
	if wire.SuggestedPlacements == nil {
		return nil, fmt.Errorf("%w: missing suggestedPlacements", ErrMalformed)
	}

	result := &types.AnalysisResult{
		Description:         strings.TrimSpace(*wire.Description),
		SuggestedPlacements: make([]types.Point, 0, len(*wire.SuggestedPlacements)),
	}
	for i, wp := range *wire.SuggestedPlacements {
		if wp.X == nil || wp.Y == nil {
			return nil, fmt.Errorf("%w: placement %d lacks x or y", ErrMalformed, i)
		}
		p := types.Point{X: *wp.X, Y: *wp.Y}
		if !types.ValidPlacement(p) {
			continue
		}
		result.SuggestedPlacements = append(result.SuggestedPlacements, p)
	}
	return result, nil
}
