package analysis

import (
	"fmt"
	"strings"
)

// DefaultLanguage is the language descriptions are requested in.
const DefaultLanguage = "English"

const promptTemplate = `You are a document layout assistant.

Analyze this document image:
1. Briefly describe what kind of document it is (one sentence).
2. Locate every signature line or "sign here" area.

Return JSON only:
{
  "description": "string",
  "suggestedPlacements": [{"x": 0, "y": 0}]
}

RULES
- x and y are the centre of the signature area, normalized to 0-1000 on each axis
  (0,0 is the top-left corner, 1000,1000 the bottom-right), NOT pixels.
- Use an empty list when there is no signature area.
- Write the description in %s.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Prompt returns the instruction prompt asking for a description in language.
func Prompt(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(promptTemplate, language)
}
