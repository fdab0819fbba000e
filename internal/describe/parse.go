package describe

import (
	"encoding/json/v2"
	"regexp"
	"strings"
)

// modelOutput is the JSON shape we ask the model to produce.
type modelOutput struct {
	Description string              `json:"description"`
	Tags        map[string][]string `json:"tags"`
}

var (
	fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceRegex = regexp.MustCompile(`(?s)\{.*\}`)
)

// extractOutput recovers structured output from model text.
//
// Models wrap JSON in markdown fences, lead with prose, or emit stray
// control characters, so extraction is layered: try a fenced block first,
// then the widest brace-delimited span, and sanitize before each parse.
// When nothing parses, the raw text becomes the description and tags stay
// empty. A scan with no tags is still a scan.
func extractOutput(raw string) modelOutput {
	candidates := make([]string, 0, 2)

	if m := fenceRegex.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := braceRegex.FindString(raw); m != "" {
		candidates = append(candidates, m)
	}

	for _, candidate := range candidates {
		cleaned := stripControlChars(candidate)

		var out modelOutput
		if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
			if out.Tags == nil {
				out.Tags = map[string][]string{}
			}
			return out
		}
	}

	return modelOutput{
		Description: strings.TrimSpace(raw),
		Tags:        map[string][]string{},
	}
}

// stripControlChars removes ASCII control characters (0x00-0x1F, 0x7F)
// that models occasionally emit inside string values, which break strict
// JSON parsing. Dropping them from between tokens is harmless since JSON
// whitespace is optional there.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}
