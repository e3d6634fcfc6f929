package scoring

import (
	"strings"
	"unicode/utf8"
)

const (
	maxRequirementLength = 150
	minSignalSentence    = 20
	minFallbackSentence  = 30
)

var requirementSignals = []string{
	"required", "must have", "should have", "looking for", "ideal candidate",
	"we need", "you will", "responsibilities", "experience in",
}

// KeyRequirement picks the sentence of a description most likely to state a requirement.
// The first sentence carrying a requirement phrase wins; failing that, the first sentence
// long enough to say something. The sentence keeps its casing and is cut at 150 runes.
func KeyRequirement(description string) string {
	sentences := strings.FieldsFunc(description, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if utf8.RuneCountInString(trimmed) <= minSignalSentence {
			continue
		}
		if containsAny(strings.ToLower(trimmed), requirementSignals) {
			return clip(trimmed, maxRequirementLength)
		}
	}

	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if utf8.RuneCountInString(trimmed) > minFallbackSentence {
			return clip(trimmed, maxRequirementLength)
		}
	}

	return ""
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
