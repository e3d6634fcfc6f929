package scoring

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestKeyRequirement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		expect      string
	}{
		{
			name:        "empty",
			description: "",
			expect:      "",
		},
		{
			name:        "signal sentence wins over earlier long sentence",
			description: "We are hiring. Must have strong Excel skills and 2 years experience in finance.",
			expect:      "Must have strong Excel skills and 2 years experience in finance",
		},
		{
			name:        "first signal sentence in order",
			description: "You will own the roadmap for payments. Experience in fintech is required.",
			expect:      "You will own the roadmap for payments",
		},
		{
			name:        "short signal sentence is skipped",
			description: "We need you! The role spans three product lines across India.",
			expect:      "The role spans three product lines across India",
		},
		{
			name:        "fallback needs more than thirty runes",
			description: "Short intro here. Another short one. Still nothing at all!",
			expect:      "",
		},
		{
			name:        "casing is preserved",
			description: "Ideal Candidate Has Shipped SaaS Products At Scale?",
			expect:      "Ideal Candidate Has Shipped SaaS Products At Scale",
		},
		{
			name:        "splits on question and exclamation marks",
			description: "Ready to grow? Great! Responsibilities include client onboarding and demos",
			expect:      "Responsibilities include client onboarding and demos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KeyRequirement(tt.description); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestKeyRequirementClipsLongSentence(t *testing.T) {
	long := "Required: " + strings.Repeat("stakeholder alignment ", 20)

	got := KeyRequirement(long)
	if utf8.RuneCountInString(got) != maxRequirementLength {
		t.Fatalf("expected %d runes, got %d", maxRequirementLength, utf8.RuneCountInString(got))
	}
	if !strings.HasPrefix(got, "Required: stakeholder") {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestKeyRequirementCountsRunes(t *testing.T) {
	// 21 runes but more bytes; must qualify as a signal sentence.
	sentence := "résumé required ééééé"
	if utf8.RuneCountInString(sentence) != 21 {
		t.Fatalf("fixture should be 21 runes, got %d", utf8.RuneCountInString(sentence))
	}
	if got := KeyRequirement(sentence + "."); got != sentence {
		t.Fatalf("expected %q, got %q", sentence, got)
	}
}
