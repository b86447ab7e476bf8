package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation classifies every input rejection; callers surface it to the
// user without touching any state.
var ErrValidation = errors.New("validation failed")

// quoteReplacer maps typographic quotation characters to their ASCII forms
var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"„", `"`, // low double
	"«", `"`, // left guillemet
	"»", `"`, // right guillemet
	"‘", "'", // left single
	"’", "'", // right single
	"‚", "'", // low single
)

// injectionPhrases is a fixed denylist of prompt-injection markers, matched
// case-insensitively as substrings. This is a best-effort heuristic, not a
// security boundary: a determined user can word around it.
var injectionPhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"disregard previous instructions",
	"ignore your instructions",
	"act as an ai",
	"pretend you are an ai",
	"you are an ai",
	"system prompt",
	"your instructions are",
}

// NormalizeQuotes converts typographic quotes to canonical ASCII
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// UtteranceValidator validates player utterances
type UtteranceValidator struct{}

// NewUtteranceValidator creates a new UtteranceValidator
func NewUtteranceValidator() *UtteranceValidator {
	return &UtteranceValidator{}
}

// ValidateUtterance rejects empty input and denylisted phrases
func (v *UtteranceValidator) ValidateUtterance(utterance string) error {
	if strings.TrimSpace(utterance) == "" {
		return fmt.Errorf("message cannot be empty: %w", ErrValidation)
	}

	lowered := strings.ToLower(utterance)
	for _, phrase := range injectionPhrases {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("message contains a disallowed phrase: %w", ErrValidation)
		}
	}

	return nil
}
