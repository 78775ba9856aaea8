package normalizer

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// nonWordRe matches a maximal run of characters that are not letters,
// digits or underscore. The class is Unicode-wide and locale-independent.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Normalize lowercases text and collapses every run of non-word characters
// into a single space. Leading and trailing spaces are kept.
//
// The vocabulary transform was fitted on text produced by exactly this rule,
// so any change here silently shifts the feature space.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// A Caser is stateful; build one per call so Normalize stays goroutine-safe.
	lower := cases.Lower(language.Und).String(text)
	return nonWordRe.ReplaceAllLiteralString(lower, " ")
}

// TextNormalizer adapts Normalize to the domain.Normalizer interface.
type TextNormalizer struct{}

// New returns the default text normalizer.
func New() TextNormalizer { return TextNormalizer{} }

func (TextNormalizer) Normalize(text string) string { return Normalize(text) }
