package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName prepares a product description for similarity comparison:
//   - converts to lowercase
//   - strips diacritics ("Tío" -> "tio", "Piña" -> "pina")
//   - replaces every rune that is not a letter, digit or whitespace with a space
//   - compresses whitespace runs into one space and trims
//
// The result is only used for matching; stored names keep their original form.
func NormalizeName(text string) string {
	if text == "" {
		return ""
	}

	stripped, _, err := transform.String(stripMarks(), strings.ToLower(text))
	if err != nil {
		stripped = strings.ToLower(text)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripMarks returns a fresh transformer; transform.Chain is stateful and
// must not be shared between goroutines.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
