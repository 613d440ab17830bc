package seoentity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuationFolds maps typographic punctuation onto ASCII.
var punctuationFolds = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote / apostrophe
	"‚", "'",
	"‛", "'",
	"′", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"″", `"`,
	"–", "-", // en dash
	"—", "-", // em dash
	"‒", "-",
	"―", "-",
)

// Normalize canonicalizes an entity name for display and deduplication.
// An empty result means the name carries nothing worth showing.
func Normalize(name string) string {
	s := stripDiacritics(name)
	s = punctuationFolds.Replace(s)

	s = strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) || r == '-' {
			return r
		}
		return -1
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	// Dropping non-ASCII runes can leave doubled or edge spaces.
	s = strings.Join(strings.Fields(s), " ")

	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}

// stripDiacritics applies canonical decomposition and removes nonspacing marks.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// isWordRune reports whether r is a letter, digit or underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
