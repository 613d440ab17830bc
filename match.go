package seoentity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordMatcher finds whole-word, case-insensitive occurrences of a phrase.
// Whitespace inside the phrase matches any run of whitespace in the text.
type wordMatcher struct {
	re *regexp.Regexp
}

// newWordMatcher returns nil when the phrase has no words.
func newWordMatcher(phrase string) *wordMatcher {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return &wordMatcher{re: regexp.MustCompile(`(?i)` + strings.Join(words, `\s+`))}
}

// FindAll returns the byte offsets of every whole-word match in text,
// in order and without overlap.
func (m *wordMatcher) FindAll(text string) [][2]int {
	if m == nil {
		return nil
	}

	var spans [][2]int
	offset := 0
	for offset < len(text) {
		loc := m.re.FindStringIndex(text[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		if end > start && atWordBoundary(text, start, end) {
			spans = append(spans, [2]int{start, end})
			offset = end
			continue
		}
		// Retry one rune further so a match embedded in a longer word
		// does not hide a real one that starts inside it.
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return spans
}

// Count returns the number of whole-word matches in text.
func (m *wordMatcher) Count(text string) int {
	return len(m.FindAll(text))
}

// atWordBoundary reports whether text[start:end] is not glued to a
// neighbouring letter, digit or underscore.
func atWordBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

// CountOccurrences counts whole-word, case-insensitive matches of name in text.
func CountOccurrences(name, text string) int {
	return newWordMatcher(name).Count(text)
}
