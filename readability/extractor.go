// Package readability implements article extraction with go-readability.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/seoentity/seoentity"
)

// Ensure Extractor implements seoentity.Extractor at compile time.
var _ seoentity.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to keep only the article text of a page.
// When readability fails or finds nothing, the fallback extractor is used.
type Extractor struct {
	fallback seoentity.Extractor
}

// NewExtractor creates a new Extractor that falls back to fallback.
func NewExtractor(fallback seoentity.Extractor) *Extractor {
	return &Extractor{fallback: fallback}
}

// Name returns the extractor's identifier.
func (e *Extractor) Name() string {
	return "readability"
}

// Extract returns the article text of rawHTML.
func (e *Extractor) Extract(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return e.fallback.Extract(rawHTML)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return e.fallback.Extract(rawHTML)
	}
	return text
}
