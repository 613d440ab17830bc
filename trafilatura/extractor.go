// Package trafilatura implements main-content extraction with go-trafilatura.
package trafilatura

import (
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/seoentity/seoentity"
)

// Ensure Extractor implements seoentity.Extractor at compile time.
var _ seoentity.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to keep only the main content of a page.
// When trafilatura fails or finds nothing, the fallback extractor is used.
type Extractor struct {
	fallback seoentity.Extractor
}

// NewExtractor creates a new Extractor that falls back to fallback.
func NewExtractor(fallback seoentity.Extractor) *Extractor {
	return &Extractor{fallback: fallback}
}

// Name returns the extractor's identifier.
func (e *Extractor) Name() string {
	return "trafilatura"
}

// Extract returns the main content text of rawHTML.
func (e *Extractor) Extract(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil {
		return e.fallback.Extract(rawHTML)
	}

	text := strings.Join(strings.Fields(result.ContentText), " ")
	if text == "" {
		return e.fallback.Extract(rawHTML)
	}
	return text
}
