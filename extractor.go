package seoentity

// Extractor reduces raw HTML to the text a reader would see.
type Extractor interface {
	// Extract returns the visible text of the markup. It never fails:
	// malformed input degrades to best-effort text.
	Extract(html string) string

	// Name returns the extractor's identifier (e.g., "visible", "trafilatura").
	Name() string
}
