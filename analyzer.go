package seoentity

import "context"

// Analyzer is the external entity-extraction and classification service.
type Analyzer interface {
	// AnalyzeEntities returns the entities recognized in text, in the order
	// the service reports them.
	AnalyzeEntities(ctx context.Context, text string) ([]RawEntity, error)

	// ClassifyText returns the most confident document category, or nil
	// when the service has no classification for the text.
	ClassifyText(ctx context.Context, text string) (*Category, error)
}
