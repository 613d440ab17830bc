package mock

import (
	"context"

	"github.com/seoentity/seoentity"
)

var _ seoentity.Analyzer = (*Analyzer)(nil)

// Analyzer is a mock implementation of seoentity.Analyzer.
type Analyzer struct {
	AnalyzeEntitiesFn func(ctx context.Context, text string) ([]seoentity.RawEntity, error)
	ClassifyTextFn    func(ctx context.Context, text string) (*seoentity.Category, error)
}

func (a *Analyzer) AnalyzeEntities(ctx context.Context, text string) ([]seoentity.RawEntity, error) {
	return a.AnalyzeEntitiesFn(ctx, text)
}

func (a *Analyzer) ClassifyText(ctx context.Context, text string) (*seoentity.Category, error) {
	return a.ClassifyTextFn(ctx, text)
}
