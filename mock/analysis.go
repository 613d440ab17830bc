package mock

import (
	"context"

	"github.com/seoentity/seoentity"
)

var _ seoentity.AnalysisService = (*AnalysisService)(nil)

// AnalysisService is a mock implementation of seoentity.AnalysisService.
type AnalysisService struct {
	CreateAnalysisFn   func(ctx context.Context, a *seoentity.Analysis) error
	FindAnalysisByIDFn func(ctx context.Context, id string) (*seoentity.Analysis, error)
	FindAnalysesFn     func(ctx context.Context, filter seoentity.AnalysisFilter) ([]*seoentity.Analysis, error)
	DeleteAnalysisFn   func(ctx context.Context, id string) error
}

func (s *AnalysisService) CreateAnalysis(ctx context.Context, a *seoentity.Analysis) error {
	return s.CreateAnalysisFn(ctx, a)
}

func (s *AnalysisService) FindAnalysisByID(ctx context.Context, id string) (*seoentity.Analysis, error) {
	return s.FindAnalysisByIDFn(ctx, id)
}

func (s *AnalysisService) FindAnalyses(ctx context.Context, filter seoentity.AnalysisFilter) ([]*seoentity.Analysis, error) {
	return s.FindAnalysesFn(ctx, filter)
}

func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id string) error {
	return s.DeleteAnalysisFn(ctx, id)
}
