package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/seoentity/seoentity"
)

// Ensure LoggingAnalyzer implements seoentity.Analyzer.
var _ seoentity.Analyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps an Analyzer with logging.
type LoggingAnalyzer struct {
	next   seoentity.Analyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next seoentity.Analyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// AnalyzeEntities logs the text size and entity count.
func (a *LoggingAnalyzer) AnalyzeEntities(ctx context.Context, text string) (entities []seoentity.RawEntity, err error) {
	defer func(begin time.Time) {
		a.logger.Info("analyze entities",
			"chars", len([]rune(text)),
			"count", len(entities),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.AnalyzeEntities(ctx, text)
}

// ClassifyText logs the winning category, if any.
func (a *LoggingAnalyzer) ClassifyText(ctx context.Context, text string) (category *seoentity.Category, err error) {
	defer func(begin time.Time) {
		a.logger.Info("classify text",
			"chars", len([]rune(text)),
			"category", category.Breadcrumb(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.ClassifyText(ctx, text)
}
