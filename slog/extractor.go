package slog

import (
	"log/slog"
	"time"

	"github.com/seoentity/seoentity"
)

// Ensure LoggingExtractor implements seoentity.Extractor.
var _ seoentity.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   seoentity.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next seoentity.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Name delegates to the wrapped extractor.
func (e *LoggingExtractor) Name() string {
	return e.next.Name()
}

// Extract logs input and output sizes.
func (e *LoggingExtractor) Extract(html string) (text string) {
	defer func(begin time.Time) {
		e.logger.Debug("extract",
			"extractor", e.next.Name(),
			"bytes", len(html),
			"chars", len([]rune(text)),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return e.next.Extract(html)
}
