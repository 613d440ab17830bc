// Package pipeline turns one submission into an analysis: it resolves the
// source text, calls the analyzer and derives every display artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/seoentity/seoentity"
)

// DefaultMinClassifyWords is the shortest text, in words, sent for
// classification. The service rejects shorter documents.
const DefaultMinClassifyWords = 20

// Runner executes analysis runs. Fetcher is only required for URL input and
// Analyses is optional.
type Runner struct {
	Fetcher   seoentity.Fetcher
	Extractor seoentity.Extractor
	Analyzer  seoentity.Analyzer
	Analyses  seoentity.AnalysisService
	Logger    *slog.Logger

	// RetryDelays are the waits between fetch attempts. Nil uses
	// DefaultRetryDelays; an empty slice disables retries.
	RetryDelays []time.Duration

	// Limiter, when set, spaces out fetches to the same host.
	Limiter *DomainLimiter

	// MinClassifyWords overrides DefaultMinClassifyWords when positive.
	MinClassifyWords int

	// Reuse returns a stored analysis of identical text instead of calling
	// the analyzer again.
	Reuse bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// ContentHash returns the cache key of a source text.
func ContentHash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// Run analyzes input and returns the next session snapshot with the new
// analysis as its current result. On any error the given session is
// returned unchanged.
func (r *Runner) Run(ctx context.Context, session seoentity.Session, input seoentity.Input) (seoentity.Session, *seoentity.Analysis, error) {
	if err := input.Validate(); err != nil {
		return session, nil, err
	}

	text, err := r.resolveText(ctx, input)
	if err != nil {
		return session, nil, err
	}
	hash := ContentHash(text)

	if r.Reuse && r.Analyses != nil {
		prev, err := r.cached(ctx, hash)
		if err != nil {
			return session, nil, err
		}
		if prev != nil {
			r.logger().Info("reusing analysis", "id", prev.ID, "hash", hash)
			return session.WithAnalysis(prev), prev, nil
		}
	}

	raw, err := r.Analyzer.AnalyzeEntities(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return session, nil, ctx.Err()
		}
		if seoentity.ErrorCode(err) == seoentity.EINVALID {
			return session, nil, err
		}
		return session, nil, seoentity.Errorf(seoentity.EUNAVAILABLE, "entity analysis failed: %s", causeMessage(err))
	}

	entities := seoentity.Aggregate(raw)
	if len(entities) == 0 {
		return session, nil, seoentity.Errorf(seoentity.EUNAVAILABLE, "no entities found")
	}
	seoentity.SortBySalience(entities)

	a := &seoentity.Analysis{
		ID:          uuid.New().String(),
		Mode:        input.Mode,
		SourceURL:   input.SourceURL(),
		Text:        text,
		ContentHash: hash,
		Entities:    seoentity.EnrichAll(entities, text),
		Category:    r.classify(ctx, text),
		Highlighted: seoentity.Highlight(text, entities),
		CreatedAt:   r.now().UTC(),
	}

	if r.Analyses != nil {
		if err := r.Analyses.CreateAnalysis(ctx, a); err != nil {
			return session, nil, err
		}
	}

	return session.WithAnalysis(a), a, nil
}

// resolveText reduces the input to the text sent for analysis.
func (r *Runner) resolveText(ctx context.Context, input seoentity.Input) (string, error) {
	var text string
	switch input.Mode {
	case seoentity.ModeURL:
		if r.Fetcher == nil {
			return "", seoentity.Errorf(seoentity.EINVALID, "URL input is not supported")
		}
		url := strings.TrimSpace(input.Value)
		fetch := FetchFunc(r.Fetcher.Fetch)
		if r.Limiter != nil {
			fetch = r.Limiter.Limit(fetch)
		}
		html, err := FetchWithRetry(ctx, url, fetch, r.logger(), r.retryDelays())
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if seoentity.ErrorCode(err) == seoentity.EINVALID {
				return "", err
			}
			return "", seoentity.Errorf(seoentity.EUNAVAILABLE, "fetch %s: %s", url, causeMessage(err))
		}
		text = r.Extractor.Extract(html)
	case seoentity.ModeHTML:
		text = r.Extractor.Extract(input.Value)
	default:
		text = strings.TrimSpace(input.Value)
	}

	if strings.TrimSpace(text) == "" {
		return "", seoentity.Errorf(seoentity.EINVALID, "no visible text found in %s input", input.Mode)
	}
	return text, nil
}

// classify returns the text's category, or nil when the text is too short
// or the service fails. Classification never fails a run.
func (r *Runner) classify(ctx context.Context, text string) *seoentity.Category {
	minWords := r.MinClassifyWords
	if minWords <= 0 {
		minWords = DefaultMinClassifyWords
	}
	if words := len(strings.Fields(text)); words < minWords {
		r.logger().Debug("skipping classification", "words", words, "min", minWords)
		return nil
	}

	category, err := r.Analyzer.ClassifyText(ctx, text)
	if err != nil {
		r.logger().Warn("classification failed", "err", err)
		return nil
	}
	return category
}

func (r *Runner) cached(ctx context.Context, hash string) (*seoentity.Analysis, error) {
	found, err := r.Analyses.FindAnalyses(ctx, seoentity.AnalysisFilter{ContentHash: &hash, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *Runner) retryDelays() []time.Duration {
	if r.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return r.RetryDelays
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// causeMessage describes err for an end user. Application errors keep their
// message; anything else reports its text.
func causeMessage(err error) string {
	var e *seoentity.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
