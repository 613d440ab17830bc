package seoentity

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// InputMode selects how the submitted value becomes source text.
type InputMode string

// Input modes. Exactly one applies to a submission.
const (
	ModeURL  InputMode = "url"
	ModeHTML InputMode = "html"
	ModeText InputMode = "text"
)

// ParseInputMode returns the mode named by s, or an EINVALID error.
func ParseInputMode(s string) (InputMode, error) {
	switch m := InputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeURL, ModeHTML, ModeText:
		return m, nil
	}
	return "", Errorf(EINVALID, "unknown input mode %q", s)
}

// Input is one submission to the pipeline.
type Input struct {
	Mode  InputMode `json:"mode"`
	Value string    `json:"value"`
}

// Validate returns an error if the input cannot be analyzed.
func (in *Input) Validate() error {
	if _, err := ParseInputMode(string(in.Mode)); err != nil {
		return err
	}
	if strings.TrimSpace(in.Value) == "" {
		return Errorf(EINVALID, "%s input required", in.Mode)
	}
	if in.Mode == ModeURL {
		if !isAbsoluteHTTPURL(strings.TrimSpace(in.Value)) {
			return Errorf(EINVALID, "invalid URL %q: must be an absolute http or https URL", in.Value)
		}
	}
	return nil
}

// Analysis is the immutable result of one pipeline run.
type Analysis struct {
	ID          string           `json:"id"`
	Mode        InputMode        `json:"mode"`
	SourceURL   string           `json:"sourceUrl,omitempty"`
	Text        string           `json:"text"`
	ContentHash string           `json:"contentHash"`
	Entities    []EnrichedEntity `json:"entities"`
	Category    *Category        `json:"category,omitempty"`
	Highlighted string           `json:"highlighted"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Validate returns an error if the analysis contains invalid fields.
func (a *Analysis) Validate() error {
	if a.Text == "" {
		return Errorf(EINVALID, "analysis text required")
	}
	if _, err := ParseInputMode(string(a.Mode)); err != nil {
		return err
	}
	return nil
}

// Title returns a short label for listings: the source URL if there is
// one, otherwise the beginning of the text.
func (a *Analysis) Title() string {
	if a.SourceURL != "" {
		return a.SourceURL
	}
	const max = 60
	text := strings.Join(strings.Fields(a.Text), " ")
	if r := []rune(text); len(r) > max {
		return string(r[:max]) + "..."
	}
	return text
}

// AnalysisService represents a service for managing stored analyses.
type AnalysisService interface {
	// CreateAnalysis stores a new analysis. An empty ID is generated.
	CreateAnalysis(ctx context.Context, a *Analysis) error

	// FindAnalysisByID retrieves an analysis by ID.
	// Returns ENOTFOUND if the analysis does not exist.
	FindAnalysisByID(ctx context.Context, id string) (*Analysis, error)

	// FindAnalyses retrieves analyses matching the filter, newest first.
	FindAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, error)

	// DeleteAnalysis permanently removes an analysis.
	// Returns ENOTFOUND if the analysis does not exist.
	DeleteAnalysis(ctx context.Context, id string) error
}

// AnalysisFilter represents a filter for FindAnalyses.
type AnalysisFilter struct {
	ID          *string `json:"id"`
	ContentHash *string `json:"contentHash"`
	SourceURL   *string `json:"sourceUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Session is a snapshot of one user's state. A Session is never modified
// in place; WithAnalysis returns a new snapshot.
type Session struct {
	ID      string    `json:"id"`
	Current *Analysis `json:"current,omitempty"`
	Runs    int       `json:"runs"`
}

// WithAnalysis returns a copy of the session whose current result is a.
func (s Session) WithAnalysis(a *Analysis) Session {
	s.Current = a
	s.Runs++
	return s
}

// normalizeSourceURL drops the fragment so the same page keys the same history.
func normalizeSourceURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	return u.String()
}

// SourceURL returns the canonical URL for a URL-mode input, or "".
func (in *Input) SourceURL() string {
	if in.Mode != ModeURL {
		return ""
	}
	return normalizeSourceURL(in.Value)
}
