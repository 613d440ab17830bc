package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/goquery"
	"github.com/seoentity/seoentity/mock"
	"github.com/seoentity/seoentity/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noClassify fails the test if classification is attempted.
func noClassify(t *testing.T) func(context.Context, string) (*seoentity.Category, error) {
	return func(context.Context, string) (*seoentity.Category, error) {
		t.Error("ClassifyText should not be called")
		return nil, nil
	}
}

func parisAnalyzer(t *testing.T) *mock.Analyzer {
	return &mock.Analyzer{
		AnalyzeEntitiesFn: func(context.Context, string) ([]seoentity.RawEntity, error) {
			return []seoentity.RawEntity{
				{Name: "paris", Type: "LOCATION", Salience: 0.9},
				{Name: "Paris", Type: "LOCATION", Salience: 0.95},
			}, nil
		},
		ClassifyTextFn: noClassify(t),
	}
}

func longText() string {
	return strings.Repeat("travel ", 25) + "Paris"
}

func TestRunner_Run_TextInput(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	runner := &pipeline.Runner{
		Extractor: goquery.NewVisibleExtractor(),
		Analyzer:  parisAnalyzer(t),
		Now:       func() time.Time { return fixed },
	}
	before := seoentity.Session{ID: "s1"}

	after, a, err := runner.Run(context.Background(), before, seoentity.Input{
		Mode:  seoentity.ModeText,
		Value: "  Paris is lovely. I love paris.  ",
	})

	require.NoError(t, err)
	require.NotNil(t, a)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, seoentity.ModeText, a.Mode)
	assert.Empty(t, a.SourceURL)
	assert.Equal(t, "Paris is lovely. I love paris.", a.Text)
	assert.Equal(t, pipeline.ContentHash(a.Text), a.ContentHash)
	assert.Equal(t, fixed, a.CreatedAt)
	assert.Nil(t, a.Category)

	require.Len(t, a.Entities, 1)
	e := a.Entities[0]
	assert.Equal(t, "Paris", e.Name)
	assert.Equal(t, seoentity.TypeLocation, e.Type)
	assert.InDelta(t, 0.95, e.Salience, 1e-9)
	assert.Equal(t, 95, e.Relevance)
	assert.Equal(t, 2, e.OccurrenceCount)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", e.Link)
	assert.Equal(t, seoentity.LinkGuessed, e.LinkStatus)
	assert.Equal(t, 2, strings.Count(a.Highlighted, "<mark"))

	assert.Equal(t, 1, after.Runs)
	assert.Same(t, a, after.Current)
	assert.Equal(t, "s1", after.ID)
	assert.Zero(t, before.Runs)
	assert.Nil(t, before.Current)
}

func TestRunner_Run_SortsEntitiesBySalience(t *testing.T) {
	t.Parallel()

	runner := &pipeline.Runner{
		Extractor: goquery.NewVisibleExtractor(),
		Analyzer: &mock.Analyzer{
			AnalyzeEntitiesFn: func(context.Context, string) ([]seoentity.RawEntity, error) {
				return []seoentity.RawEntity{
					{Name: "Acme", Type: "ORGANIZATION", Salience: 0.2},
					{Name: "Jane Doe", Type: "PERSON", Salience: 0.7},
				}, nil
			},
			ClassifyTextFn: noClassify(t),
		},
	}

	_, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{
		Mode:  seoentity.ModeText,
		Value: "Jane Doe works at Acme.",
	})

	require.NoError(t, err)
	require.Len(t, a.Entities, 2)
	assert.Equal(t, "Jane Doe", a.Entities[0].Name)
	assert.Equal(t, seoentity.TypeOrg, a.Entities[1].Type)
}

func TestRunner_Run_Classification(t *testing.T) {
	t.Parallel()

	t.Run("classifies long enough text", func(t *testing.T) {
		t.Parallel()

		analyzer := parisAnalyzer(t)
		analyzer.ClassifyTextFn = func(context.Context, string) (*seoentity.Category, error) {
			return &seoentity.Category{Path: []string{"Travel"}, Confidence: 90}, nil
		}
		runner := &pipeline.Runner{Extractor: goquery.NewVisibleExtractor(), Analyzer: analyzer}

		_, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: longText()})

		require.NoError(t, err)
		require.NotNil(t, a.Category)
		assert.Equal(t, "Travel", a.Category.Breadcrumb())
	})

	t.Run("honours a custom word threshold", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{
			Extractor:        goquery.NewVisibleExtractor(),
			Analyzer:         parisAnalyzer(t),
			MinClassifyWords: 100,
		}

		_, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: longText()})

		require.NoError(t, err)
		assert.Nil(t, a.Category)
	})

	t.Run("swallows and logs classification errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		analyzer := parisAnalyzer(t)
		analyzer.ClassifyTextFn = func(context.Context, string) (*seoentity.Category, error) {
			return nil, errors.New("document too short")
		}
		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer:  analyzer,
			Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
		}

		_, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: longText()})

		require.NoError(t, err)
		assert.Nil(t, a.Category)
		assert.Contains(t, buf.String(), "classification failed")
		assert.Contains(t, buf.String(), "document too short")
	})
}

func TestRunner_Run_URLInput(t *testing.T) {
	t.Parallel()

	t.Run("fetches, extracts and records the source URL", func(t *testing.T) {
		t.Parallel()

		var analyzed string
		runner := &pipeline.Runner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					assert.Equal(t, "https://example.com/paris#top", url)
					return `<body><nav>Menu</nav><p>Paris is the capital of France.</p></body>`, nil
				},
			},
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer: &mock.Analyzer{
				AnalyzeEntitiesFn: func(_ context.Context, text string) ([]seoentity.RawEntity, error) {
					analyzed = text
					return []seoentity.RawEntity{{Name: "Paris", Type: "LOCATION", Salience: 1}}, nil
				},
				ClassifyTextFn: noClassify(t),
			},
		}

		_, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{
			Mode:  seoentity.ModeURL,
			Value: "https://example.com/paris#top",
		})

		require.NoError(t, err)
		assert.Equal(t, "Paris is the capital of France.", analyzed)
		assert.Equal(t, "https://example.com/paris", a.SourceURL)
	})

	t.Run("retries failed fetches", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		runner := &pipeline.Runner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					attempts++
					if attempts < 3 {
						return "", errors.New("connection reset")
					}
					return "<p>Paris</p>", nil
				},
			},
			Extractor:   goquery.NewVisibleExtractor(),
			Analyzer:    parisAnalyzer(t),
			RetryDelays: []time.Duration{0, 0, 0},
		}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeURL, Value: "https://example.com"})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("fetch failure is unavailable and keeps the session", func(t *testing.T) {
		t.Parallel()

		prev := &seoentity.Analysis{ID: "prev"}
		before := seoentity.Session{Current: prev, Runs: 4}
		runner := &pipeline.Runner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					return "", errors.New("HTTP 503 for https://example.com")
				},
			},
			Extractor:   goquery.NewVisibleExtractor(),
			Analyzer:    parisAnalyzer(t),
			RetryDelays: []time.Duration{},
		}

		after, a, err := runner.Run(context.Background(), before, seoentity.Input{Mode: seoentity.ModeURL, Value: "https://example.com"})

		require.Error(t, err)
		assert.Nil(t, a)
		assert.Equal(t, seoentity.EUNAVAILABLE, seoentity.ErrorCode(err))
		assert.Contains(t, seoentity.ErrorMessage(err), "HTTP 503")
		assert.Equal(t, before, after)
	})

	t.Run("waits for the host limiter before fetching", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewDomainLimiter(0.1)
		require.NoError(t, limiter.Wait(context.Background(), "https://example.com/"))
		runner := &pipeline.Runner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					t.Error("Fetch should not be called")
					return "", nil
				},
			},
			Extractor:   goquery.NewVisibleExtractor(),
			Analyzer:    parisAnalyzer(t),
			Limiter:     limiter,
			RetryDelays: []time.Duration{},
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, _, err := runner.Run(ctx, seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeURL, Value: "https://example.com/page"})

		assert.Error(t, err)
	})

	t.Run("rejects URL input without a fetcher", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{Extractor: goquery.NewVisibleExtractor(), Analyzer: parisAnalyzer(t)}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeURL, Value: "https://example.com"})

		assert.Equal(t, seoentity.EINVALID, seoentity.ErrorCode(err))
	})
}

func TestRunner_Run_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid input never reaches the analyzer", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{Extractor: goquery.NewVisibleExtractor(), Analyzer: &mock.Analyzer{}}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeURL, Value: "not a url"})

		assert.Equal(t, seoentity.EINVALID, seoentity.ErrorCode(err))
	})

	t.Run("html without visible text is invalid", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{Extractor: goquery.NewVisibleExtractor(), Analyzer: &mock.Analyzer{}}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{
			Mode:  seoentity.ModeHTML,
			Value: "<html><head><title>Only a title</title></head><body><nav>Menu</nav></body></html>",
		})

		require.Error(t, err)
		assert.Equal(t, seoentity.EINVALID, seoentity.ErrorCode(err))
		assert.Contains(t, seoentity.ErrorMessage(err), "no visible text")
	})

	t.Run("analyzer failure is unavailable with the cause", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer: &mock.Analyzer{
				AnalyzeEntitiesFn: func(context.Context, string) ([]seoentity.RawEntity, error) {
					return nil, errors.New("quota exceeded")
				},
			},
		}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: "Paris"})

		require.Error(t, err)
		assert.Equal(t, seoentity.EUNAVAILABLE, seoentity.ErrorCode(err))
		assert.Contains(t, seoentity.ErrorMessage(err), "quota exceeded")
	})

	t.Run("empty entity list is unavailable", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer: &mock.Analyzer{
				AnalyzeEntitiesFn: func(context.Context, string) ([]seoentity.RawEntity, error) {
					return nil, nil
				},
			},
		}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: "Paris"})

		require.Error(t, err)
		assert.Equal(t, seoentity.EUNAVAILABLE, seoentity.ErrorCode(err))
		assert.Contains(t, seoentity.ErrorMessage(err), "no entities")
	})

	t.Run("entities that normalize away are unavailable", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer: &mock.Analyzer{
				AnalyzeEntitiesFn: func(context.Context, string) ([]seoentity.RawEntity, error) {
					return []seoentity.RawEntity{{Name: "!!!", Type: "OTHER", Salience: 1}}, nil
				},
			},
		}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: "!!!"})

		assert.Equal(t, seoentity.EUNAVAILABLE, seoentity.ErrorCode(err))
	})

	t.Run("storage failure keeps the session", func(t *testing.T) {
		t.Parallel()

		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer:  parisAnalyzer(t),
			Analyses: &mock.AnalysisService{
				CreateAnalysisFn: func(context.Context, *seoentity.Analysis) error {
					return errors.New("disk full")
				},
			},
		}

		after, _, err := runner.Run(context.Background(), seoentity.Session{ID: "s"}, seoentity.Input{Mode: seoentity.ModeText, Value: "Paris"})

		require.Error(t, err)
		assert.Equal(t, seoentity.Session{ID: "s"}, after)
	})
}

func TestRunner_Run_Storage(t *testing.T) {
	t.Parallel()

	t.Run("persists the analysis", func(t *testing.T) {
		t.Parallel()

		var stored *seoentity.Analysis
		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer:  parisAnalyzer(t),
			Analyses: &mock.AnalysisService{
				CreateAnalysisFn: func(_ context.Context, a *seoentity.Analysis) error {
					stored = a
					return nil
				},
			},
		}

		_, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: "Paris"})

		require.NoError(t, err)
		assert.Same(t, a, stored)
	})

	t.Run("reuses a stored analysis of identical text", func(t *testing.T) {
		t.Parallel()

		prev := &seoentity.Analysis{ID: "prev", Text: "Paris"}
		var filter seoentity.AnalysisFilter
		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer:  &mock.Analyzer{},
			Reuse:     true,
			Analyses: &mock.AnalysisService{
				FindAnalysesFn: func(_ context.Context, f seoentity.AnalysisFilter) ([]*seoentity.Analysis, error) {
					filter = f
					return []*seoentity.Analysis{prev}, nil
				},
			},
		}

		after, a, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: "Paris"})

		require.NoError(t, err)
		assert.Same(t, prev, a)
		assert.Same(t, prev, after.Current)
		require.NotNil(t, filter.ContentHash)
		assert.Equal(t, pipeline.ContentHash("Paris"), *filter.ContentHash)
	})

	t.Run("analyzes when nothing is cached", func(t *testing.T) {
		t.Parallel()

		created := false
		runner := &pipeline.Runner{
			Extractor: goquery.NewVisibleExtractor(),
			Analyzer:  parisAnalyzer(t),
			Reuse:     true,
			Analyses: &mock.AnalysisService{
				FindAnalysesFn: func(context.Context, seoentity.AnalysisFilter) ([]*seoentity.Analysis, error) {
					return nil, nil
				},
				CreateAnalysisFn: func(context.Context, *seoentity.Analysis) error {
					created = true
					return nil
				},
			},
		}

		_, _, err := runner.Run(context.Background(), seoentity.Session{}, seoentity.Input{Mode: seoentity.ModeText, Value: "Paris"})

		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pipeline.ContentHash("Paris"), pipeline.ContentHash("Paris"))
	assert.NotEqual(t, pipeline.ContentHash("Paris"), pipeline.ContentHash("paris"))
	assert.Len(t, pipeline.ContentHash(""), 16)
}
