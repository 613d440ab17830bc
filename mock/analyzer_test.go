package mock_test

import (
	"context"
	"testing"

	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_AnalyzeEntities(t *testing.T) {
	t.Parallel()

	t.Run("delegates to AnalyzeEntitiesFn", func(t *testing.T) {
		t.Parallel()

		var calledWith string
		a := &mock.Analyzer{
			AnalyzeEntitiesFn: func(_ context.Context, text string) ([]seoentity.RawEntity, error) {
				calledWith = text
				return []seoentity.RawEntity{{Name: "Paris", Type: "LOCATION", Salience: 0.9}}, nil
			},
		}

		got, err := a.AnalyzeEntities(context.Background(), "Paris in spring")

		require.NoError(t, err)
		assert.Equal(t, "Paris in spring", calledWith)
		assert.Len(t, got, 1)
	})
}

func TestExtractor_Name(t *testing.T) {
	t.Parallel()

	t.Run("defaults to mock", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "mock", (&mock.Extractor{}).Name())
	})

	t.Run("delegates to NameFn", func(t *testing.T) {
		t.Parallel()

		e := &mock.Extractor{NameFn: func() string { return "custom" }}
		assert.Equal(t, "custom", e.Name())
	})
}
