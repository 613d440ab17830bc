package naturallanguage_test

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/language/apiv1/languagepb"
	"github.com/googleapis/gax-go/v2"
	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/naturallanguage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a function-field fake of the Natural Language client.
type fakeClient struct {
	AnalyzeEntitiesFn func(ctx context.Context, req *languagepb.AnalyzeEntitiesRequest) (*languagepb.AnalyzeEntitiesResponse, error)
	ClassifyTextFn    func(ctx context.Context, req *languagepb.ClassifyTextRequest) (*languagepb.ClassifyTextResponse, error)
}

func (c *fakeClient) AnalyzeEntities(ctx context.Context, req *languagepb.AnalyzeEntitiesRequest, _ ...gax.CallOption) (*languagepb.AnalyzeEntitiesResponse, error) {
	return c.AnalyzeEntitiesFn(ctx, req)
}

func (c *fakeClient) ClassifyText(ctx context.Context, req *languagepb.ClassifyTextRequest, _ ...gax.CallOption) (*languagepb.ClassifyTextResponse, error) {
	return c.ClassifyTextFn(ctx, req)
}

func TestAnalyzer_AnalyzeEntities(t *testing.T) {
	t.Parallel()

	t.Run("sends a UTF-8 plain text document", func(t *testing.T) {
		t.Parallel()

		var got *languagepb.AnalyzeEntitiesRequest
		client := &fakeClient{
			AnalyzeEntitiesFn: func(_ context.Context, req *languagepb.AnalyzeEntitiesRequest) (*languagepb.AnalyzeEntitiesResponse, error) {
				got = req
				return &languagepb.AnalyzeEntitiesResponse{}, nil
			},
		}

		_, err := naturallanguage.NewAnalyzer(client).AnalyzeEntities(context.Background(), "Paris in spring")

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Paris in spring", got.GetDocument().GetContent())
		assert.Equal(t, languagepb.Document_PLAIN_TEXT, got.GetDocument().GetType())
		assert.Equal(t, languagepb.EncodingType_UTF8, got.GetEncodingType())
	})

	t.Run("maps entities with metadata in response order", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{
			AnalyzeEntitiesFn: func(context.Context, *languagepb.AnalyzeEntitiesRequest) (*languagepb.AnalyzeEntitiesResponse, error) {
				return &languagepb.AnalyzeEntitiesResponse{
					Entities: []*languagepb.Entity{
						{
							Name:     "Paris",
							Type:     languagepb.Entity_LOCATION,
							Salience: 0.75,
							Metadata: map[string]string{
								"wikipedia_url": "https://en.wikipedia.org/wiki/Paris",
								"mid":           "/m/05qtj",
							},
						},
						{Name: "Acme", Type: languagepb.Entity_ORGANIZATION, Salience: 0.25},
					},
				}, nil
			},
		}

		got, err := naturallanguage.NewAnalyzer(client).AnalyzeEntities(context.Background(), "text")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Paris", got[0].Name)
		assert.Equal(t, "LOCATION", got[0].Type)
		assert.InDelta(t, 0.75, got[0].Salience, 1e-6)
		assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", got[0].ReferenceURL)
		assert.Equal(t, "/m/05qtj", got[0].MID)
		assert.Equal(t, "ORGANIZATION", got[1].Type)
		assert.Equal(t, seoentity.TypeOrg, seoentity.ParseEntityType(got[1].Type))
		assert.Empty(t, got[1].ReferenceURL)
	})

	t.Run("propagates service errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("permission denied")
		client := &fakeClient{
			AnalyzeEntitiesFn: func(context.Context, *languagepb.AnalyzeEntitiesRequest) (*languagepb.AnalyzeEntitiesResponse, error) {
				return nil, boom
			},
		}

		_, err := naturallanguage.NewAnalyzer(client).AnalyzeEntities(context.Background(), "text")

		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects empty text without calling the service", func(t *testing.T) {
		t.Parallel()

		_, err := naturallanguage.NewAnalyzer(&fakeClient{}).AnalyzeEntities(context.Background(), " \n")

		require.Error(t, err)
		assert.Equal(t, seoentity.EINVALID, seoentity.ErrorCode(err))
	})
}

func TestAnalyzer_ClassifyText(t *testing.T) {
	t.Parallel()

	t.Run("returns the most confident category", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{
			ClassifyTextFn: func(context.Context, *languagepb.ClassifyTextRequest) (*languagepb.ClassifyTextResponse, error) {
				return &languagepb.ClassifyTextResponse{
					Categories: []*languagepb.ClassificationCategory{
						{Name: "/Travel", Confidence: 0.5},
						{Name: "/Travel/Tourist Destinations", Confidence: 0.875},
					},
				}, nil
			},
		}

		got, err := naturallanguage.NewAnalyzer(client).ClassifyText(context.Background(), "text")

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{"Travel", "Tourist Destinations"}, got.Path)
		assert.Equal(t, 88, got.Confidence)
	})

	t.Run("returns nil without categories", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{
			ClassifyTextFn: func(context.Context, *languagepb.ClassifyTextRequest) (*languagepb.ClassifyTextResponse, error) {
				return &languagepb.ClassifyTextResponse{}, nil
			},
		}

		got, err := naturallanguage.NewAnalyzer(client).ClassifyText(context.Background(), "text")

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestBestCategory(t *testing.T) {
	t.Parallel()

	t.Run("ties keep the first", func(t *testing.T) {
		t.Parallel()

		got := naturallanguage.BestCategory([]*languagepb.ClassificationCategory{
			{Name: "/A", Confidence: 0.5},
			{Name: "/B", Confidence: 0.5},
		})

		require.NotNil(t, got)
		assert.Equal(t, []string{"A"}, got.Path)
	})

	t.Run("skips categories without labels", func(t *testing.T) {
		t.Parallel()

		got := naturallanguage.BestCategory([]*languagepb.ClassificationCategory{
			{Name: "/", Confidence: 0.9},
			{Name: "/Science", Confidence: 0.3},
		})

		require.NotNil(t, got)
		assert.Equal(t, []string{"Science"}, got.Path)
	})
}
