// Package naturallanguage implements seoentity.Analyzer with the Google
// Cloud Natural Language API.
package naturallanguage

import (
	"context"
	"strings"

	language "cloud.google.com/go/language/apiv1"
	"cloud.google.com/go/language/apiv1/languagepb"
	"github.com/googleapis/gax-go/v2"
	"github.com/seoentity/seoentity"
)

// Client is the subset of the Natural Language client used by Analyzer.
// *language.Client satisfies it.
type Client interface {
	AnalyzeEntities(ctx context.Context, req *languagepb.AnalyzeEntitiesRequest, opts ...gax.CallOption) (*languagepb.AnalyzeEntitiesResponse, error)
	ClassifyText(ctx context.Context, req *languagepb.ClassifyTextRequest, opts ...gax.CallOption) (*languagepb.ClassifyTextResponse, error)
}

var _ Client = (*language.Client)(nil)

// Ensure Analyzer implements seoentity.Analyzer at compile time.
var _ seoentity.Analyzer = (*Analyzer)(nil)

// Metadata keys the service attaches to entities.
const (
	MetadataWikipediaURL = "wikipedia_url"
	MetadataMID          = "mid"
)

// Analyzer implements seoentity.Analyzer using the Natural Language API.
type Analyzer struct {
	client Client
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(client Client) *Analyzer {
	return &Analyzer{client: client}
}

// AnalyzeEntities sends text as a UTF-8 plain text document and maps the
// entities in response order.
func (a *Analyzer) AnalyzeEntities(ctx context.Context, text string) ([]seoentity.RawEntity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, seoentity.Errorf(seoentity.EINVALID, "text required")
	}

	resp, err := a.client.AnalyzeEntities(ctx, &languagepb.AnalyzeEntitiesRequest{
		Document:     document(text),
		EncodingType: languagepb.EncodingType_UTF8,
	})
	if err != nil {
		return nil, err
	}

	entities := make([]seoentity.RawEntity, 0, len(resp.GetEntities()))
	for _, e := range resp.GetEntities() {
		entities = append(entities, ToRawEntity(e))
	}
	return entities, nil
}

// ClassifyText returns the most confident category, or nil if the service
// returned none.
func (a *Analyzer) ClassifyText(ctx context.Context, text string) (*seoentity.Category, error) {
	if strings.TrimSpace(text) == "" {
		return nil, seoentity.Errorf(seoentity.EINVALID, "text required")
	}

	resp, err := a.client.ClassifyText(ctx, &languagepb.ClassifyTextRequest{
		Document: document(text),
	})
	if err != nil {
		return nil, err
	}
	return BestCategory(resp.GetCategories()), nil
}

// ToRawEntity converts a service entity.
func ToRawEntity(e *languagepb.Entity) seoentity.RawEntity {
	md := e.GetMetadata()
	return seoentity.RawEntity{
		Name:         e.GetName(),
		Type:         e.GetType().String(),
		Salience:     float64(e.GetSalience()),
		ReferenceURL: md[MetadataWikipediaURL],
		MID:          md[MetadataMID],
	}
}

// BestCategory picks the highest-confidence category. Ties keep the first.
func BestCategory(categories []*languagepb.ClassificationCategory) *seoentity.Category {
	var best *languagepb.ClassificationCategory
	for _, c := range categories {
		if seoentity.ParseCategory(c.GetName(), 0) == nil {
			continue
		}
		if best == nil || c.GetConfidence() > best.GetConfidence() {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return seoentity.ParseCategory(best.GetName(), float64(best.GetConfidence()))
}

func document(text string) *languagepb.Document {
	return &languagepb.Document{
		Source: &languagepb.Document_Content{Content: text},
		Type:   languagepb.Document_PLAIN_TEXT,
	}
}
