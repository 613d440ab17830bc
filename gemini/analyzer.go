// Package gemini implements seoentity.Analyzer with a Gemini model asked
// for structured JSON output.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seoentity/seoentity"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Analyzer implements seoentity.Analyzer at compile time.
var _ seoentity.Analyzer = (*Analyzer)(nil)

// Analyzer implements seoentity.Analyzer using Google Gemini.
type Analyzer struct {
	client    *genai.Client
	model     string
	counter   Counter
	maxTokens int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(a *Analyzer) {
		if model != "" {
			a.model = model
		}
	}
}

// WithTokenLimit rejects texts longer than max tokens before calling the API.
func WithTokenLimit(c Counter, max int) Option {
	return func(a *Analyzer) {
		a.counter = c
		a.maxTokens = max
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(client *genai.Client, opts ...Option) *Analyzer {
	a := &Analyzer{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeEntities asks the model for the named entities in text.
func (a *Analyzer) AnalyzeEntities(ctx context.Context, text string) ([]seoentity.RawEntity, error) {
	if err := a.check(ctx, text); err != nil {
		return nil, err
	}

	out, err := a.generate(ctx, BuildEntitiesPrompt(text), EntitiesConfig())
	if err != nil {
		return nil, err
	}
	return ParseEntities(out)
}

// ClassifyText asks the model for the content category of text.
func (a *Analyzer) ClassifyText(ctx context.Context, text string) (*seoentity.Category, error) {
	if err := a.check(ctx, text); err != nil {
		return nil, err
	}

	out, err := a.generate(ctx, BuildCategoryPrompt(text), CategoryConfig())
	if err != nil {
		return nil, err
	}
	return ParseCategories(out)
}

func (a *Analyzer) check(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return seoentity.Errorf(seoentity.EINVALID, "text required")
	}
	if a.counter == nil || a.maxTokens <= 0 {
		return nil
	}
	n, err := a.counter.CountTokens(ctx, text)
	if err != nil {
		return err
	}
	if n > a.maxTokens {
		return seoentity.Errorf(seoentity.EINVALID, "text is %d tokens, limit is %d", n, a.maxTokens)
	}
	return nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", seoentity.Errorf(seoentity.EINTERNAL, "gemini returned nil result")
	}
	return result.Text(), nil
}

// EntitiesConfig returns the GenerateContentConfig for entity extraction.
// The response is constrained to a JSON object with an "entities" array.
func EntitiesConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	types := make([]string, 0, len(seoentity.EntityTypes))
	for _, t := range seoentity.EntityTypes {
		types = append(types, string(t))
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract named entities from text for search engine optimization. " +
					"Report each distinct entity once, with a salience between 0 and 1 that reflects " +
					"how central it is to the text. Salience values across all entities should sum to about 1.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"entities": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":          {Type: genai.TypeString},
							"type":          {Type: genai.TypeString, Enum: types},
							"salience":      {Type: genai.TypeNumber},
							"wikipedia_url": {Type: genai.TypeString},
						},
						Required: []string{"name", "type", "salience"},
					},
				},
			},
			Required: []string{"entities"},
		},
	}
}

// CategoryConfig returns the GenerateContentConfig for classification.
func CategoryConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You classify web content into a content category path such as " +
					"\"/Arts & Entertainment/Music & Audio\". Confidence is between 0 and 1.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"categories": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":       {Type: genai.TypeString},
							"confidence": {Type: genai.TypeNumber},
						},
						Required: []string{"name", "confidence"},
					},
				},
			},
			Required: []string{"categories"},
		},
	}
}

// BuildEntitiesPrompt wraps text for entity extraction.
func BuildEntitiesPrompt(text string) string {
	return fmt.Sprintf("List the named entities in the following text.\n\n<text>\n%s\n</text>", text)
}

// BuildCategoryPrompt wraps text for classification.
func BuildCategoryPrompt(text string) string {
	return fmt.Sprintf("Classify the following text.\n\n<text>\n%s\n</text>", text)
}

type entitiesResponse struct {
	Entities []struct {
		Name         string  `json:"name"`
		Type         string  `json:"type"`
		Salience     float64 `json:"salience"`
		WikipediaURL string  `json:"wikipedia_url"`
	} `json:"entities"`
}

type categoriesResponse struct {
	Categories []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"categories"`
}

// ParseEntities decodes the model's JSON entity list.
func ParseEntities(out string) ([]seoentity.RawEntity, error) {
	var resp entitiesResponse
	if err := json.Unmarshal([]byte(stripFence(out)), &resp); err != nil {
		return nil, seoentity.Errorf(seoentity.EUNAVAILABLE, "decoding gemini entities: %v", err)
	}

	entities := make([]seoentity.RawEntity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entities = append(entities, seoentity.RawEntity{
			Name:         e.Name,
			Type:         e.Type,
			Salience:     e.Salience,
			ReferenceURL: e.WikipediaURL,
		})
	}
	return entities, nil
}

// ParseCategories decodes the model's categories and returns the most
// confident one, or nil when there are none.
func ParseCategories(out string) (*seoentity.Category, error) {
	var resp categoriesResponse
	if err := json.Unmarshal([]byte(stripFence(out)), &resp); err != nil {
		return nil, seoentity.Errorf(seoentity.EUNAVAILABLE, "decoding gemini categories: %v", err)
	}

	var best *seoentity.Category
	bestConf := -1.0
	for _, c := range resp.Categories {
		cat := seoentity.ParseCategory(c.Name, c.Confidence)
		if cat == nil || c.Confidence <= bestConf {
			continue
		}
		best, bestConf = cat, c.Confidence
	}
	return best, nil
}

// stripFence removes a markdown code fence the model sometimes adds
// despite the JSON response type.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
