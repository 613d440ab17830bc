package gemini

import (
	"context"

	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// Counter counts the tokens a model would see for text.
type Counter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

var _ Counter = (*TokenCounter)(nil)

// TokenCounter counts tokens locally using the Gemini tokenizer.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
