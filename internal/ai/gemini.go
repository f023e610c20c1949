package ai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const generateContentMethod = "generateContent"

// GeminiProvider implements Provider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ListModels returns the models this API key may call generateContent on.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	it := p.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, ClassifyProviderError("", err)
		}
		if slices.Contains(m.SupportedGenerationMethods, generateContentMethod) {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// Generate sends prompt to model and returns the concatenated text parts.
func (p *GeminiProvider) Generate(ctx context.Context, model, prompt string, cfg GenerationConfig) (string, error) {
	gm := p.client.GenerativeModel(model)
	gm.SetTemperature(cfg.Temperature)
	gm.SetMaxOutputTokens(cfg.MaxOutputTokens)
	// Force JSON response for structured parsing.
	gm.ResponseMIMEType = cfg.ResponseMIMEType

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", ClassifyProviderError(model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &ProviderError{Kind: KindTransient, Model: model, Err: errors.New("no response candidates from Gemini")}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &ProviderError{Kind: KindTransient, Model: model, Err: errors.New("empty text in Gemini response")}
	}
	return text.String(), nil
}
