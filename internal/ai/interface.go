package ai

import (
	"context"
)

// Provider defines the two operations the pipeline consumes from an AI service.
// Implementations must return errors already classified with ClassifyProviderError.
type Provider interface {
	// ListModels returns identifiers of models that support content generation.
	ListModels(ctx context.Context) ([]string, error)

	// Generate issues a single generation call against model and returns the raw text.
	Generate(ctx context.Context, model, prompt string, cfg GenerationConfig) (string, error)
}
