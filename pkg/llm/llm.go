package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/quizfinderz-backend/pkg/config"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
)

var (
	// ErrNotConfigured is returned by New when no provider or key is set.
	ErrNotConfigured = errors.New("llm: provider not configured")
	// ErrEmptyContent means the provider answered without any text.
	ErrEmptyContent = errors.New("llm: empty content")
)

// Request is one system/user prompt pair plus generation parameters.
type Request struct {
	System          string
	User            string
	MaxOutputTokens int
	Temperature     float64
	// JSON asks the provider for a single JSON object when it supports a JSON mode.
	JSON bool
}

// Client issues a single completion. Implementations do not retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the client for the configured provider.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	switch cfg.ProviderName() {
	case enums.LLMProviderOpenAI:
		return NewOpenAIClient(OpenAIOptions{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case enums.LLMProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}
