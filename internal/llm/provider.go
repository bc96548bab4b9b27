package llm

import (
	"context"
	"fmt"

	"github.com/RichardoC/parentpal/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel connects to the configured model provider.
func NewModel(ctx context.Context, cfg *config.Config) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderGoogleAI:
		model, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("init googleai: %w", err)
		}
		return model, nil
	case config.ProviderOpenAI:
		// Local OpenAI-compatible servers such as Ollama ignore the token but
		// the client refuses to start without one.
		token := cfg.OpenAIAPIKey
		if token == "" {
			token = "unused"
		}
		model, err := openai.New(
			openai.WithToken(token),
			openai.WithBaseURL(cfg.LLMBaseURL),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.LLMProvider)
	}
}
