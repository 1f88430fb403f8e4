package provider

import (
	"fmt"

	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/search"
)

// Open builds the provider selected by cfg.Kind.
func Open(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			BaseURL:      cfg.BaseURL,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.MaxOutputTokens,
			Timeout:      cfg.RequestTimeout,
			MaxHistory:   cfg.MaxHistoryMessages,
		}), nil
	case "local":
		ix, err := search.LoadMarkdown(cfg.KnowledgePath)
		if err != nil {
			return nil, fmt.Errorf("load knowledge %s: %w", cfg.KnowledgePath, err)
		}
		return NewLocal(ix, cfg.Threshold, cfg.RefusalSentinel), nil
	default:
		return nil, fmt.Errorf("unknown answer provider %q", cfg.Kind)
	}
}
