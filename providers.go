package aiagent

import (
	"log/slog"

	"github.com/ourstudio-se/ai-agent-backend/llm"
	"github.com/ourstudio-se/ai-agent-backend/llm/anthropic"
	"github.com/ourstudio-se/ai-agent-backend/llm/openai"
)

// NewLLMProvider builds the completion backend selected by
// cfg.LLMProvider. It returns nil when the selected provider lacks the
// credentials it needs; the general tool then reports itself as not
// configured.
func NewLLMProvider(cfg Config, logger *slog.Logger) llm.Provider {
	switch cfg.LLMProvider {
	case ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil
		}
		return anthropic.New(anthropic.Config{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Model:   cfg.Anthropic.Model,
		})
	default:
		if cfg.LMStudio.BaseURL == "" {
			return nil
		}
		return openai.New(openai.Config{
			BaseURL: cfg.LMStudio.BaseURL,
			APIKey:  cfg.LMStudio.APIKey,
			Model:   cfg.LMStudio.Model,
			Logger:  logger,
		})
	}
}
