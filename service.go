package aiagent

import (
	"log/slog"

	"github.com/ourstudio-se/ai-agent-backend/llm"
	"github.com/ourstudio-se/ai-agent-backend/observe"
	"github.com/ourstudio-se/ai-agent-backend/tools"
	"github.com/ourstudio-se/ai-agent-backend/tools/calc"
	"github.com/ourstudio-se/ai-agent-backend/tools/general"
	"github.com/ourstudio-se/ai-agent-backend/tools/weather"
)

// NewTools builds the static tool set from the config. provider may be nil.
func NewTools(cfg Config, provider llm.Provider, logger *slog.Logger) *tools.Registry {
	return tools.NewRegistry(
		calc.New(),
		weather.New(weather.Config{
			APIKey:          cfg.Weather.APIKey,
			BaseURL:         cfg.Weather.BaseURL,
			DefaultLocation: cfg.Weather.DefaultLocation,
			Timeout:         cfg.AgentTimeout,
			Logger:          logger,
		}),
		general.New(general.Config{
			Provider: provider,
			Timeout:  cfg.AgentTimeout,
			Logger:   logger,
		}),
	)
}

// NewAgentFromConfig wires the tools, the LLM provider and the router
// described by cfg.
func NewAgentFromConfig(cfg Config, metrics *observe.Metrics, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider := NewLLMProvider(cfg, logger)
	if provider == nil {
		logger.Warn("llm provider not configured, general queries will fail", "provider", cfg.LLMProvider)
	}
	if cfg.Weather.APIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY not set, weather queries will fail")
	}

	return NewAgent(Options{
		Tools:          NewTools(cfg, provider, logger),
		MaxQueryLength: cfg.MaxQueryLength,
		Metrics:        metrics,
		Logger:         logger,
	})
}
