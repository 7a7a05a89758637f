// Package general implements the fallback tool that forwards a query to an
// LLM completion endpoint.
package general

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ourstudio-se/ai-agent-backend/llm"
	"github.com/ourstudio-se/ai-agent-backend/tools"
)

const (
	// SystemPrompt frames every completion.
	SystemPrompt = "You are a helpful AI assistant. Provide clear, accurate, and helpful responses to user questions. Be concise but informative."

	DefaultTemperature = 0.1
	DefaultMaxTokens   = 500
	DefaultTimeout     = 30 * time.Second
)

// Config for the general tool.
type Config struct {
	// Provider answers the query. A nil provider makes every call fail with
	// tools.ErrNotConfigured.
	Provider llm.Provider

	// Model is passed through to the provider; empty uses its default.
	Model string

	// Temperature is the sampling temperature; nil selects DefaultTemperature
	// so that an explicit 0 stays expressible.
	Temperature *float64

	MaxTokens int
	Timeout   time.Duration
	Logger    *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Tool answers free-form questions. It keeps no conversation state.
type Tool struct {
	cfg Config
}

var _ tools.Tool = (*Tool)(nil)

// New creates the general tool.
func New(cfg Config) *Tool {
	return &Tool{cfg: cfg.withDefaults()}
}

// Kind returns tools.KindGeneral.
func (t *Tool) Kind() tools.Kind {
	return tools.KindGeneral
}

// Execute sends the query verbatim as a single user turn.
func (t *Tool) Execute(ctx context.Context, req tools.Request) (string, error) {
	if t.cfg.Provider == nil {
		return "", tools.NewLLMError(tools.ErrNotConfigured, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	resp, err := t.cfg.Provider.Chat(ctx, llm.Request{
		Model:       t.cfg.Model,
		System:      SystemPrompt,
		Messages:    []llm.Message{llm.UserMessage(req.Query)},
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: *t.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNoChoices) {
			return "", tools.NewLLMError(tools.ErrEmptyCompletion, nil)
		}
		return "", tools.NewLLMError(tools.ErrUpstream, err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", tools.NewLLMError(tools.ErrEmptyCompletion, nil)
	}

	t.cfg.Logger.Debug("llm completion",
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason)

	return content, nil
}
