// Package openai implements llm.Provider on top of any OpenAI-compatible
// chat completions endpoint, such as a local LM Studio server.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	oai "github.com/sashabaranov/go-openai"

	"github.com/ourstudio-se/ai-agent-backend/llm"
)

// Config for the OpenAI-compatible provider.
type Config struct {
	// BaseURL of the API, e.g. http://localhost:1234/v1 for LM Studio.
	BaseURL string

	// APIKey sent as bearer token. LM Studio accepts any value.
	APIKey string

	// Model used when the request does not name one.
	Model string

	Logger *slog.Logger
}

// Provider implements llm.Provider for OpenAI-compatible APIs.
type Provider struct {
	client *oai.Client
	model  string
	logger *slog.Logger
}

var _ llm.Provider = (*Provider)(nil)

// New creates a provider with the given config.
func New(cfg Config) *Provider {
	clientCfg := oai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return NewWithClient(oai.NewClientWithConfig(clientCfg), cfg.Model, logger)
}

// NewWithClient wraps an existing go-openai client.
func NewWithClient(client *oai.Client, model string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Chat sends a single chat completion request.
func (p *Provider) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	r := p.buildRequest(req)

	p.logger.Debug("llm request",
		"provider", "openai",
		"model", r.Model,
		"messages", len(r.Messages))

	resp, err := p.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.ErrNoChoices
	}

	choice := resp.Choices[0]

	p.logger.Debug("llm response",
		"provider", "openai",
		"finish_reason", choice.FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return &llm.Response{
		Content:    choice.Message.Content,
		StopReason: stopReason(choice.FinishReason),
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (p *Provider) buildRequest(req llm.Request) oai.ChatCompletionRequest {
	messages := make([]oai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, oai.ChatCompletionMessage{
			Role:    oai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, oai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	// The client omits a zero temperature from the payload, which leaves the
	// server default in place; the smallest non-zero value is sent instead.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return oai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	}
}

func stopReason(r oai.FinishReason) llm.StopReason {
	if r == oai.FinishReasonLength {
		return llm.StopReasonLength
	}
	return llm.StopReasonEnd
}
