// Package anthropic provides an Anthropic LLM provider implementation.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ourstudio-se/ai-agent-backend/llm"
)

// DefaultModel is used when neither the config nor the request names one.
const DefaultModel = "claude-3-5-haiku-latest"

// Provider implements llm.Provider for Anthropic's API.
type Provider struct {
	client anthropic.Client
	model  string
}

var _ llm.Provider = (*Provider)(nil)

// Config for the Anthropic provider.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// New creates a new Anthropic provider with the given config. Requests are
// sent once; the caller owns timeouts through the context.
func New(cfg Config) *Provider {
	opts := []option.RequestOption{option.WithMaxRetries(0)}

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Chat sends a chat request to Anthropic and returns the response.
func (p *Provider) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    toAnthropicMessages(req.Messages),
		Temperature: anthropic.Float(req.Temperature),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages failed: %w", err)
	}

	return fromAnthropicResponse(resp), nil
}

func toAnthropicMessages(msgs []llm.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case llm.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return result
}

func fromAnthropicResponse(resp *anthropic.Message) *llm.Response {
	result := &llm.Response{
		StopReason: llm.StopReasonEnd,
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	if resp.StopReason == "max_tokens" {
		result.StopReason = llm.StopReasonLength
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			result.Content += block.Text
		}
	}

	return result
}
