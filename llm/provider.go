// Package llm defines a provider-agnostic chat completion interface.
package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is returned when a provider answers without any completion.
var ErrNoChoices = errors.New("provider returned no choices")

// Provider defines the interface for LLM providers
type Provider interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}

// Request is a provider-agnostic chat request
type Request struct {
	// Model overrides the provider's configured model when set.
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Message is a provider-agnostic message
type Message struct {
	Role    Role
	Content string
}

// Role is the message role
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Response is a provider-agnostic response
type Response struct {
	Content    string
	StopReason StopReason
	Usage      Usage
}

// StopReason indicates why the model stopped
type StopReason string

const (
	StopReasonEnd    StopReason = "end"
	StopReasonLength StopReason = "length"
)

// Usage contains token usage information
type Usage struct {
	InputTokens  int
	OutputTokens int
}
