// Package tools defines the contract shared by every query handler: the
// closed set of tool kinds, the Tool interface, parsed arguments and the
// typed failure returned when a tool cannot answer.
package tools

import "context"

// Kind identifies a tool. It is the output domain of query classification.
type Kind string

const (
	// KindMath evaluates arithmetic expressions.
	KindMath Kind = "math"

	// KindWeather looks up current weather conditions.
	KindWeather Kind = "weather"

	// KindGeneral forwards the query to an LLM.
	KindGeneral Kind = "general"
)

// Kinds lists every tool kind in routing priority order.
var Kinds = []Kind{KindMath, KindWeather, KindGeneral}

// String returns the kind as it appears on the wire.
func (k Kind) String() string {
	return string(k)
}

// Request is the input of a single tool invocation.
type Request struct {
	// Query is the raw user input, unmodified.
	Query string

	// Args holds arguments already extracted during classification.
	// Tools fall back to their own extraction when an argument is absent.
	Args Args
}

// Tool handles one category of query.
type Tool interface {
	// Kind returns the kind this tool serves.
	Kind() Kind

	// Execute answers the request. Failures are returned as *Error.
	Execute(ctx context.Context, req Request) (string, error)
}

// Args holds optional parsed tool arguments.
type Args map[string]any

// String returns a string argument or "" when absent.
func (a Args) String(name string) string {
	return a.StringOr(name, "")
}

// StringOr returns a string argument with a default.
func (a Args) StringOr(name, defaultValue string) string {
	if a == nil {
		return defaultValue
	}
	if v, ok := a[name]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return defaultValue
}
