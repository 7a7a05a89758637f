// Package aiagent routes natural-language queries to one of a fixed set of
// tools (arithmetic, weather, general LLM chat) and serves the result over
// HTTP.
package aiagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ourstudio-se/ai-agent-backend/observe"
	"github.com/ourstudio-se/ai-agent-backend/tools"
)

// Options configures an Agent.
type Options struct {
	// Tools holds one tool per kind.
	// Required; every kind in tools.Kinds must be registered.
	Tools *tools.Registry

	// Rules classify queries in order.
	// Defaults to DefaultRules().
	Rules []Rule

	// Hooks run around tool execution.
	// Optional.
	Hooks *HookRegistry

	// MaxQueryLength is the maximum query length in characters.
	// Defaults to 1000.
	MaxQueryLength int

	// Metrics records query outcomes.
	// Optional - defaults to instruments that record nothing.
	Metrics *observe.Metrics

	// Logger is the structured logger.
	// Optional - defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Rules == nil {
		o.Rules = DefaultRules()
	}
	if o.Hooks == nil {
		o.Hooks = NewHookRegistry()
	}
	if o.MaxQueryLength <= 0 {
		o.MaxQueryLength = 1000
	}
	if o.Metrics == nil {
		o.Metrics = observe.Discard()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o Options) validate() error {
	if o.Tools == nil {
		return errors.New("tools registry is required")
	}
	for _, kind := range tools.Kinds {
		if _, ok := o.Tools.Get(kind); !ok {
			return fmt.Errorf("no tool registered for %q", kind)
		}
	}
	return nil
}

// Agent classifies a query, runs exactly one tool and wraps the outcome.
// It holds no per-request state and is safe for concurrent use.
type Agent struct {
	router         *Router
	tools          *tools.Registry
	hooks          *HookRegistry
	maxQueryLength int
	metrics        *observe.Metrics
	logger         *slog.Logger
}

// NewAgent creates an agent with the given options.
func NewAgent(opts Options) (*Agent, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid agent options: %w", err)
	}

	return &Agent{
		router:         NewRouter(opts.Rules),
		tools:          opts.Tools,
		hooks:          opts.Hooks,
		maxQueryLength: opts.MaxQueryLength,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
	}, nil
}

// Validate rejects empty, whitespace-only and overlong queries.
func (a *Agent) Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return tools.NewValidationError(tools.ErrEmptyQuery)
	}
	if n := utf8.RuneCountInString(query); n > a.maxQueryLength {
		return tools.NewValidationError(fmt.Errorf("%w: %d characters, maximum is %d", tools.ErrQueryTooLong, n, a.maxQueryLength))
	}
	return nil
}

// Classify returns the tool kind a query routes to, without running it.
func (a *Agent) Classify(query string) tools.Kind {
	kind, _ := a.router.Route(query)
	return kind
}

// Route validates the query, runs the selected tool once and returns the
// response envelope. Tool failures are returned unchanged as *tools.Error;
// there is no fallback to another tool.
func (a *Agent) Route(ctx context.Context, query string) (*QueryResponse, error) {
	if err := a.Validate(query); err != nil {
		return nil, err
	}

	kind, args := a.router.Route(query)
	if args == nil {
		args = tools.Args{}
	}

	a.logger.Info("query routed",
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.String("tool", kind.String()))

	start := time.Now()
	result, err := a.execute(ctx, kind, query, args)
	duration := time.Since(start)

	var errKind string
	if err != nil {
		errKind = "Unknown"
		if te, ok := tools.AsError(err); ok {
			errKind = string(te.Kind)
		}
	}
	a.metrics.RecordQuery(ctx, kind.String(), duration, errKind)

	if err != nil {
		a.logger.Warn("tool executed",
			slog.String("request_id", RequestIDFromContext(ctx)),
			slog.String("tool", kind.String()),
			slog.Duration("duration", duration),
			slog.String("status", observe.StatusError),
			slog.String("error", err.Error()))
		return nil, err
	}

	a.logger.Info("tool executed",
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.String("tool", kind.String()),
		slog.Duration("duration", duration),
		slog.String("status", observe.StatusOK))

	return &QueryResponse{
		Query:    query,
		ToolUsed: kind,
		Result:   result,
	}, nil
}

func (a *Agent) execute(ctx context.Context, kind tools.Kind, query string, args tools.Args) (string, error) {
	metadata := make(map[string]any)

	if hook, ok := a.hooks.GetPreprocess(kind); ok {
		req := &PreprocessRequest{Kind: kind, Query: query, Args: args, Metadata: metadata}
		if err := hook(ctx, req); err != nil {
			return "", hookError("preprocess", kind, err)
		}
		args = req.Args
	}

	start := time.Now()
	result, err := a.tools.Execute(ctx, kind, tools.Request{Query: query, Args: args})
	if err != nil {
		return "", err
	}

	if hook, ok := a.hooks.GetPostprocess(kind); ok {
		req := &PostprocessRequest{Kind: kind, Query: query, Result: result, Duration: time.Since(start), Metadata: metadata}
		if err := hook(ctx, req); err != nil {
			return "", hookError("postprocess", kind, err)
		}
		result = req.Result
	}

	return result, nil
}

// hookError keeps typed failures from hooks and classifies anything else as
// a routing failure.
func hookError(stage string, kind tools.Kind, err error) error {
	if _, ok := tools.AsError(err); ok {
		return err
	}
	return tools.NewRoutingError(fmt.Errorf("%s hook for %s: %w", stage, kind, err))
}
