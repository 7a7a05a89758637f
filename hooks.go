package aiagent

import (
	"context"
	"sync"
	"time"

	"github.com/ourstudio-se/ai-agent-backend/tools"
)

// PreprocessHook is called after routing and before the tool executes.
// It may add or change arguments; the query is always forwarded verbatim.
type PreprocessHook func(ctx context.Context, req *PreprocessRequest) error

// PostprocessHook is called after a tool succeeds.
// It may rewrite the result.
type PostprocessHook func(ctx context.Context, req *PostprocessRequest) error

// PreprocessRequest contains data available during preprocessing.
type PreprocessRequest struct {
	// Kind is the tool selected by the router.
	Kind tools.Kind

	// Query is the raw user query.
	Query string

	// Args are the arguments extracted by the router (can be modified by the hook).
	Args tools.Args

	// Metadata allows passing data between pre and post hooks.
	Metadata map[string]any
}

// PostprocessRequest contains data available during postprocessing.
type PostprocessRequest struct {
	// Kind is the tool that was executed.
	Kind tools.Kind

	// Query is the raw user query.
	Query string

	// Result is the tool output (can be modified by the hook).
	Result string

	// Duration is how long the tool took.
	Duration time.Duration

	// Metadata from preprocessing.
	Metadata map[string]any
}

// HookRegistry manages pre/post processing hooks, one of each per tool kind.
type HookRegistry struct {
	mu          sync.RWMutex
	preprocess  map[tools.Kind]PreprocessHook
	postprocess map[tools.Kind]PostprocessHook
}

// NewHookRegistry creates a new hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		preprocess:  make(map[tools.Kind]PreprocessHook),
		postprocess: make(map[tools.Kind]PostprocessHook),
	}
}

// RegisterPreprocess registers a preprocessing hook for a tool kind.
func (r *HookRegistry) RegisterPreprocess(kind tools.Kind, hook PreprocessHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preprocess[kind] = hook
}

// RegisterPostprocess registers a postprocessing hook for a tool kind.
func (r *HookRegistry) RegisterPostprocess(kind tools.Kind, hook PostprocessHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postprocess[kind] = hook
}

// GetPreprocess returns the preprocessing hook for a tool kind.
func (r *HookRegistry) GetPreprocess(kind tools.Kind) (PreprocessHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hook, ok := r.preprocess[kind]
	return hook, ok
}

// GetPostprocess returns the postprocessing hook for a tool kind.
func (r *HookRegistry) GetPostprocess(kind tools.Kind) (PostprocessHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hook, ok := r.postprocess[kind]
	return hook, ok
}

// WithPreprocess is a fluent method to register a preprocessing hook.
func (r *HookRegistry) WithPreprocess(kind tools.Kind, hook PreprocessHook) *HookRegistry {
	r.RegisterPreprocess(kind, hook)
	return r
}

// WithPostprocess is a fluent method to register a postprocessing hook.
func (r *HookRegistry) WithPostprocess(kind tools.Kind, hook PostprocessHook) *HookRegistry {
	r.RegisterPostprocess(kind, hook)
	return r
}
