package tools

import (
	"context"
	"fmt"
	"sync"
)

// Registry holds the statically registered tools, one per kind.
type Registry struct {
	tools map[Kind]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{
		tools: make(map[Kind]Tool, len(ts)),
	}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool of the same kind.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Kind()] = t
}

// Get returns the tool for a kind.
func (r *Registry) Get(kind Kind) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[kind]
	return t, ok
}

// Execute runs the tool registered for kind.
func (r *Registry) Execute(ctx context.Context, kind Kind, req Request) (string, error) {
	t, ok := r.Get(kind)
	if !ok {
		return "", NewRoutingError(fmt.Errorf("%w %q", ErrUnknownTool, kind))
	}
	return t.Execute(ctx, req)
}

// Kinds returns the registered kinds in routing priority order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.tools))
	for _, k := range Kinds {
		if _, ok := r.tools[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
