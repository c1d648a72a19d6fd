// Package tools lets chat models operate the lifecycle manager through
// function calling: each tool is a named function with a JSON-schema
// parameter description the model can discover and invoke.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/verlane/ollamactl/internal/llm"
)

// Handler executes a tool call. args holds the decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool couples a definition the model sees with the handler that runs.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters map[string]any
	Handler    Handler
}

// Registry is a concurrency-safe collection of tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	r.mu.Lock()
	r.tools[t.Name] = t
	r.mu.Unlock()
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the tool definitions in stable name order, ready
// to attach to a chat request.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, n := range names {
		t := r.tools[n]
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return defs
}

// Execute runs one tool call and returns its textual result. Unknown
// tools and handler failures come back as errors for the caller to relay
// to the model.
func (r *Registry) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	t, ok := r.Get(call.Function.Name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Function.Name)
	}
	out, err := t.Handler(ctx, call.Function.Arguments)
	if err != nil {
		return "", fmt.Errorf("tool %q failed: %w", call.Function.Name, err)
	}
	return out, nil
}
