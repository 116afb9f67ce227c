package tools

import (
	"context"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

// Handler is the interface for tool implementations.
type Handler interface {
	// Name returns the tool's canonical name.
	Name() string

	// Mutating reports whether this tool may modify the workspace.
	Mutating() bool

	// Handle executes the tool with the given parameters. Input problems
	// return an error; execution outcomes, including command failures,
	// are reported inside the result.
	Handle(ctx context.Context, params map[string]any) (*events.ToolResult, error)
}

// Registry stores tool handlers by name. Backends use several aliases
// for the same operation, so a handler may be registered under extra
// names.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register registers a handler under its canonical name plus aliases.
func (r *Registry) Register(handler Handler, aliases ...string) {
	r.handlers[strings.ToLower(handler.Name())] = handler
	for _, alias := range aliases {
		r.handlers[strings.ToLower(alias)] = handler
	}
}

// Resolve returns the handler for a tool name, or an UnsupportedToolError.
func (r *Registry) Resolve(name string) (Handler, error) {
	handler, ok := r.handlers[strings.ToLower(name)]
	if !ok {
		return nil, &UnsupportedToolError{Tool: name}
	}
	return handler, nil
}

// Has checks if a tool name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[strings.ToLower(name)]
	return ok
}
