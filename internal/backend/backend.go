// Package backend defines the contract every conversation backend must
// satisfy and implements the concrete ones: OpenRouter, Anthropic, the
// remote agent HTTP API, and a deterministic local fallback.
//
// Backends differ wildly in wire format; the contract is that all of
// them emit the normalized event stream from internal/events, so the
// session loop, approval controller, and executor never see a concrete
// backend type.
package backend

import (
	"context"
	"errors"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

// ErrNoBackend indicates no backend could be constructed.
var ErrNoBackend = errors.New("no backend available")

// Backend is one conversation partner. Streams end by channel close;
// a stream always carries either a final_response or an error event
// before closing.
type Backend interface {
	// Name identifies the backend in logs and the UI.
	Name() string

	// StreamPrompt sends one user prompt and streams the reply. The
	// returned channel is closed when the turn's events are exhausted.
	StreamPrompt(ctx context.Context, prompt string) (<-chan events.Event, error)

	// ExplainRisk produces a free-text risk assessment of a tool request,
	// shown during approval.
	ExplainRisk(ctx context.Context, req events.ToolRequest) (string, error)

	// ExecuteTool reports the locally produced result of a tool request
	// back to the backend and streams the turn's continuation.
	ExecuteTool(ctx context.Context, req events.ToolRequest, result *events.ToolResult) (<-chan events.Event, error)

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// emitAll delivers events to a fresh channel from a goroutine, honoring
// context cancellation.
func emitAll(ctx context.Context, evs []events.Event) <-chan events.Event {
	ch := make(chan events.Event)
	go func() {
		defer close(ch)
		for _, ev := range evs {
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
