// Package observer routes tool requests to a security decision. A pure
// rule layer decides the common cases; shell commands that fall through
// are checked against user prefix rules; anything still undecided may be
// referred to an LLM classifier. The classifier is advisory only: any
// failure on its path degrades to approve, never to auto or block.
package observer

import (
	"context"
	"errors"
)

// ErrProviderUnavailable indicates the provider is not configured or
// cannot be reached.
var ErrProviderUnavailable = errors.New("observer provider unavailable")

// Provider produces one completion for a classification prompt.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Available reports whether the provider is configured well enough
	// to attempt a call.
	Available() bool
	// Complete sends the prompt and returns the raw model reply.
	Complete(ctx context.Context, system, prompt string) (string, error)
}
