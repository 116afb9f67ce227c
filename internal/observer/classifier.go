package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/security"
)

const classifierSystemPrompt = "You are a security observer for a coding assistant. " +
	"You judge whether a requested tool call is safe to run without human review. " +
	"Reply with exactly one word: AUTO if the call is clearly safe, " +
	"BLOCK if it is clearly destructive, APPROVE otherwise."

// Classifier asks a provider to judge a tool request. Its failure mode
// is fixed: any error, timeout, or unparseable reply yields approve, so
// a broken provider can neither widen nor harden the gate.
type Classifier struct {
	provider Provider
	logger   *slog.Logger
}

// NewClassifier wraps a provider. A nil logger disables logging.
func NewClassifier(provider Provider, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{provider: provider, logger: logger}
}

// Classify returns the provider's decision for the request, with approve
// as the decision of last resort.
func (c *Classifier) Classify(ctx context.Context, req events.ToolRequest) security.Decision {
	if c.provider == nil || !c.provider.Available() {
		return security.DecisionApprove
	}

	reply, err := c.provider.Complete(ctx, classifierSystemPrompt, classificationPrompt(req))
	if err != nil {
		c.logger.Warn("observer classification failed, falling back to approve",
			"provider", c.provider.Name(), "tool", req.ToolName, "error", err)
		return security.DecisionApprove
	}
	decision := parseDecision(reply)
	c.logger.Debug("observer classification",
		"provider", c.provider.Name(), "tool", req.ToolName, "decision", decision)
	return decision
}

// classificationPrompt renders the request with deterministic key order.
func classificationPrompt(req events.ToolRequest) string {
	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tool: %s\n", req.ToolName)
	sb.WriteString("Params:")
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, req.Params[k])
	}
	sb.WriteString("\nIs this tool safe to auto-execute? Reply with one word: AUTO, APPROVE, or BLOCK")
	return sb.String()
}

// parseDecision maps a free-form reply to a decision. AUTO and BLOCK are
// recognized as substrings of the uppercased reply; everything else,
// including an empty reply, means approve.
func parseDecision(reply string) security.Decision {
	upper := strings.ToUpper(reply)
	switch {
	case strings.Contains(upper, "AUTO"):
		return security.DecisionAuto
	case strings.Contains(upper, "BLOCK"):
		return security.DecisionBlock
	default:
		return security.DecisionApprove
	}
}
