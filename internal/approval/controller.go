// Package approval owns the human decision loop for tool requests that
// routing marked approve. It is a small state machine: Idle until a
// request needs review, AwaitingDecision while the prompt is open, and
// Explaining while a risk explanation is being fetched. Explaining
// always returns to AwaitingDecision; only approve or reject leaves the
// loop.
package approval

import (
	"context"
	"fmt"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

// Choice is one answer to an approval prompt.
type Choice int

const (
	ChoiceApprove Choice = iota
	ChoiceReject
	ChoiceExplain
)

func (c Choice) String() string {
	switch c {
	case ChoiceApprove:
		return "approve"
	case ChoiceReject:
		return "reject"
	case ChoiceExplain:
		return "explain"
	default:
		return fmt.Sprintf("choice(%d)", int(c))
	}
}

// State is the controller's position in the decision loop.
type State int

const (
	StateIdle State = iota
	StateAwaitingDecision
	StateExplaining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateExplaining:
		return "explaining"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Prompter presents one request to the user and collects a choice.
type Prompter interface {
	// Ask shows the request and its preview, then blocks for a choice.
	Ask(req events.ToolRequest, preview string) (Choice, error)
	// ShowExplanation displays a fetched risk explanation (or a notice
	// that fetching it failed) before the prompt is re-asked.
	ShowExplanation(text string)
}

// RiskExplainer produces a human-readable risk assessment for a request.
type RiskExplainer interface {
	ExplainRisk(ctx context.Context, req events.ToolRequest) (string, error)
}

// Controller runs the approval loop for one request at a time.
type Controller struct {
	prompter  Prompter
	explainer RiskExplainer
	state     State
}

// NewController creates a controller. explainer may be nil; the explain
// choice then shows a notice instead of an assessment.
func NewController(prompter Prompter, explainer RiskExplainer) *Controller {
	return &Controller{prompter: prompter, explainer: explainer, state: StateIdle}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Decide runs the loop for one request and reports whether the user
// approved it. A prompter error (EOF, interrupt) counts as rejection.
func (c *Controller) Decide(ctx context.Context, req events.ToolRequest) (bool, error) {
	preview := BuildPreview(req)
	c.state = StateAwaitingDecision
	defer func() { c.state = StateIdle }()

	for {
		choice, err := c.prompter.Ask(req, preview)
		if err != nil {
			return false, fmt.Errorf("approval prompt: %w", err)
		}
		switch choice {
		case ChoiceApprove:
			return true, nil
		case ChoiceReject:
			return false, nil
		case ChoiceExplain:
			c.state = StateExplaining
			c.prompter.ShowExplanation(c.explain(ctx, req))
			c.state = StateAwaitingDecision
		default:
			return false, fmt.Errorf("approval prompt: unknown choice %v", choice)
		}
	}
}

// explain fetches the risk assessment. Failures never abort the loop;
// the user still holds the decision.
func (c *Controller) explain(ctx context.Context, req events.ToolRequest) string {
	if c.explainer == nil {
		return "No risk explainer is available for this session."
	}
	text, err := c.explainer.ExplainRisk(ctx, req)
	if err != nil {
		return fmt.Sprintf("Could not fetch a risk explanation: %v", err)
	}
	return text
}
