package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/vizi2000/agentzero-cli/internal/approval"
	"github.com/vizi2000/agentzero-cli/internal/events"
)

// ReadlinePrompter collects approval decisions on the terminal.
type ReadlinePrompter struct {
	rl       *readline.Instance
	renderer *Renderer
}

// NewReadlinePrompter wraps a readline instance for approval prompts.
func NewReadlinePrompter(rl *readline.Instance, renderer *Renderer) *ReadlinePrompter {
	return &ReadlinePrompter{rl: rl, renderer: renderer}
}

// Ask shows the request with its preview and blocks for a decision.
// Unrecognized input re-asks; EOF and interrupt reject.
func (p *ReadlinePrompter) Ask(req events.ToolRequest, preview string) (approval.Choice, error) {
	p.renderer.ToolRequest(req)
	p.renderer.Preview(preview)

	for {
		p.rl.SetPrompt(p.renderer.styles.Prompt.Render("[a]pprove / [r]eject / [e]xplain? "))
		line, err := p.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return approval.ChoiceReject, nil
			}
			return 0, fmt.Errorf("reading approval input: %w", err)
		}
		if choice, ok := ParseChoice(line); ok {
			return choice, nil
		}
		p.renderer.Info("please answer a, r, or e")
	}
}

// ShowExplanation displays a risk explanation between prompts.
func (p *ReadlinePrompter) ShowExplanation(text string) {
	p.renderer.Explanation(text)
}

// ParseChoice maps user input to an approval choice.
func ParseChoice(line string) (approval.Choice, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "a", "approve", "y", "yes":
		return approval.ChoiceApprove, true
	case "r", "reject", "n", "no":
		return approval.ChoiceReject, true
	case "e", "explain", "?":
		return approval.ChoiceExplain, true
	default:
		return 0, false
	}
}
