// Package cli implements the interactive terminal session: rendering,
// the approval prompt, slash commands, and the turn loop.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

// Renderer writes styled events to the terminal. Final responses go
// through a markdown renderer when one could be constructed.
type Renderer struct {
	out        io.Writer
	styles     Styles
	mdRenderer *glamour.TermRenderer
}

// NewRenderer creates a renderer. Colors and markdown degrade gracefully
// when stdout is not a terminal.
func NewRenderer(out io.Writer, noColor, noMarkdown bool) *Renderer {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	styles := DefaultStyles()
	if noColor || !isTTY {
		styles = PlainStyles()
	}

	r := &Renderer{out: out, styles: styles}
	if !noMarkdown && isTTY {
		width := 80
		if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 {
			width = tw
		}
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			r.mdRenderer = md
		}
	}
	return r
}

// Event renders one stream event. Tool requests are not rendered here;
// the session loop owns their routing and approval display.
func (r *Renderer) Event(ev events.Event) {
	switch ev.Type {
	case events.TypeStatus:
		fmt.Fprintln(r.out, r.styles.Status.Render("· "+ev.Content))
	case events.TypeThought:
		fmt.Fprintln(r.out, r.styles.Thought.Render(ev.Content))
	case events.TypeToolOutput:
		if strings.TrimSpace(ev.Content) != "" {
			fmt.Fprintln(r.out, ev.Content)
		}
	case events.TypeFinalResponse:
		r.FinalResponse(ev.Content)
	case events.TypeError:
		fmt.Fprintln(r.out, r.styles.Failure.Render("error: "+ev.Content))
	}
}

// FinalResponse renders the assistant's answer, as markdown when possible.
func (r *Renderer) FinalResponse(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if r.mdRenderer != nil {
		if rendered, err := r.mdRenderer.Render(text); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, text)
}

// ToolRequest announces a request before routing.
func (r *Renderer) ToolRequest(req events.ToolRequest) {
	line := "→ " + r.styles.ToolName.Render(req.ToolName)
	if req.Reason != "" {
		line += " " + r.styles.Info.Render("("+req.Reason+")")
	}
	fmt.Fprintln(r.out, line)
}

// Preview shows the approval preview body.
func (r *Renderer) Preview(preview string) {
	for _, line := range strings.Split(preview, "\n") {
		fmt.Fprintln(r.out, r.styles.Preview.Render("  "+line))
	}
}

// Blocked announces a request rejected by policy.
func (r *Renderer) Blocked(req events.ToolRequest, reason string) {
	msg := fmt.Sprintf("blocked %s", req.ToolName)
	if reason != "" {
		msg += ": " + reason
	}
	fmt.Fprintln(r.out, r.styles.Blocked.Render("✗ "+msg))
}

// Rejected announces a request the user declined.
func (r *Renderer) Rejected(req events.ToolRequest) {
	fmt.Fprintln(r.out, r.styles.Failure.Render("✗ rejected "+req.ToolName))
}

// Info prints dimmed informational text.
func (r *Renderer) Info(text string) {
	fmt.Fprintln(r.out, r.styles.Info.Render(text))
}

// Warn prints a warning.
func (r *Renderer) Warn(text string) {
	fmt.Fprintln(r.out, r.styles.Failure.Render(text))
}

// ModeBadge formats a security mode name for display.
func (r *Renderer) ModeBadge(mode string) string {
	return r.styles.ModeBadge.Render(mode)
}

// Explanation prints a risk explanation block.
func (r *Renderer) Explanation(text string) {
	fmt.Fprintln(r.out, r.styles.Info.Render("risk: ")+text)
}
