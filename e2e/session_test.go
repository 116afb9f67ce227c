// End-to-end tests over the full offline pipeline: the local backend
// interprets a prompt, the observer router routes the resulting tool
// request, the approval controller collects a scripted decision, the
// executor runs the tool in a temp workspace, and the result is handed
// back to the backend for the turn's final response. No network, no
// API keys.
package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizi2000/agentzero-cli/internal/approval"
	"github.com/vizi2000/agentzero-cli/internal/backend"
	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/observer"
	"github.com/vizi2000/agentzero-cli/internal/security"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/tools/handlers"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

type autoPrompter struct {
	choice approval.Choice
	asked  int
}

func (p *autoPrompter) Ask(_ events.ToolRequest, _ string) (approval.Choice, error) {
	p.asked++
	return p.choice, nil
}

func (p *autoPrompter) ShowExplanation(string) {}

type pipeline struct {
	backend    backend.Backend
	router     *observer.Router
	executor   *tools.Executor
	controller *approval.Controller
	prompter   *autoPrompter
	rendered   []events.Event
}

func newPipeline(t *testing.T, mode security.Mode, blacklist []string, choice approval.Choice) *pipeline {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	resolver, err := workspace.NewResolver(dir)
	require.NoError(t, err)

	prompter := &autoPrompter{choice: choice}
	return &pipeline{
		backend:    backend.NewLocalBackend(),
		router:     observer.NewRouter(observer.Options{Mode: mode, Blacklist: blacklist}),
		executor:   tools.NewExecutor(handlers.NewRegistry(resolver, handlers.Limits{}), true, nil),
		controller: approval.NewController(prompter, nil),
		prompter:   prompter,
	}
}

// runTurn mirrors the session loop: stream, route, approve, execute,
// continue, until a final response or error arrives.
func (p *pipeline) runTurn(t *testing.T, prompt string) string {
	t.Helper()
	ctx := context.Background()

	stream, err := p.backend.StreamPrompt(ctx, prompt)
	require.NoError(t, err)

	for stream != nil {
		var pending *events.ToolRequest
		for ev := range stream {
			if ev.Type == events.TypeToolRequest && ev.Request != nil {
				pending = ev.Request
				break
			}
			p.rendered = append(p.rendered, ev)
			if ev.Type == events.TypeFinalResponse || ev.Type == events.TypeError {
				return ev.Content
			}
		}
		if pending == nil {
			t.Fatal("stream ended without final response or tool request")
		}

		result := p.handle(ctx, *pending)
		stream, err = p.backend.ExecuteTool(ctx, *pending, result)
		require.NoError(t, err)
	}
	t.Fatal("turn never completed")
	return ""
}

func (p *pipeline) handle(ctx context.Context, req events.ToolRequest) *events.ToolResult {
	verdict := p.router.Route(ctx, req)
	switch verdict.Decision {
	case security.DecisionBlock:
		return events.Failure("blocked: %s", verdict.Reason)
	case security.DecisionApprove:
		approved, err := p.controller.Decide(ctx, req)
		if err != nil || !approved {
			return events.Failure("rejected by user")
		}
	}
	emit := func(ev events.Event) { p.rendered = append(p.rendered, ev) }
	return p.executor.Execute(ctx, req, emit)
}

func TestTurn_ReadOnlyToolAutoExecutes(t *testing.T) {
	p := newPipeline(t, security.ModeBalanced, nil, approval.ChoiceReject)

	response := p.runTurn(t, "list")
	assert.Contains(t, response, "list_files finished successfully")
	assert.Zero(t, p.prompter.asked, "read-only tools must not prompt in balanced mode")
}

func TestTurn_ShellRequiresApproval(t *testing.T) {
	p := newPipeline(t, security.ModeBalanced, nil, approval.ChoiceApprove)

	response := p.runTurn(t, "run echo e2e-marker")
	assert.Contains(t, response, "e2e-marker")
	assert.Equal(t, 1, p.prompter.asked)
}

func TestTurn_ShellRejectionReachesBackend(t *testing.T) {
	p := newPipeline(t, security.ModeBalanced, nil, approval.ChoiceReject)

	response := p.runTurn(t, "run echo should-not-run")
	assert.Contains(t, response, "failed")
	assert.Contains(t, response, "rejected by user")
}

func TestTurn_BlacklistedCommandBlocked(t *testing.T) {
	p := newPipeline(t, security.ModeBalanced, []string{"rm -rf /"}, approval.ChoiceApprove)

	response := p.runTurn(t, "run rm -rf / --no-preserve-root")
	assert.Contains(t, response, "blocked")
	assert.Zero(t, p.prompter.asked, "blocked requests must never prompt")
}

func TestTurn_ParanoidPromptsForReads(t *testing.T) {
	p := newPipeline(t, security.ModeParanoid, nil, approval.ChoiceApprove)

	p.runTurn(t, "list")
	assert.Equal(t, 1, p.prompter.asked)
}

func TestTurn_GodModeRunsShellWithoutPrompt(t *testing.T) {
	p := newPipeline(t, security.ModeGodMode, nil, approval.ChoiceReject)

	response := p.runTurn(t, "run echo unattended")
	assert.Contains(t, response, "unattended")
	assert.Zero(t, p.prompter.asked)
}

func TestTurn_FileRoundTrip(t *testing.T) {
	p := newPipeline(t, security.ModeGodMode, nil, approval.ChoiceApprove)

	p.runTurn(t, "run sh -c 'echo hello-roundtrip > note.txt'")
	response := p.runTurn(t, "read note.txt")
	assert.Contains(t, response, "hello-roundtrip")
}

func TestTurn_ExecutorEmitsTerminalStatus(t *testing.T) {
	p := newPipeline(t, security.ModeBalanced, nil, approval.ChoiceApprove)
	p.runTurn(t, "list")

	found := false
	for _, ev := range p.rendered {
		if ev.Type == events.TypeStatus && ev.Content == "Execution complete" {
			found = true
		}
	}
	assert.True(t, found)
}
