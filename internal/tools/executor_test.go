package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

type echoHandler struct {
	name     string
	mutating bool
	result   *events.ToolResult
	err      error
	calls    int
}

func (h *echoHandler) Name() string    { return h.name }
func (h *echoHandler) Mutating() bool  { return h.mutating }
func (h *echoHandler) Handle(_ context.Context, _ map[string]any) (*events.ToolResult, error) {
	h.calls++
	return h.result, h.err
}

func collect() (func(events.Event), *[]events.Event) {
	var got []events.Event
	return func(ev events.Event) { got = append(got, ev) }, &got
}

func TestExecute_EmitsStatusOutputAndTerminal(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&echoHandler{
		name:   "read_file",
		result: &events.ToolResult{Success: true, Output: "hello"},
	})
	executor := NewExecutor(registry, true, nil)

	emit, got := collect()
	result := executor.Execute(context.Background(),
		events.ToolRequest{ToolName: "read_file"}, emit)

	require.True(t, result.Success)
	require.Len(t, *got, 3)
	assert.Equal(t, events.TypeStatus, (*got)[0].Type)
	assert.Equal(t, events.TypeToolOutput, (*got)[1].Type)
	assert.Equal(t, "hello", (*got)[1].Content)
	assert.Equal(t, events.TypeStatus, (*got)[2].Type)
	assert.Equal(t, "Execution complete", (*got)[2].Content)
}

func TestExecute_UnsupportedToolFailsExplicitly(t *testing.T) {
	executor := NewExecutor(NewRegistry(), true, nil)

	emit, got := collect()
	result := executor.Execute(context.Background(),
		events.ToolRequest{ToolName: "launch_missiles"}, emit)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported tool: launch_missiles")
	// Terminal marker still emitted.
	assert.Equal(t, "Execution complete", (*got)[len(*got)-1].Content)
}

func TestExecute_ShellGate(t *testing.T) {
	shell := &echoHandler{name: "shell", mutating: true,
		result: &events.ToolResult{Success: true, Output: "ran"}}
	registry := NewRegistry()
	registry.Register(shell, "terminal")
	executor := NewExecutor(registry, false, nil)

	emit, _ := collect()
	result := executor.Execute(context.Background(),
		events.ToolRequest{ToolName: "terminal", Params: map[string]any{"command": "ls"}}, emit)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "shell execution is disabled")
	assert.Zero(t, shell.calls)

	executor.SetAllowShell(true)
	result = executor.Execute(context.Background(),
		events.ToolRequest{ToolName: "terminal", Params: map[string]any{"command": "ls"}}, emit)
	assert.True(t, result.Success)
	assert.Equal(t, 1, shell.calls)
}

func TestExecute_HandlerErrorBecomesFailure(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&echoHandler{name: "read_file", err: NewValidationError("missing required argument: path")})
	executor := NewExecutor(registry, true, nil)

	emit, got := collect()
	result := executor.Execute(context.Background(),
		events.ToolRequest{ToolName: "read_file"}, emit)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "missing required argument")
	assert.Equal(t, events.TypeError, (*got)[1].Type)
}

type panickyHandler struct{}

func (h *panickyHandler) Name() string   { return "read_file" }
func (h *panickyHandler) Mutating() bool { return false }
func (h *panickyHandler) Handle(_ context.Context, _ map[string]any) (*events.ToolResult, error) {
	var m map[string]int
	m["boom"] = 1
	return nil, nil
}

func TestExecute_HandlerPanicBecomesFailure(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&panickyHandler{})
	executor := NewExecutor(registry, true, nil)

	emit, got := collect()
	result := executor.Execute(context.Background(),
		events.ToolRequest{ToolName: "read_file"}, emit)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "internal error in read_file")
	assert.Equal(t, "Execution complete", (*got)[len(*got)-1].Content)
}

func TestRegistry_AliasesResolve(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&echoHandler{name: "shell"}, "terminal", "command")

	for _, name := range []string{"shell", "terminal", "command", "SHELL"} {
		h, err := registry.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, "shell", h.Name())
	}

	_, err := registry.Resolve("zsh")
	assert.True(t, IsUnsupportedTool(err))
}
