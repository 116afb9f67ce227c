package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/security"
)

// Executor runs approved tool requests and narrates them as an event
// stream: a status event when execution starts, the tool output or an
// error event, and a terminal "Execution complete" status. The terminal
// status is emitted on every path so callers can use it as an
// end-of-execution marker.
type Executor struct {
	registry   *Registry
	allowShell bool
	logger     *slog.Logger
}

// NewExecutor creates an executor over a registry. allowShell gates the
// shell tools independently of routing.
func NewExecutor(registry *Registry, allowShell bool, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{registry: registry, allowShell: allowShell, logger: logger}
}

// SetAllowShell updates the shell gate for subsequent executions.
func (e *Executor) SetAllowShell(allow bool) {
	e.allowShell = allow
}

// Execute runs one tool request. The returned result always has Success
// set correctly; failures never propagate as panics or bare errors.
func (e *Executor) Execute(ctx context.Context, req events.ToolRequest, emit func(events.Event)) *events.ToolResult {
	emit(events.Status(fmt.Sprintf("Executing %s...", req.ToolName)))
	result := e.run(ctx, req)

	if result.Success {
		emit(events.ToolOutput(result.Output))
	} else {
		emit(events.Errorf("%s", result.Error))
	}
	emit(events.Status("Execution complete"))
	return result
}

func (e *Executor) run(ctx context.Context, req events.ToolRequest) *events.ToolResult {
	handler, err := e.registry.Resolve(req.ToolName)
	if err != nil {
		e.logger.Warn("tool not supported", "tool", req.ToolName)
		return events.Failure("%s", err.Error())
	}

	if security.IsShellTool(req.ToolName) && !e.allowShell {
		return events.Failure("shell execution is disabled (security.allow_shell=false)")
	}

	e.logger.Debug("executing tool", "tool", handler.Name(), "mutating", handler.Mutating())
	result, err := e.safeHandle(ctx, handler, req.Params)
	if err != nil {
		e.logger.Warn("tool execution failed", "tool", handler.Name(), "error", err)
		return events.Failure("%s", err.Error())
	}
	return result
}

// safeHandle invokes a handler and converts panics into errors, so a
// buggy handler cannot take down the session.
func (e *Executor) safeHandle(ctx context.Context, handler Handler, params map[string]any) (result *events.ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool handler panicked", "tool", handler.Name(), "panic", r)
			result = nil
			err = fmt.Errorf("internal error in %s: %v", handler.Name(), r)
		}
	}()
	return handler.Handle(ctx, params)
}
