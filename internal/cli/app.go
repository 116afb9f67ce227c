package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chzyer/readline"

	"github.com/vizi2000/agentzero-cli/internal/approval"
	"github.com/vizi2000/agentzero-cli/internal/backend"
	"github.com/vizi2000/agentzero-cli/internal/config"
	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/observer"
	"github.com/vizi2000/agentzero-cli/internal/security"
	"github.com/vizi2000/agentzero-cli/internal/tools"
)

// App ties the session together: one backend, one router, one executor,
// one approval controller. Turns run strictly sequentially; a turn ends
// when the backend stream carries a final response or an error.
type App struct {
	cfg        *config.Config
	backend    backend.Backend
	router     *observer.Router
	executor   *tools.Executor
	controller *approval.Controller
	renderer   *Renderer
	rl         *readline.Instance
	logger     *slog.Logger
}

// Options assembles an App.
type Options struct {
	Config   *config.Config
	Backend  backend.Backend
	Router   *observer.Router
	Executor *tools.Executor
	Renderer *Renderer
	Logger   *slog.Logger
}

// NewApp builds the interactive session.
func NewApp(opts Options) (*App, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("initializing input: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := &App{
		cfg:      opts.Config,
		backend:  opts.Backend,
		router:   opts.Router,
		executor: opts.Executor,
		renderer: opts.Renderer,
		rl:       rl,
		logger:   logger,
	}
	prompter := NewReadlinePrompter(rl, opts.Renderer)
	app.controller = approval.NewController(prompter, riskExplainer{opts.Backend})
	return app, nil
}

// riskExplainer adapts the backend's risk capability to the approval
// controller's interface.
type riskExplainer struct {
	backend backend.Backend
}

func (r riskExplainer) ExplainRisk(ctx context.Context, req events.ToolRequest) (string, error) {
	return r.backend.ExplainRisk(ctx, req)
}

// Run is the session loop. It returns when the user quits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.rl.Close()
	defer a.backend.Close()

	a.renderer.Info(fmt.Sprintf("connected to %s backend, security mode %s (/help for commands)",
		a.backend.Name(), a.router.Mode()))

	for {
		a.rl.SetPrompt("> ")
		line, err := a.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if line == "" {
			continue
		}

		if cmd, ok := ParseCommand(line); ok {
			if quit := a.runCommand(cmd); quit {
				return nil
			}
			continue
		}

		if err := a.runTurn(ctx, line); err != nil {
			a.renderer.Warn("turn failed: " + err.Error())
			a.logger.Error("turn failed", "error", err)
		}
	}
}

// runTurn drives one user turn to completion. Tool requests suspend the
// stream: the request is routed, possibly approved, executed (or
// refused), and the result handed back to the backend, which continues
// the turn on a fresh stream.
func (a *App) runTurn(ctx context.Context, prompt string) error {
	stream, err := a.backend.StreamPrompt(ctx, prompt)
	if err != nil {
		return err
	}

	for stream != nil {
		var pending *events.ToolRequest

		for ev := range stream {
			if ev.Type == events.TypeToolRequest && ev.Request != nil {
				pending = ev.Request
				break
			}
			a.renderer.Event(ev)
		}
		if pending == nil {
			return nil // stream exhausted, turn complete
		}
		// Backends emit at most one tool request per stream, as its last
		// event; further requests from the same assistant message arrive
		// on the continuation streams ExecuteTool returns. Drain anyway
		// so a misbehaving remote stream cannot leak its goroutine.
		go func(rest <-chan events.Event) {
			for range rest {
			}
		}(stream)

		result := a.handleToolRequest(ctx, *pending)
		stream, err = a.backend.ExecuteTool(ctx, *pending, result)
		if err != nil {
			return err
		}
	}
	return nil
}

// handleToolRequest routes one request and produces its terminal result,
// executing only on auto or explicit human approval.
func (a *App) handleToolRequest(ctx context.Context, req events.ToolRequest) *events.ToolResult {
	verdict := a.router.Route(ctx, req)
	a.logger.Info("routed tool request",
		"tool", req.ToolName, "decision", verdict.Decision.String(), "source", verdict.Source)

	switch verdict.Decision {
	case security.DecisionBlock:
		a.renderer.Blocked(req, verdict.Reason)
		reason := verdict.Reason
		if reason == "" {
			reason = "denied by security policy"
		}
		return events.Failure("blocked: %s", reason)

	case security.DecisionApprove:
		approved, err := a.controller.Decide(ctx, req)
		if err != nil {
			a.renderer.Warn("approval failed: " + err.Error())
			return events.Failure("approval failed: %s", err.Error())
		}
		if !approved {
			a.renderer.Rejected(req)
			return events.Failure("rejected by user")
		}
	case security.DecisionAuto:
		a.renderer.ToolRequest(req)
	}

	return a.executor.Execute(ctx, req, a.renderer.Event)
}
