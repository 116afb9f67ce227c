// Package handlers contains built-in tool handler implementations.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
)

const outputTruncationMarker = "\n... [output truncated]"

// ShellHandler executes shell commands inside the workspace root. Each
// command runs in its own process group so a timeout kills the whole
// pipeline, not just the leading process.
type ShellHandler struct {
	workdir   string
	timeout   time.Duration
	maxOutput int
}

// NewShellHandler creates a shell handler rooted at workdir.
func NewShellHandler(workdir string, timeout time.Duration, maxOutput int) *ShellHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxOutput <= 0 {
		maxOutput = 10000
	}
	return &ShellHandler{workdir: workdir, timeout: timeout, maxOutput: maxOutput}
}

func (h *ShellHandler) Name() string { return "shell" }

func (h *ShellHandler) Mutating() bool { return true }

func (h *ShellHandler) Handle(ctx context.Context, params map[string]any) (*events.ToolResult, error) {
	command, err := tools.StringArg(params, "command")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = h.workdir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return &events.ToolResult{
			Success:    false,
			Output:     h.truncate(stdout.String()),
			Error:      fmt.Sprintf("command timed out after %s", h.timeout),
			ReturnCode: -1,
		}, nil
	}

	result := &events.ToolResult{
		Success: runErr == nil,
		Output:  h.truncate(stdout.String()),
		Error:   stderr.String(),
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ReturnCode = exitErr.ExitCode()
			if result.Error == "" {
				result.Error = runErr.Error()
			}
		} else {
			result.ReturnCode = -1
			result.Error = runErr.Error()
		}
	}
	return result, nil
}

func (h *ShellHandler) truncate(s string) string {
	if len(s) <= h.maxOutput {
		return s
	}
	return s[:h.maxOutput] + outputTruncationMarker
}
