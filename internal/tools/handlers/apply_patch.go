package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/tools/diff"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// ApplyPatchHandler applies unified diffs to the workspace via the
// system patch utility. Only unified diffs are accepted; every target
// path is containment-checked before the patch program runs.
type ApplyPatchHandler struct {
	resolver *workspace.Resolver
}

// NewApplyPatchHandler creates an apply_patch handler.
func NewApplyPatchHandler(resolver *workspace.Resolver) *ApplyPatchHandler {
	return &ApplyPatchHandler{resolver: resolver}
}

func (h *ApplyPatchHandler) Name() string { return "apply_patch" }

func (h *ApplyPatchHandler) Mutating() bool { return true }

func (h *ApplyPatchHandler) Handle(ctx context.Context, params map[string]any) (*events.ToolResult, error) {
	patchText, err := tools.StringArg(params, "patch")
	if err != nil {
		if raw, present := params["input"]; present {
			if s, ok := raw.(string); ok && s != "" {
				patchText = s
				err = nil
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if !diff.IsUnified(patchText) {
		return nil, tools.NewValidationError("only unified diff patches are supported")
	}

	paths := diff.Paths(patchText)
	if len(paths) == 0 {
		return nil, tools.NewValidationError("patch names no target files")
	}
	for _, p := range paths {
		if _, resolveErr := h.resolver.Resolve(p); resolveErr != nil {
			return events.Failure("%s", resolveErr.Error()), nil
		}
	}

	strip := diff.DetectStrip(patchText)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "patch", "-p"+strconv.Itoa(strip), "--batch")
	cmd.Dir = h.resolver.Root()
	cmd.Stdin = strings.NewReader(patchText)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return &events.ToolResult{
			Success:    false,
			Output:     stdout.String(),
			Error:      fmt.Sprintf("patch failed: %s", msg),
			ReturnCode: code,
		}, nil
	}

	return &events.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Applied patch to %s\n%s", strings.Join(paths, ", "), strings.TrimSpace(stdout.String())),
		Details: map[string]any{"files": paths, "strip": strip},
	}, nil
}
