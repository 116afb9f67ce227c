package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// WriteFileHandler writes file contents, creating parent directories as
// needed. Content may arrive under "content" or "text" depending on the
// backend.
type WriteFileHandler struct {
	resolver *workspace.Resolver
}

// NewWriteFileHandler creates a write_file handler.
func NewWriteFileHandler(resolver *workspace.Resolver) *WriteFileHandler {
	return &WriteFileHandler{resolver: resolver}
}

func (h *WriteFileHandler) Name() string { return "write_file" }

func (h *WriteFileHandler) Mutating() bool { return true }

func (h *WriteFileHandler) Handle(_ context.Context, params map[string]any) (*events.ToolResult, error) {
	relPath, err := tools.StringArg(params, "path")
	if err != nil {
		return nil, err
	}
	content, err := tools.OptionalStringArg(params, "content", "")
	if err != nil {
		return nil, err
	}
	if _, present := params["content"]; !present {
		content, err = tools.OptionalStringArg(params, "text", "")
		if err != nil {
			return nil, err
		}
		if _, present := params["text"]; !present {
			return nil, tools.NewValidationError("missing required argument: content")
		}
	}

	path, err := h.resolver.Resolve(relPath)
	if err != nil {
		return events.Failure("%s", err.Error()), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return events.Failure("creating directories for %s: %s", relPath, err.Error()), nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return events.Failure("writing %s: %s", relPath, err.Error()), nil
	}

	return &events.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Wrote %d bytes to %s", len(content), relPath),
		Details: map[string]any{"path": relPath, "bytes": len(content)},
	}, nil
}
