package handlers

import (
	"context"
	"os"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

const readTruncationMarker = "\n... (truncated; use start_line/end_line to read more)"

// ReadFileHandler reads workspace file contents with an optional line range.
// Unranged reads are capped at maxBytes so one huge file cannot flood the
// conversation.
type ReadFileHandler struct {
	resolver *workspace.Resolver
	maxBytes int
}

// NewReadFileHandler creates a read_file handler. maxBytes <= 0 selects
// the default cap.
func NewReadFileHandler(resolver *workspace.Resolver, maxBytes int) *ReadFileHandler {
	if maxBytes <= 0 {
		maxBytes = 256 * 1024
	}
	return &ReadFileHandler{resolver: resolver, maxBytes: maxBytes}
}

func (h *ReadFileHandler) Name() string { return "read_file" }

func (h *ReadFileHandler) Mutating() bool { return false }

func (h *ReadFileHandler) Handle(_ context.Context, params map[string]any) (*events.ToolResult, error) {
	relPath, err := tools.StringArg(params, "path")
	if err != nil {
		return nil, err
	}
	startLine, err := tools.OptionalIntArg(params, "start_line", 0)
	if err != nil {
		return nil, err
	}
	endLine, err := tools.OptionalIntArg(params, "end_line", 0)
	if err != nil {
		return nil, err
	}
	if startLine < 0 || endLine < 0 {
		return nil, tools.NewValidationError("line numbers must be positive")
	}
	if startLine > 0 && endLine > 0 && endLine < startLine {
		return nil, tools.NewValidationError("end_line must not precede start_line")
	}

	path, err := h.resolver.Resolve(relPath)
	if err != nil {
		return events.Failure("%s", err.Error()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return events.Failure("file not found: %s", relPath), nil
		case os.IsPermission(err):
			return events.Failure("permission denied: %s", relPath), nil
		default:
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return events.Failure("is a directory: %s", relPath), nil
			}
			return events.Failure("reading %s: %s", relPath, err.Error()), nil
		}
	}

	content := string(data)
	truncated := false
	if startLine > 0 || endLine > 0 {
		content = sliceLines(content, startLine, endLine)
	} else if len(content) > h.maxBytes {
		content = content[:h.maxBytes] + readTruncationMarker
		truncated = true
	}

	return &events.ToolResult{
		Success: true,
		Output:  content,
		Details: map[string]any{"path": relPath, "bytes": len(data), "truncated": truncated},
	}, nil
}

// sliceLines returns the 1-based inclusive line range. Bounds beyond the
// file clamp to its edges.
func sliceLines(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end < 1 || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
