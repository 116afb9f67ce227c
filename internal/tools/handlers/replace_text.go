package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// ReplaceTextHandler replaces literal occurrences of old_text with
// new_text in one file. A file that contains no occurrences is left
// untouched and reported as success; the backend often retries edits it
// has already made.
type ReplaceTextHandler struct {
	resolver *workspace.Resolver
}

// NewReplaceTextHandler creates a replace_text handler.
func NewReplaceTextHandler(resolver *workspace.Resolver) *ReplaceTextHandler {
	return &ReplaceTextHandler{resolver: resolver}
}

func (h *ReplaceTextHandler) Name() string { return "replace_text" }

func (h *ReplaceTextHandler) Mutating() bool { return true }

func (h *ReplaceTextHandler) Handle(_ context.Context, params map[string]any) (*events.ToolResult, error) {
	relPath, err := tools.StringArg(params, "path")
	if err != nil {
		return nil, err
	}
	oldText, err := tools.StringArg(params, "old_text")
	if err != nil {
		return nil, err
	}
	newText, err := tools.OptionalStringArg(params, "new_text", "")
	if err != nil {
		return nil, err
	}
	// count limits replacement to the first N occurrences; 0 means all.
	limit, err := tools.OptionalIntArg(params, "count", 0)
	if err != nil {
		return nil, err
	}

	path, err := h.resolver.Resolve(relPath)
	if err != nil {
		return events.Failure("%s", err.Error()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return events.Failure("file not found: %s", relPath), nil
		}
		return events.Failure("reading %s: %s", relPath, err.Error()), nil
	}

	content := string(data)
	count := strings.Count(content, oldText)
	if count == 0 {
		return &events.ToolResult{
			Success: true,
			Output:  fmt.Sprintf("No occurrences of old_text in %s; file unchanged", relPath),
			Details: map[string]any{"path": relPath, "replacements": 0},
		}, nil
	}

	if limit > 0 && limit < count {
		count = limit
	} else {
		limit = -1
	}
	updated := strings.Replace(content, oldText, newText, limit)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return events.Failure("writing %s: %s", relPath, err.Error()), nil
	}

	return &events.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Replaced %d occurrence(s) in %s", count, relPath),
		Details: map[string]any{"path": relPath, "replacements": count},
	}, nil
}
