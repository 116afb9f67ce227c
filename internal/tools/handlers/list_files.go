package handlers

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

const listTruncationMarker = "... (truncated)"

// ListFilesHandler walks a workspace directory with depth and entry
// caps. Well-known junk directories are skipped.
type ListFilesHandler struct {
	resolver   *workspace.Resolver
	maxDepth   int
	maxEntries int
	ignoreDirs map[string]bool
}

// NewListFilesHandler creates a list_files handler.
func NewListFilesHandler(resolver *workspace.Resolver, maxDepth, maxEntries int, ignoreDirs []string) *ListFilesHandler {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if maxEntries <= 0 {
		maxEntries = 200
	}
	ignore := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = true
	}
	return &ListFilesHandler{
		resolver:   resolver,
		maxDepth:   maxDepth,
		maxEntries: maxEntries,
		ignoreDirs: ignore,
	}
}

func (h *ListFilesHandler) Name() string { return "list_files" }

func (h *ListFilesHandler) Mutating() bool { return false }

func (h *ListFilesHandler) Handle(_ context.Context, params map[string]any) (*events.ToolResult, error) {
	relPath, err := tools.OptionalStringArg(params, "path", ".")
	if err != nil {
		return nil, err
	}
	if relPath == "" {
		relPath = "."
	}

	root, err := h.resolver.Resolve(relPath)
	if err != nil {
		return events.Failure("%s", err.Error()), nil
	}

	var lines []string
	count := 0
	truncated := false

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1

		if d.IsDir() {
			if h.ignoreDirs[d.Name()] || depth > h.maxDepth {
				return filepath.SkipDir
			}
		}
		if depth > h.maxDepth {
			return nil
		}

		if count >= h.maxEntries {
			truncated = true
			return filepath.SkipAll
		}
		count++

		if d.IsDir() {
			lines = append(lines, rel+"/")
			return nil
		}
		size := int64(0)
		if info, infoErr := d.Info(); infoErr == nil {
			size = info.Size()
		}
		lines = append(lines, fmt.Sprintf("%s (%d bytes)", rel, size))
		return nil
	})
	if walkErr != nil {
		return events.Failure("listing %s: %s", relPath, walkErr.Error()), nil
	}

	if truncated {
		lines = append(lines, listTruncationMarker)
	}
	return &events.ToolResult{
		Success: true,
		Output:  strings.Join(lines, "\n"),
		Details: map[string]any{"entries": count, "truncated": truncated},
	}, nil
}
