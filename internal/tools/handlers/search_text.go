package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// SearchTextHandler finds literal matches in workspace files. The query
// is never treated as a regular expression. Results are formatted one
// per line as path:line: content. Files larger than maxFileBytes are
// skipped entirely.
type SearchTextHandler struct {
	resolver     *workspace.Resolver
	maxResults   int
	maxFileBytes int64
	ignoreDirs   map[string]bool
}

// NewSearchTextHandler creates a search_text handler. Non-positive caps
// select the defaults.
func NewSearchTextHandler(resolver *workspace.Resolver, maxResults int, maxFileBytes int64, ignoreDirs []string) *SearchTextHandler {
	if maxResults <= 0 {
		maxResults = 100
	}
	if maxFileBytes <= 0 {
		maxFileBytes = 1024 * 1024
	}
	ignore := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = true
	}
	return &SearchTextHandler{
		resolver:     resolver,
		maxResults:   maxResults,
		maxFileBytes: maxFileBytes,
		ignoreDirs:   ignore,
	}
}

func (h *SearchTextHandler) Name() string { return "search_text" }

func (h *SearchTextHandler) Mutating() bool { return false }

func (h *SearchTextHandler) Handle(ctx context.Context, params map[string]any) (*events.ToolResult, error) {
	query, err := tools.StringArg(params, "query")
	if err != nil {
		return nil, err
	}
	relPath, err := tools.OptionalStringArg(params, "path", ".")
	if err != nil {
		return nil, err
	}
	if relPath == "" {
		relPath = "."
	}
	caseSensitive, err := tools.OptionalBoolArg(params, "case_sensitive", true)
	if err != nil {
		return nil, err
	}

	root, err := h.resolver.Resolve(relPath)
	if err != nil {
		return events.Failure("%s", err.Error()), nil
	}

	var matches []string
	truncated := false

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if h.ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= h.maxResults {
			truncated = true
			return filepath.SkipAll
		}
		if info, infoErr := d.Info(); infoErr != nil || info.Size() > h.maxFileBytes {
			return nil
		}

		rel, relErr := filepath.Rel(h.resolver.Root(), path)
		if relErr != nil {
			rel = path
		}
		fileMatches, scanErr := searchFile(path, rel, query, caseSensitive, h.maxResults-len(matches))
		if scanErr != nil {
			return nil // unreadable or binary files are skipped
		}
		matches = append(matches, fileMatches...)
		return nil
	})
	if walkErr != nil && ctx.Err() == nil {
		return events.Failure("searching %s: %s", relPath, walkErr.Error()), nil
	}
	if ctx.Err() != nil {
		return events.Failure("search cancelled"), nil
	}

	output := strings.Join(matches, "\n")
	if len(matches) == 0 {
		output = fmt.Sprintf("No matches for %q", query)
	} else if truncated {
		output += "\n" + listTruncationMarker
	}
	return &events.ToolResult{
		Success: true,
		Output:  output,
		Details: map[string]any{"matches": len(matches), "truncated": truncated},
	}, nil
}

func searchFile(path, rel, query string, caseSensitive bool, budget int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !caseSensitive {
		query = strings.ToLower(query)
	}

	var matches []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.Contains(line, "\x00") {
			return nil, nil // binary file
		}
		haystack := line
		if !caseSensitive {
			haystack = strings.ToLower(line)
		}
		if strings.Contains(haystack, query) {
			matches = append(matches, fmt.Sprintf("%s:%d: %s", rel, lineNo, strings.TrimSpace(line)))
			if len(matches) >= budget {
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return matches, err
	}
	return matches, nil
}
