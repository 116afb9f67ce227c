package approval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/security"
)

const (
	previewWidth      = 120
	writePreviewLines = 12
	patchPreviewLines = 16
	replacePreviewLen = 200
)

// BuildPreview renders what a request is about to do, capped per tool so
// the prompt stays readable. The user decides from this text; it must
// show the dangerous part, not just the tool name.
func BuildPreview(req events.ToolRequest) string {
	if security.IsShellTool(req.ToolName) {
		return fmt.Sprintf("$ %s", truncateLine(req.Command()))
	}

	switch strings.ToLower(req.ToolName) {
	case "write_file", "file_write":
		return writePreview(req)
	case "replace_text", "replace":
		return replacePreview(req)
	case "apply_patch", "patch":
		return headLines(req.StringParam("patch", "input"), patchPreviewLines)
	default:
		return paramsPreview(req)
	}
}

func writePreview(req events.ToolRequest) string {
	path := req.StringParam("path", "file", "target")
	content := req.StringParam("content", "text")
	body := headLines(content, writePreviewLines)
	return fmt.Sprintf("write %s:\n%s", path, body)
}

func replacePreview(req events.ToolRequest) string {
	path := req.StringParam("path", "file", "target")
	oldText := capText(req.StringParam("old_text", "old"), replacePreviewLen)
	newText := capText(req.StringParam("new_text", "new"), replacePreviewLen)
	return fmt.Sprintf("in %s replace:\n%s\nwith:\n%s", path, oldText, newText)
}

func paramsPreview(req events.ToolRequest) string {
	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, req.Params[k]))
	}
	return truncateLine(fmt.Sprintf("%s %s", req.ToolName, strings.Join(parts, " ")))
}

// headLines keeps the first n lines and notes how many were dropped.
func headLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	kept := make([]string, 0, n+1)
	for _, line := range lines[:n] {
		kept = append(kept, truncateLine(line))
	}
	kept = append(kept, fmt.Sprintf("... (%d more lines)", len(lines)-n))
	return strings.Join(kept, "\n")
}

func capText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return runewidth.Truncate(s, limit, "...")
}

// truncateLine bounds one line to the preview width, counting display
// cells so wide runes don't blow the budget.
func truncateLine(s string) string {
	return runewidth.Truncate(s, previewWidth, "...")
}
