package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

// LocalBackend is a deterministic offline backend. It maps a handful of
// imperative phrasings onto tool requests and answers everything else
// with a canned response. It exists so the whole pipeline, including
// routing and approval, works with no network and no API keys.
type LocalBackend struct{}

// NewLocalBackend creates the local backend. It is always available.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) StreamPrompt(ctx context.Context, prompt string) (<-chan events.Event, error) {
	return emitAll(ctx, b.interpret(prompt)), nil
}

func (b *LocalBackend) interpret(prompt string) []events.Event {
	trimmed := strings.TrimSpace(prompt)
	lower := strings.ToLower(trimmed)

	toolRequest := func(name string, params map[string]any, reason string) []events.Event {
		return []events.Event{
			events.Status("Interpreting request locally"),
			{Type: events.TypeToolRequest, Request: &events.ToolRequest{
				ToolName:   name,
				Params:     params,
				ToolCallID: uuid.NewString(),
				Reason:     reason,
			}},
		}
	}

	for _, verb := range []string{"run ", "execute ", "exec "} {
		if strings.HasPrefix(lower, verb) {
			command := strings.TrimSpace(trimmed[len(verb):])
			return toolRequest("shell", map[string]any{"command": command},
				"user asked to run a command")
		}
	}
	for _, verb := range []string{"read ", "show ", "open "} {
		if strings.HasPrefix(lower, verb) {
			path := strings.TrimSpace(trimmed[len(verb):])
			path = strings.TrimPrefix(path, "file ")
			return toolRequest("read_file", map[string]any{"path": path},
				"user asked to read a file")
		}
	}
	if lower == "ls" || lower == "list" || strings.HasPrefix(lower, "list ") {
		path := "."
		if strings.HasPrefix(lower, "list ") {
			path = strings.TrimSpace(trimmed[5:])
			path = strings.TrimPrefix(path, "files ")
			if path == "" {
				path = "."
			}
		}
		return toolRequest("list_files", map[string]any{"path": path},
			"user asked for a listing")
	}
	for _, verb := range []string{"search ", "find ", "grep "} {
		if strings.HasPrefix(lower, verb) {
			query := strings.TrimSpace(trimmed[len(verb):])
			return toolRequest("search_text", map[string]any{"query": query},
				"user asked to search")
		}
	}

	return []events.Event{
		events.FinalResponse("I am the offline backend. I can run commands " +
			"(\"run <cmd>\"), read files (\"read <path>\"), list files (\"list\"), " +
			"and search (\"search <text>\"). Configure an API key for a real model."),
	}
}

// riskMarkers is ordered roughly by severity; the order fixes the order
// of warnings in the explanation.
var riskMarkers = []struct {
	marker string
	note   string
}{
	{"rm -rf", "recursively deletes files without confirmation"},
	{"rm -r", "recursively deletes files"},
	{"mkfs", "formats a filesystem, destroying its contents"},
	{"dd if=", "writes raw data to a device"},
	{"shutdown", "powers off or reboots the machine"},
	{"sudo", "runs with elevated privileges"},
	{"| sh", "pipes downloaded content straight into a shell"},
	{"| bash", "pipes downloaded content straight into a shell"},
	{"curl", "downloads data from the network"},
	{"wget", "downloads data from the network"},
	{"chmod", "changes file permissions"},
}

func (b *LocalBackend) ExplainRisk(_ context.Context, req events.ToolRequest) (string, error) {
	command := strings.ToLower(req.Command())
	if command == "" {
		return fmt.Sprintf("The %s tool operates only inside the workspace; "+
			"review the shown parameters before approving.", req.ToolName), nil
	}

	var warnings []string
	for _, risk := range riskMarkers {
		if strings.Contains(command, risk.marker) {
			warnings = append(warnings, fmt.Sprintf("%q %s", risk.marker, risk.note))
		}
	}

	if len(warnings) == 0 {
		return "No known dangerous patterns detected. The command still runs " +
			"with your full user permissions; review it before approving.", nil
	}
	return "Potential risks: " + strings.Join(warnings, "; ") + ".", nil
}

func (b *LocalBackend) ExecuteTool(ctx context.Context, req events.ToolRequest, result *events.ToolResult) (<-chan events.Event, error) {
	var final string
	if result.Success {
		final = fmt.Sprintf("%s finished successfully.", req.ToolName)
		if strings.TrimSpace(result.Output) != "" {
			final += "\n\n" + result.Output
		}
	} else {
		final = fmt.Sprintf("%s failed: %s", req.ToolName, result.Error)
	}
	return emitAll(ctx, []events.Event{events.FinalResponse(final)}), nil
}

func (b *LocalBackend) Close() error { return nil }
