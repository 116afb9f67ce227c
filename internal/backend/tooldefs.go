package backend

// toolSpec declares one tool the cloud backends may call. Both the
// Anthropic and the OpenAI-compatible wire formats are generated from
// this table.
type toolSpec struct {
	name        string
	description string
	properties  map[string]any
	required    []string
}

var chatToolSpecs = []toolSpec{
	{
		name:        "shell",
		description: "Run a shell command in the user's workspace and return its output.",
		properties: map[string]any{
			"command": map[string]any{"type": "string", "description": "The command to run."},
		},
		required: []string{"command"},
	},
	{
		name:        "read_file",
		description: "Read a file from the workspace, optionally limited to a line range.",
		properties: map[string]any{
			"path":       map[string]any{"type": "string", "description": "Workspace-relative file path."},
			"start_line": map[string]any{"type": "integer", "description": "First line to read (1-based)."},
			"end_line":   map[string]any{"type": "integer", "description": "Last line to read (inclusive)."},
		},
		required: []string{"path"},
	},
	{
		name:        "write_file",
		description: "Write content to a workspace file, creating parent directories.",
		properties: map[string]any{
			"path":    map[string]any{"type": "string", "description": "Workspace-relative file path."},
			"content": map[string]any{"type": "string", "description": "Full file content."},
		},
		required: []string{"path", "content"},
	},
	{
		name:        "list_files",
		description: "List files under a workspace directory.",
		properties: map[string]any{
			"path": map[string]any{"type": "string", "description": "Directory to list, defaults to the workspace root."},
		},
	},
	{
		name:        "search_text",
		description: "Search workspace files for a literal substring.",
		properties: map[string]any{
			"query":          map[string]any{"type": "string", "description": "Literal text to find."},
			"path":           map[string]any{"type": "string", "description": "Directory to search, defaults to the workspace root."},
			"case_sensitive": map[string]any{"type": "boolean", "description": "Match case exactly; defaults to true."},
		},
		required: []string{"query"},
	},
	{
		name:        "replace_text",
		description: "Replace occurrences of a literal string in one file.",
		properties: map[string]any{
			"path":     map[string]any{"type": "string", "description": "Workspace-relative file path."},
			"old_text": map[string]any{"type": "string", "description": "Text to replace."},
			"new_text": map[string]any{"type": "string", "description": "Replacement text."},
			"count":    map[string]any{"type": "integer", "description": "Replace only the first N occurrences; omit for all."},
		},
		required: []string{"path", "old_text"},
	},
	{
		name:        "apply_patch",
		description: "Apply a unified diff to the workspace.",
		properties: map[string]any{
			"patch": map[string]any{"type": "string", "description": "Unified diff text."},
		},
		required: []string{"patch"},
	},
}

const chatSystemPrompt = "You are a careful coding assistant working in the " +
	"user's local workspace. Use the provided tools to inspect and modify " +
	"files or run commands. Every tool call is reviewed by a security gate " +
	"and may require the user's approval, so keep calls minimal and explain " +
	"what you are doing."
