// Package events defines the normalized event stream every backend must
// produce and the structured result every tool execution must yield.
//
// Backends differ wildly in wire format (SSE line streams, SDK streaming
// callbacks, canned local responses); this package is the single contract
// the approval controller and tool executor consume.
package events

import "fmt"

// Type classifies an event on the backend/executor stream.
type Type string

const (
	// TypeStatus is a short progress note ("Connecting...", "Executing: shell").
	TypeStatus Type = "status"
	// TypeThought is intermediate model reasoning surfaced to the user.
	TypeThought Type = "thought"
	// TypeToolRequest asks the core to perform an action on the local machine.
	TypeToolRequest Type = "tool_request"
	// TypeToolOutput carries output produced by a tool execution.
	TypeToolOutput Type = "tool_output"
	// TypeFinalResponse is the assistant's answer that ends a turn.
	TypeFinalResponse Type = "final_response"
	// TypeError reports a failure that did not kill the session.
	TypeError Type = "error"
)

// ToolRequest is a backend's request to perform one action. Immutable once
// issued; its life ends when a routing decision (and, if executed, a
// ToolResult) has been produced for it.
type ToolRequest struct {
	ToolName   string         `json:"tool_name"`
	Params     map[string]any `json:"params,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	// Reason is the backend's stated justification, shown in approval prompts.
	Reason string `json:"reason,omitempty"`
}

// Command returns the shell command string for shell-family requests,
// or the empty string when no command param is present.
func (r *ToolRequest) Command() string {
	if r == nil || r.Params == nil {
		return ""
	}
	if cmd, ok := r.Params["command"].(string); ok {
		return cmd
	}
	return ""
}

// StringParam returns the first non-empty string value among the given
// parameter keys. Backends are inconsistent about key names (path vs file
// vs target); tool handlers and preview builders use this to cope.
func (r *ToolRequest) StringParam(keys ...string) string {
	if r == nil || r.Params == nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := r.Params[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Event is one element of a backend or executor stream.
// Exactly one payload field is meaningful for a given Type:
// Request for TypeToolRequest, Content for everything else.
type Event struct {
	Type    Type         `json:"type"`
	Content string       `json:"content,omitempty"`
	Request *ToolRequest `json:"request,omitempty"`
}

// Status builds a status event.
func Status(content string) Event {
	return Event{Type: TypeStatus, Content: content}
}

// Thought builds a thought event.
func Thought(content string) Event {
	return Event{Type: TypeThought, Content: content}
}

// ToolOutput builds a tool_output event.
func ToolOutput(content string) Event {
	return Event{Type: TypeToolOutput, Content: content}
}

// FinalResponse builds a final_response event.
func FinalResponse(content string) Event {
	return Event{Type: TypeFinalResponse, Content: content}
}

// Errorf builds an error event with a formatted message.
func Errorf(format string, args ...any) Event {
	return Event{Type: TypeError, Content: fmt.Sprintf(format, args...)}
}

// ToolResult is the terminal, immutable outcome of executing (or refusing
// to execute) one ToolRequest.
type ToolResult struct {
	Success    bool           `json:"success"`
	Output     string         `json:"output"`
	Error      string         `json:"error,omitempty"`
	ReturnCode int            `json:"return_code"`
	Details    map[string]any `json:"details,omitempty"`
}

// Failure builds a failed ToolResult with the given error message.
func Failure(format string, args ...any) *ToolResult {
	return &ToolResult{
		Success:    false,
		Error:      fmt.Sprintf(format, args...),
		ReturnCode: -1,
	}
}
