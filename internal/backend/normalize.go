package backend

import (
	"encoding/json"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

// remoteEvent is the wire shape of one remote API stream element.
type remoteEvent struct {
	Type       string         `json:"type"`
	Content    string         `json:"content"`
	ToolName   string         `json:"tool_name"`
	Command    string         `json:"command"`
	Reason     string         `json:"reason"`
	Payload    map[string]any `json:"payload"`
	ToolCallID string         `json:"tool_call_id"`
	ContextID  string         `json:"context_id"`
}

// normalizeRemoteEvent maps one decoded wire event onto the internal
// event union. Unknown types are dropped (ok=false): the stream contract
// is defined by the types we know, and a newer server must not break an
// older client.
func normalizeRemoteEvent(raw remoteEvent) (events.Event, bool) {
	switch events.Type(raw.Type) {
	case events.TypeStatus:
		return events.Status(raw.Content), true
	case events.TypeThought:
		return events.Thought(raw.Content), true
	case events.TypeToolOutput:
		return events.ToolOutput(raw.Content), true
	case events.TypeFinalResponse:
		return events.FinalResponse(raw.Content), true
	case events.TypeError:
		return events.Event{Type: events.TypeError, Content: raw.Content}, true
	case events.TypeToolRequest:
		params := raw.Payload
		if params == nil {
			params = map[string]any{}
		}
		// The wire puts the command beside the payload; fold it in so
		// routing sees one parameter map.
		if raw.Command != "" {
			if _, present := params["command"]; !present {
				params["command"] = raw.Command
			}
		}
		return events.Event{
			Type: events.TypeToolRequest,
			Request: &events.ToolRequest{
				ToolName:   raw.ToolName,
				Params:     params,
				ToolCallID: raw.ToolCallID,
				Reason:     raw.Reason,
			},
		}, true
	default:
		return events.Event{}, false
	}
}

// parseRemoteLine decodes one stream line. Blank lines and SSE framing
// ("data: " prefixes, comment lines) are tolerated.
func parseRemoteLine(line []byte) (remoteEvent, bool) {
	trimmed := trimSSE(line)
	if len(trimmed) == 0 {
		return remoteEvent{}, false
	}
	var raw remoteEvent
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return remoteEvent{}, false
	}
	return raw, true
}

func trimSSE(line []byte) []byte {
	s := line
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\r') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == '\r' || s[len(s)-1] == '\n' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	if len(s) == 0 || s[0] == ':' {
		return nil
	}
	const prefix = "data:"
	if len(s) >= len(prefix) && string(s[:len(prefix)]) == prefix {
		s = s[len(prefix):]
		for len(s) > 0 && s[0] == ' ' {
			s = s[1:]
		}
	}
	if len(s) > 0 && string(s) == "[DONE]" {
		return nil
	}
	return s
}
