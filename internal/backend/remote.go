package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// RemoteBackend talks to a remote agent HTTP API. Requests carry the
// conversation context_id once the server has assigned one, plus a
// redacted workspace context bundle on the first turn. The response is
// either one JSON object or a line/SSE stream of JSON events; both are
// normalized into the internal event union.
type RemoteBackend struct {
	apiURL  string
	apiKey  string
	stream  bool
	client  *http.Client
	builder *workspace.ContextBuilder
	logger  *slog.Logger

	contextID   string
	contextSent bool
}

// RemoteOptions configures a RemoteBackend.
type RemoteOptions struct {
	APIURL  string
	APIKey  string
	Stream  bool
	Timeout time.Duration
	// Builder assembles the workspace context bundle; nil disables it.
	Builder *workspace.ContextBuilder
	Logger  *slog.Logger
}

// NewRemoteBackend creates a remote backend.
func NewRemoteBackend(opts RemoteOptions) *RemoteBackend {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RemoteBackend{
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		apiKey:  opts.APIKey,
		stream:  opts.Stream,
		client:  &http.Client{Timeout: opts.Timeout},
		builder: opts.Builder,
		logger:  logger,
	}
}

func (b *RemoteBackend) Name() string { return "remote" }

func (b *RemoteBackend) StreamPrompt(ctx context.Context, prompt string) (<-chan events.Event, error) {
	body := map[string]any{"message": prompt, "stream": b.stream}
	if b.contextID != "" {
		body["context_id"] = b.contextID
	}
	// The context bundle goes out once per conversation, already passed
	// through the sensitive-file gate and the redactor.
	if b.builder != nil && !b.contextSent {
		if bundle := b.builder.Build(); bundle != "" {
			body["context"] = bundle
		}
		b.contextSent = true
	}
	return b.send(ctx, "/message", body)
}

func (b *RemoteBackend) ExecuteTool(ctx context.Context, req events.ToolRequest, result *events.ToolResult) (<-chan events.Event, error) {
	body := map[string]any{
		"tool_call_id": req.ToolCallID,
		"tool_name":    req.ToolName,
		"result":       result,
		"stream":       b.stream,
	}
	if b.contextID != "" {
		body["context_id"] = b.contextID
	}
	return b.send(ctx, "/tool_result", body)
}

func (b *RemoteBackend) ExplainRisk(ctx context.Context, req events.ToolRequest) (string, error) {
	body := map[string]any{"tool_name": req.ToolName, "params": req.Params}
	if b.contextID != "" {
		body["context_id"] = b.contextID
	}
	resp, err := b.post(ctx, "/explain", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote explain: unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		Explanation string `json:"explanation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("remote explain: decoding response: %w", err)
	}
	return payload.Explanation, nil
}

func (b *RemoteBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

func (b *RemoteBackend) post(ctx context.Context, path string, body map[string]any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote backend: %w", err)
	}
	return resp, nil
}

// send posts the body and normalizes the response into an event stream.
func (b *RemoteBackend) send(ctx context.Context, path string, body map[string]any) (<-chan events.Event, error) {
	resp, err := b.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("remote backend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	ch := make(chan events.Event)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		emit := func(ev events.Event) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/json") {
			b.consumeSingle(resp.Body, emit)
			return
		}
		b.consumeStream(resp.Body, emit)
	}()
	return ch, nil
}

// consumeSingle handles the non-streaming response shape: one JSON
// object with the final text and the context id.
func (b *RemoteBackend) consumeSingle(body io.Reader, emit func(events.Event) bool) {
	var payload struct {
		Response  string `json:"response"`
		ContextID string `json:"context_id"`
		Error     string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		emit(events.Errorf("remote backend: malformed response: %v", err))
		return
	}
	if payload.ContextID != "" {
		b.contextID = payload.ContextID
	}
	if payload.Error != "" {
		emit(events.Errorf("%s", payload.Error))
		return
	}
	emit(events.FinalResponse(payload.Response))
}

// consumeStream handles the line/SSE stream shape.
func (b *RemoteBackend) consumeStream(body io.Reader, emit func(events.Event) bool) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sawTerminal := false
	for scanner.Scan() {
		raw, ok := parseRemoteLine(scanner.Bytes())
		if !ok {
			continue
		}
		if raw.ContextID != "" {
			b.contextID = raw.ContextID
		}
		ev, ok := normalizeRemoteEvent(raw)
		if !ok {
			b.logger.Debug("dropping unknown remote event type", "type", raw.Type)
			continue
		}
		if ev.Type == events.TypeFinalResponse || ev.Type == events.TypeError {
			sawTerminal = true
		}
		if !emit(ev) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		emit(events.Errorf("remote backend: stream interrupted: %v", err))
		return
	}
	if !sawTerminal {
		emit(events.Errorf("remote backend: stream ended without a final response"))
	}
}

// ContextID exposes the server-assigned conversation id.
func (b *RemoteBackend) ContextID() string {
	return b.contextID
}
