package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicBackend drives a Claude model with the workspace tool set.
// Conversation history lives in the backend for the life of the session;
// tool results are folded back into it via ExecuteTool.
//
// One assistant message may carry several tool_use blocks. They are
// surfaced one request per stream; the results are batched into a single
// user message once the last block is answered, as the API requires.
type AnthropicBackend struct {
	client  anthropic.Client
	model   anthropic.Model
	history []anthropic.MessageParam

	pending []events.ToolRequest
	results []anthropic.ContentBlockParamUnion
}

// NewAnthropicBackend creates a backend using the given API key. An
// empty model selects the default.
func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

func (b *AnthropicBackend) StreamPrompt(ctx context.Context, prompt string) (<-chan events.Event, error) {
	b.pending, b.results = nil, nil
	b.history = append(b.history, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
	return b.advance(ctx)
}

func (b *AnthropicBackend) ExecuteTool(ctx context.Context, req events.ToolRequest, result *events.ToolResult) (<-chan events.Event, error) {
	content := result.Output
	if !result.Success {
		content = result.Error
	}
	if content == "" {
		content = "(no output)"
	}
	b.results = append(b.results,
		anthropic.NewToolResultBlock(req.ToolCallID, content, !result.Success))
	if len(b.pending) > 0 && b.pending[0].ToolCallID == req.ToolCallID {
		b.pending = b.pending[1:]
	}
	if len(b.pending) > 0 {
		next := b.pending[0]
		return emitAll(ctx, []events.Event{{Type: events.TypeToolRequest, Request: &next}}), nil
	}

	b.history = append(b.history, anthropic.NewUserMessage(b.results...))
	b.results = nil
	return b.advance(ctx)
}

// advance requests the next assistant message and converts it into
// events. A tool_use block becomes a tool_request event and pauses the
// turn until ExecuteTool is called.
func (b *AnthropicBackend) advance(ctx context.Context) (<-chan events.Event, error) {
	response, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 4096,
		System:    []anthropic.TextBlockParam{{Text: chatSystemPrompt}},
		Messages:  b.history,
		Tools:     anthropicToolDefs(),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	b.history = append(b.history, response.ToParam())

	var evs []events.Event
	var requests []events.ToolRequest
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			text := block.AsText().Text
			if strings.TrimSpace(text) == "" {
				continue
			}
			if response.StopReason == anthropic.StopReasonToolUse {
				evs = append(evs, events.Thought(text))
			} else {
				evs = append(evs, events.FinalResponse(text))
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			params := map[string]any{}
			if raw, marshalErr := json.Marshal(toolBlock.Input); marshalErr == nil {
				_ = json.Unmarshal(raw, &params)
			}
			requests = append(requests, events.ToolRequest{
				ToolName:   toolBlock.Name,
				Params:     params,
				ToolCallID: toolBlock.ID,
			})
		}
	}
	if len(requests) > 0 {
		b.pending = requests
		first := requests[0]
		evs = append(evs, events.Event{Type: events.TypeToolRequest, Request: &first})
	}
	if len(evs) == 0 {
		evs = append(evs, events.FinalResponse(""))
	}
	return emitAll(ctx, evs), nil
}

func (b *AnthropicBackend) ExplainRisk(ctx context.Context, req events.ToolRequest) (string, error) {
	prompt := fmt.Sprintf(
		"In two or three sentences, explain the risks of letting a coding "+
			"assistant run this tool call on a developer machine.\nTool: %s\nParams: %v",
		req.ToolName, req.Params)

	response, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 512,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic risk explanation: %w", err)
	}
	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

func (b *AnthropicBackend) Close() error { return nil }

func anthropicToolDefs() []anthropic.ToolUnionParam {
	defs := make([]anthropic.ToolUnionParam, 0, len(chatToolSpecs))
	for _, spec := range chatToolSpecs {
		schema := anthropic.ToolInputSchemaParam{Properties: spec.properties}
		if len(spec.required) > 0 {
			schema.Required = spec.required
		}
		defs = append(defs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.name,
				Description: anthropic.String(spec.description),
				InputSchema: schema,
			},
		})
	}
	return defs
}
