package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/vizi2000/agentzero-cli/internal/events"
)

const defaultOpenRouterModel = "anthropic/claude-sonnet-4.5"

// OpenRouterBackend drives any OpenRouter-hosted model through the
// OpenAI-compatible chat completions API, with the workspace tool set
// attached. History lives in the backend for the session.
//
// One assistant message may carry several tool calls. They are surfaced
// one request per stream; the next completion is requested only after
// every call has a tool message in the history.
type OpenRouterBackend struct {
	client  openai.Client
	model   string
	history []openai.ChatCompletionMessageParamUnion

	pending []events.ToolRequest
}

// NewOpenRouterBackend creates a backend for the given model. An empty
// model selects the default.
func NewOpenRouterBackend(apiKey, model string) *OpenRouterBackend {
	if model == "" {
		model = defaultOpenRouterModel
	}
	return &OpenRouterBackend{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(openRouterAPIBase),
		),
		model:   model,
		history: []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(chatSystemPrompt)},
	}
}

const openRouterAPIBase = "https://openrouter.ai/api/v1"

func (b *OpenRouterBackend) Name() string { return "openrouter" }

func (b *OpenRouterBackend) StreamPrompt(ctx context.Context, prompt string) (<-chan events.Event, error) {
	b.pending = nil
	b.history = append(b.history, openai.UserMessage(prompt))
	return b.advance(ctx)
}

func (b *OpenRouterBackend) ExecuteTool(ctx context.Context, req events.ToolRequest, result *events.ToolResult) (<-chan events.Event, error) {
	content := result.Output
	if !result.Success {
		content = result.Error
	}
	if content == "" {
		content = "(no output)"
	}
	b.history = append(b.history, openai.ToolMessage(content, req.ToolCallID))
	if len(b.pending) > 0 && b.pending[0].ToolCallID == req.ToolCallID {
		b.pending = b.pending[1:]
	}
	if len(b.pending) > 0 {
		next := b.pending[0]
		return emitAll(ctx, []events.Event{{Type: events.TypeToolRequest, Request: &next}}), nil
	}
	return b.advance(ctx)
}

func (b *OpenRouterBackend) advance(ctx context.Context) (<-chan events.Event, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: b.history,
		Tools:    openRouterToolDefs(),
	})
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openrouter request: empty response")
	}

	message := resp.Choices[0].Message
	b.history = append(b.history, message.ToParam())

	var evs []events.Event
	if len(message.ToolCalls) > 0 {
		if strings.TrimSpace(message.Content) != "" {
			evs = append(evs, events.Thought(message.Content))
		}
		requests := make([]events.ToolRequest, 0, len(message.ToolCalls))
		for _, call := range message.ToolCalls {
			params := map[string]any{}
			if call.Function.Arguments != "" {
				_ = json.Unmarshal([]byte(call.Function.Arguments), &params)
			}
			requests = append(requests, events.ToolRequest{
				ToolName:   call.Function.Name,
				Params:     params,
				ToolCallID: call.ID,
			})
		}
		b.pending = requests
		first := requests[0]
		evs = append(evs, events.Event{Type: events.TypeToolRequest, Request: &first})
	} else {
		evs = append(evs, events.FinalResponse(message.Content))
	}
	return emitAll(ctx, evs), nil
}

func (b *OpenRouterBackend) ExplainRisk(ctx context.Context, req events.ToolRequest) (string, error) {
	prompt := fmt.Sprintf(
		"In two or three sentences, explain the risks of letting a coding "+
			"assistant run this tool call on a developer machine.\nTool: %s\nParams: %v",
		req.ToolName, req.Params)

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("openrouter risk explanation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter risk explanation: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *OpenRouterBackend) Close() error { return nil }

func openRouterToolDefs() []openai.ChatCompletionToolUnionParam {
	defs := make([]openai.ChatCompletionToolUnionParam, 0, len(chatToolSpecs))
	for _, spec := range chatToolSpecs {
		parameters := shared.FunctionParameters{
			"type":       "object",
			"properties": spec.properties,
		}
		if len(spec.required) > 0 {
			parameters["required"] = spec.required
		}
		defs = append(defs, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        spec.name,
			Description: openai.String(spec.description),
			Parameters:  parameters,
		}))
	}
	return defs
}
