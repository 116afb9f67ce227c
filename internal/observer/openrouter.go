package observer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider classifies via the OpenRouter chat completions API,
// which speaks the OpenAI wire protocol.
type OpenRouterProvider struct {
	client  openai.Client
	model   string
	timeout time.Duration
	apiKey  string
}

// NewOpenRouterProvider builds a provider for the given model. The API
// key comes from OPENROUTER_API_KEY; an empty key leaves the provider
// unavailable rather than failing construction.
func NewOpenRouterProvider(model string, timeout time.Duration) *OpenRouterProvider {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	return &OpenRouterProvider{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(openRouterBaseURL),
		),
		model:   model,
		timeout: timeout,
		apiKey:  apiKey,
	}
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

func (p *OpenRouterProvider) Available() bool { return p.apiKey != "" }

func (p *OpenRouterProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: OPENROUTER_API_KEY not set", ErrProviderUnavailable)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openrouter completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
