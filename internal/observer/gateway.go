package observer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizi2000/agentzero-cli/internal/version"
)

// GatewayProvider classifies through an MCP gateway that exposes a
// "complete" tool over streamable HTTP. The session is dialed on first
// use and reused afterwards.
type GatewayProvider struct {
	endpoint string
	model    string
	timeout  time.Duration

	mu      sync.Mutex
	session *gomcp.ClientSession
}

// NewGatewayProvider builds a provider targeting the given MCP endpoint.
func NewGatewayProvider(endpoint, model string, timeout time.Duration) *GatewayProvider {
	return &GatewayProvider{endpoint: endpoint, model: model, timeout: timeout}
}

func (p *GatewayProvider) Name() string { return "mcp_gateway" }

func (p *GatewayProvider) Available() bool { return p.endpoint != "" }

func (p *GatewayProvider) connect(ctx context.Context) (*gomcp.ClientSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return p.session, nil
	}

	client := gomcp.NewClient(&gomcp.Implementation{
		Name:    "agentzero-observer",
		Version: version.Version,
	}, nil)
	session, err := client.Connect(ctx, &gomcp.StreamableClientTransport{Endpoint: p.endpoint}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", ErrProviderUnavailable, p.endpoint, err)
	}
	p.session = session
	return session, nil
}

func (p *GatewayProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: no gateway endpoint configured", ErrProviderUnavailable)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	session, err := p.connect(ctx)
	if err != nil {
		return "", err
	}

	res, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name: "complete",
		Arguments: map[string]any{
			"system": system,
			"prompt": prompt,
			"model":  p.model,
		},
	})
	if err != nil {
		return "", fmt.Errorf("gateway completion: %w", err)
	}
	if res.IsError {
		return "", fmt.Errorf("gateway completion: %s", textContent(res))
	}
	reply := textContent(res)
	if reply == "" {
		return "", fmt.Errorf("gateway completion: empty response")
	}
	return reply, nil
}

// Close tears down the MCP session if one was established.
func (p *GatewayProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	return err
}

func textContent(res *gomcp.CallToolResult) string {
	var sb strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*gomcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}
