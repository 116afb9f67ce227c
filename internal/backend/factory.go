package backend

import (
	"log/slog"
	"os"
	"time"

	"github.com/vizi2000/agentzero-cli/internal/config"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// New selects a backend by priority: OpenRouter when OPENROUTER_API_KEY
// is set, then Anthropic when ANTHROPIC_API_KEY is set, then the remote
// agent API when a URL is configured, and finally the local
// deterministic backend, which always works. The factory never fails.
func New(cfg *config.Config, builder *workspace.ContextBuilder, logger *slog.Logger) Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		logger.Info("using OpenRouter backend")
		return NewOpenRouterBackend(key, os.Getenv("OPENROUTER_MODEL"))
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		logger.Info("using Anthropic backend")
		return NewAnthropicBackend(key, os.Getenv("ANTHROPIC_MODEL"))
	}

	apiURL := cfg.Connection.APIURL
	if envURL := os.Getenv("AGENTZERO_API_URL"); envURL != "" {
		apiURL = envURL
	}
	if apiURL != "" {
		logger.Info("using remote backend", "url", apiURL)
		return NewRemoteBackend(RemoteOptions{
			APIURL:  apiURL,
			APIKey:  cfg.Connection.APIKey,
			Stream:  cfg.Connection.Stream,
			Timeout: time.Duration(cfg.Connection.TimeoutSecs) * time.Second,
			Builder: builder,
			Logger:  logger,
		})
	}

	logger.Info("no backend credentials found, using local backend")
	return NewLocalBackend()
}
