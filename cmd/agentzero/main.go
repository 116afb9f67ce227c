// agentzero is a terminal AI coding assistant with a security gate
// between the model and the machine.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vizi2000/agentzero-cli/internal/backend"
	"github.com/vizi2000/agentzero-cli/internal/cli"
	"github.com/vizi2000/agentzero-cli/internal/config"
	"github.com/vizi2000/agentzero-cli/internal/observer"
	"github.com/vizi2000/agentzero-cli/internal/policy"
	"github.com/vizi2000/agentzero-cli/internal/redact"
	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/tools/handlers"
	"github.com/vizi2000/agentzero-cli/internal/version"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configDir  string
		workdir    string
		noColor    bool
		noMarkdown bool
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "agentzero",
		Short: "Terminal AI coding assistant with a human-in-the-loop security gate",
		Long: "agentzero connects a language-model backend to your shell and " +
			"filesystem. Every action the model requests is routed through a " +
			"security policy that auto-executes, asks you, or blocks.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, configDir, workdir, noColor, noMarkdown, verbose)
		},
	}
	root.Flags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.agentzero)")
	root.Flags().StringVarP(&workdir, "workdir", "w", "", "workspace root (default from config, then cwd)")
	root.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.Flags().BoolVar(&noMarkdown, "no-markdown", false, "disable markdown rendering")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("agentzero %s (%s)\n", version.Version, version.GitCommit)
		},
	})
	return root
}

func runSession(cmd *cobra.Command, configDir, workdir string, noColor, noMarkdown, verbose bool) error {
	// .env is a convenience for API keys; absence is not an error.
	_ = godotenv.Load()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if configDir == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if workdir != "" {
		cfg.Connection.WorkspaceRoot = workdir
	}

	resolver, err := workspace.NewResolver(cfg.Connection.WorkspaceRoot)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}

	redactor, err := redact.New(cfg.Context.RedactKeys, cfg.Context.RedactPatterns)
	if err != nil {
		return fmt.Errorf("redaction config: %w", err)
	}
	var builder *workspace.ContextBuilder
	if cfg.Context.Enabled && cfg.Context.IncludePreviews {
		builder = workspace.NewContextBuilder(resolver, redactor, cfg.Context.PreviewFiles)
	}

	rules, err := policy.LoadDir(cfg.Security.RulesDir)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	if rules.Len() > 0 {
		logger.Debug("loaded prefix rules", "count", rules.Len(), "dir", cfg.Security.RulesDir)
	}

	be := backend.New(cfg, builder, logger)

	router := observer.NewRouter(observer.Options{
		Mode:              cfg.Mode(),
		Whitelist:         cfg.Security.Whitelist,
		Blacklist:         cfg.Security.BlacklistPatterns,
		Rules:             rules,
		ClassifierEnabled: cfg.Observer.Enabled,
		ProviderFactory:   observerProvider(cfg),
		Logger:            logger,
	})

	registry := handlers.NewRegistry(resolver, handlers.Limits{
		ShellTimeout:       time.Duration(cfg.Tools.ShellTimeoutSecs) * time.Second,
		MaxOutputChars:     cfg.Tools.MaxOutputChars,
		ReadMaxBytes:       cfg.Tools.ReadMaxBytes,
		ListMaxDepth:       cfg.Tools.ListMaxDepth,
		ListMaxFiles:       cfg.Tools.ListMaxFiles,
		SearchMaxResults:   cfg.Tools.SearchMaxResults,
		SearchMaxFileBytes: cfg.Tools.SearchMaxFileBytes,
		IgnoreDirs:         cfg.Tools.IgnoreDirs,
	})
	executor := tools.NewExecutor(registry, cfg.Security.AllowShell, logger)

	renderer := cli.NewRenderer(os.Stdout, noColor, noMarkdown)
	app, err := cli.NewApp(cli.Options{
		Config:   cfg,
		Backend:  be,
		Router:   router,
		Executor: executor,
		Renderer: renderer,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return app.Run(cmd.Context())
}

// observerProvider builds the configured classifier provider on demand.
func observerProvider(cfg *config.Config) func() observer.Provider {
	return func() observer.Provider {
		timeout := time.Duration(cfg.Observer.TimeoutSeconds) * time.Second
		switch cfg.Observer.Provider {
		case "openrouter":
			return observer.NewOpenRouterProvider(cfg.Observer.Model, timeout)
		case "mcp_gateway":
			return observer.NewGatewayProvider(cfg.Observer.Endpoint, cfg.Observer.Model, timeout)
		default:
			return nil
		}
	}
}
