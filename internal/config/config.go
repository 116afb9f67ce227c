// Package config loads and persists application configuration.
//
// Sources, highest priority first: environment variables (AGENTZERO_
// prefix), the config file (~/.agentzero/config.yaml by default), and
// built-in defaults. Everything the security core consumes is validated
// defensively here: a missing mode means balanced, missing lists mean
// empty, so a half-written config file can never widen the gate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/vizi2000/agentzero-cli/internal/security"
)

var (
	// ErrInvalidSecurityMode indicates an unrecognized security.mode value.
	ErrInvalidSecurityMode = errors.New("invalid security mode")

	// ErrMissingConnection indicates the remote backend is selected but
	// connection settings are absent. Fatal at startup.
	ErrMissingConnection = errors.New("missing connection settings")
)

// SecurityConfig governs tool request routing.
type SecurityConfig struct {
	Mode              string   `mapstructure:"mode"`
	Whitelist         []string `mapstructure:"whitelist"`
	BlacklistPatterns []string `mapstructure:"blacklist_patterns"`
	// AllowShell gates shell execution independently of mode: when false,
	// shell tools are refused even if routing would auto-approve them.
	AllowShell bool `mapstructure:"allow_shell"`
	// RulesDir holds user *.rules files with prefix_rule() declarations.
	RulesDir string `mapstructure:"rules_dir"`
}

// ObserverConfig governs the LLM fallback classifier.
type ObserverConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Mode     string `mapstructure:"mode"`
	Provider string `mapstructure:"provider"` // "openrouter" or "mcp_gateway"
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	// TimeoutSeconds bounds one classification call.
	TimeoutSeconds int `mapstructure:"timeout"`
}

// ConnectionConfig points at a remote agent API backend.
type ConnectionConfig struct {
	APIURL        string `mapstructure:"api_url"`
	APIKey        string `mapstructure:"api_key"`
	WorkspaceRoot string `mapstructure:"workspace_root"`
	Stream        bool   `mapstructure:"stream"`
	TimeoutSecs   int    `mapstructure:"timeout"`
}

// ContextConfig governs the outbound workspace context bundle.
type ContextConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	IncludePreviews bool     `mapstructure:"include_previews"`
	PreviewFiles    []string `mapstructure:"preview_files"`
	RedactKeys      []string `mapstructure:"redact_keys"`
	RedactPatterns  []string `mapstructure:"redact_patterns"`
}

// ToolsConfig bounds tool execution resources.
type ToolsConfig struct {
	ShellTimeoutSecs   int      `mapstructure:"shell_timeout"`
	MaxOutputChars     int      `mapstructure:"max_output_chars"`
	ReadMaxBytes       int      `mapstructure:"read_max_bytes"`
	ListMaxDepth       int      `mapstructure:"list_max_depth"`
	ListMaxFiles       int      `mapstructure:"list_max_files"`
	SearchMaxResults   int      `mapstructure:"search_max_results"`
	SearchMaxFileBytes int64    `mapstructure:"search_max_file_bytes"`
	IgnoreDirs         []string `mapstructure:"ignore_dirs"`
}

// Config is the root configuration consumed by the core.
type Config struct {
	Security   SecurityConfig   `mapstructure:"security"`
	Observer   ObserverConfig   `mapstructure:"observer"`
	Connection ConnectionConfig `mapstructure:"connection"`
	Context    ContextConfig    `mapstructure:"context"`
	Tools      ToolsConfig      `mapstructure:"tools"`

	v *viper.Viper
}

// DefaultDir returns the configuration directory (~/.agentzero).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".agentzero"), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("AGENTZERO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("security.mode", "balanced")
	v.SetDefault("security.whitelist", []string{})
	v.SetDefault("security.blacklist_patterns", []string{
		"rm -rf /",
		"rm -rf ~",
		":(){ :|:& };:",
		"mkfs.",
		"dd if=/dev/",
		"> /dev/sda",
		"chmod -r 777 /",
	})
	v.SetDefault("security.allow_shell", true)

	v.SetDefault("observer.enabled", false)
	v.SetDefault("observer.mode", "hybrid")
	v.SetDefault("observer.provider", "")
	v.SetDefault("observer.model", "openai/gpt-4o-mini")
	v.SetDefault("observer.timeout", 30)

	v.SetDefault("connection.stream", true)
	v.SetDefault("connection.timeout", 120)

	v.SetDefault("context.enabled", true)
	v.SetDefault("context.include_previews", true)
	v.SetDefault("context.preview_files", []string{})
	v.SetDefault("context.redact_keys", []string{
		"api_key", "apikey", "token", "secret", "password", "access_key",
	})
	v.SetDefault("context.redact_patterns", []string{
		`bearer\s+[A-Za-z0-9._-]+`,
	})

	v.SetDefault("tools.shell_timeout", 60)
	v.SetDefault("tools.max_output_chars", 10000)
	v.SetDefault("tools.read_max_bytes", 256*1024)
	v.SetDefault("tools.list_max_depth", 3)
	v.SetDefault("tools.list_max_files", 200)
	v.SetDefault("tools.search_max_results", 100)
	v.SetDefault("tools.search_max_file_bytes", 1024*1024)
	v.SetDefault("tools.ignore_dirs", []string{
		".git", "node_modules", "__pycache__", ".venv", "venv",
		".mypy_cache", ".pytest_cache", "dist", "build", "target",
	})
	return v
}

// Load reads configuration from dir. A missing config file is not an
// error; defaults apply. An unreadable or malformed file is.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.normalize(dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize fills derived defaults and validates enum fields.
func (c *Config) normalize(dir string) error {
	if _, err := security.ParseMode(c.Security.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSecurityMode, c.Security.Mode)
	}
	if c.Security.Mode == "" {
		c.Security.Mode = security.ModeBalanced.String()
	}
	if c.Security.RulesDir == "" {
		c.Security.RulesDir = filepath.Join(dir, "rules")
	}
	if c.Connection.WorkspaceRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine workspace root: %w", err)
		}
		c.Connection.WorkspaceRoot = cwd
	}
	return nil
}

// Mode returns the parsed security mode.
func (c *Config) Mode() security.Mode {
	m, err := security.ParseMode(c.Security.Mode)
	if err != nil {
		return security.ModeBalanced
	}
	return m
}

// SetSecurityMode updates the mode in memory and persists it to the
// config file, creating the file if needed. Takes effect for the next
// routed request.
func (c *Config) SetSecurityMode(mode security.Mode) error {
	c.Security.Mode = mode.String()
	if c.v == nil {
		return nil
	}
	c.v.Set("security.mode", mode.String())
	return c.persist()
}

// SetAllowShell updates the shell gate and persists it.
func (c *Config) SetAllowShell(allow bool) error {
	c.Security.AllowShell = allow
	if c.v == nil {
		return nil
	}
	c.v.Set("security.allow_shell", allow)
	return c.persist()
}

func (c *Config) persist() error {
	if err := c.v.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return c.writeNewConfigFile()
		}
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func (c *Config) writeNewConfigFile() error {
	dir, err := DefaultDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := c.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// ValidateForRemote checks the settings required by the remote backend.
// Failure here is fatal to the session at startup.
func (c *Config) ValidateForRemote() error {
	if strings.TrimSpace(c.Connection.APIURL) == "" {
		return fmt.Errorf("%w: connection.api_url is required", ErrMissingConnection)
	}
	return nil
}
