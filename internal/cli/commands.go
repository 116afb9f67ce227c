package cli

import (
	"fmt"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/security"
)

// Command is one parsed slash command.
type Command struct {
	Name string
	Arg  string
}

// ParseCommand recognizes "/name [arg]" input. ok is false for normal
// prompts.
func ParseCommand(line string) (Command, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, false
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Name: strings.ToLower(fields[0]),
		Arg:  strings.Join(fields[1:], " "),
	}, true
}

// runCommand executes a slash command. Returns true when the session
// should end.
func (a *App) runCommand(cmd Command) bool {
	switch cmd.Name {
	case "quit", "exit", "q":
		return true
	case "help", "h":
		a.printHelp()
	case "mode":
		a.commandMode(cmd.Arg)
	case "security":
		a.printSecurity()
	default:
		a.renderer.Warn(fmt.Sprintf("unknown command /%s (try /help)", cmd.Name))
	}
	return false
}

func (a *App) printHelp() {
	a.renderer.Info(strings.Join([]string{
		"commands:",
		"  /mode           show the current security mode",
		"  /mode <name>    switch mode (paranoid, balanced, god_mode) and persist it",
		"  /security       show security settings",
		"  /help           this help",
		"  /quit           exit",
	}, "\n"))
}

// commandMode shows or switches the security mode. A switch is
// persisted and takes effect for the next routed request.
func (a *App) commandMode(arg string) {
	if arg == "" {
		a.renderer.Info("current mode: " + a.renderer.ModeBadge(a.router.Mode().String()))
		return
	}
	mode, err := security.ParseMode(arg)
	if err != nil {
		a.renderer.Warn(fmt.Sprintf("unknown mode %q (valid: %s)", arg, strings.Join(modeNames(), ", ")))
		return
	}
	a.router.SetMode(mode)
	if err := a.cfg.SetSecurityMode(mode); err != nil {
		a.renderer.Warn(fmt.Sprintf("mode switched for this session, but saving failed: %v", err))
	}
	a.renderer.Info("security mode is now " + a.renderer.ModeBadge(mode.String()))
	if mode == security.ModeGodMode {
		a.renderer.Warn("god_mode auto-executes everything, including destructive commands")
	}
}

func (a *App) printSecurity() {
	var sb strings.Builder
	fmt.Fprintf(&sb, "mode: %s\n", a.router.Mode())
	fmt.Fprintf(&sb, "allow_shell: %v\n", a.cfg.Security.AllowShell)
	fmt.Fprintf(&sb, "whitelist (%d): %s\n", len(a.cfg.Security.Whitelist),
		strings.Join(a.cfg.Security.Whitelist, ", "))
	fmt.Fprintf(&sb, "blacklist (%d): %s", len(a.cfg.Security.BlacklistPatterns),
		strings.Join(a.cfg.Security.BlacklistPatterns, ", "))
	a.renderer.Info(sb.String())
}

func modeNames() []string {
	modes := security.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return names
}
