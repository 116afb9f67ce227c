// Package security holds the security mode state machine and the pure
// rule-based router that maps tool requests to routing decisions.
package security

import (
	"fmt"
	"strings"
)

// Mode is the session-wide policy level governing default approval
// behavior. Exactly one mode is active per session; it is mutable at
// runtime and persisted to configuration on change.
type Mode int

const (
	// ModeParanoid requires human approval for every tool request.
	ModeParanoid Mode = iota
	// ModeBalanced auto-approves read-only tools and whitelisted shell
	// commands, and asks for everything else.
	ModeBalanced
	// ModeGodMode auto-approves everything. The allow_shell gate still
	// applies at execution time.
	ModeGodMode
)

// String returns the configuration spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeParanoid:
		return "paranoid"
	case ModeBalanced:
		return "balanced"
	case ModeGodMode:
		return "god_mode"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a configuration string into a Mode. The empty string
// defaults to balanced, matching the defensive config contract. Unknown
// values are an error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "balanced":
		return ModeBalanced, nil
	case "paranoid":
		return ModeParanoid, nil
	case "god_mode", "godmode":
		return ModeGodMode, nil
	default:
		return ModeBalanced, fmt.Errorf("invalid security mode %q: must be paranoid, balanced, or god_mode", s)
	}
}

// Modes lists all valid modes in ascending order of permissiveness.
func Modes() []Mode {
	return []Mode{ModeParanoid, ModeBalanced, ModeGodMode}
}
