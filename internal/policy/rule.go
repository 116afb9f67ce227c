// Package policy provides a Starlark-based prefix-rule engine for shell
// commands. Users extend the static whitelist/blacklist with rules files:
//
//	prefix_rule(pattern=["git", ["push", "fetch"]], decision="prompt")
//
// Rule decisions use the vocabulary allow/prompt/forbidden and map onto
// the router's auto/approve/block.
package policy

import (
	"fmt"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/security"
)

// PatternToken matches one argv element: either an exact string or any of
// a set of alternatives.
type PatternToken struct {
	Single string
	Alts   []string
}

// Matches reports whether the token matches the given argv element.
func (t *PatternToken) Matches(s string) bool {
	if len(t.Alts) > 0 {
		for _, alt := range t.Alts {
			if alt == s {
				return true
			}
		}
		return false
	}
	return t.Single == s
}

// PrefixPattern is a sequence of tokens matched against a command prefix.
type PrefixPattern []PatternToken

// Matches reports whether the pattern is a prefix of the command.
func (p PrefixPattern) Matches(cmd []string) bool {
	if len(cmd) < len(p) {
		return false
	}
	for i := range p {
		if !p[i].Matches(cmd[i]) {
			return false
		}
	}
	return true
}

// Program returns the fixed program name from the first token, or "" when
// the pattern is empty or starts with an alternative set.
func (p PrefixPattern) Program() string {
	if len(p) == 0 || len(p[0].Alts) > 0 {
		return ""
	}
	return p[0].Single
}

// PrefixRule assigns a decision to commands matching a prefix pattern.
type PrefixRule struct {
	Pattern       PrefixPattern
	Decision      security.Decision
	Justification string
}

// ParseRuleDecision maps the rules-file vocabulary onto routing decisions.
// Accepted: "allow", "prompt", "forbidden" (case-insensitive).
func ParseRuleDecision(s string) (security.Decision, error) {
	switch strings.ToLower(s) {
	case "allow":
		return security.DecisionAuto, nil
	case "prompt":
		return security.DecisionApprove, nil
	case "forbidden":
		return security.DecisionBlock, nil
	default:
		return security.DecisionApprove, fmt.Errorf("invalid rule decision %q: must be allow, prompt, or forbidden", s)
	}
}
