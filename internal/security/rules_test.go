package security

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shellParams(command string) map[string]any {
	return map[string]any{"command": command}
}

func TestRouteByRules_GodModeAlwaysAuto(t *testing.T) {
	tools := []string{"read_file", "write_file", "shell", "launch_missiles"}
	for _, name := range tools {
		d, ok := RouteByRules(name, shellParams("rm -rf /"), ModeGodMode, nil, []string{"rm -rf"})
		assert.True(t, ok, name)
		assert.Equal(t, DecisionAuto, d, "god_mode must auto-approve %s", name)
	}
}

func TestRouteByRules_ParanoidAlwaysApprove(t *testing.T) {
	tools := []string{"read_file", "ls", "write_file", "shell", "unknown_tool"}
	for _, name := range tools {
		d, ok := RouteByRules(name, shellParams("ls"), ModeParanoid, []string{"ls"}, nil)
		assert.True(t, ok, name)
		assert.Equal(t, DecisionApprove, d, "paranoid must require approval for %s", name)
	}
}

func TestRouteByRules_BalancedReadOnlyAuto(t *testing.T) {
	for _, name := range []string{"read_file", "read", "list_files", "tree", "ls", "search_text", "search", "rg"} {
		d, ok := RouteByRules(name, nil, ModeBalanced, nil, nil)
		assert.True(t, ok, name)
		assert.Equal(t, DecisionAuto, d, "read-only tool %s must be auto in balanced mode", name)
	}
}

func TestRouteByRules_BalancedWriteApprove(t *testing.T) {
	for _, name := range []string{"write_file", "file_write", "replace_text", "replace", "apply_patch", "patch"} {
		d, ok := RouteByRules(name, nil, ModeBalanced, nil, nil)
		assert.True(t, ok, name)
		assert.Equal(t, DecisionApprove, d, "write tool %s must need approval in balanced mode", name)
	}
}

func TestRouteByRules_ShellBlacklistWins(t *testing.T) {
	// The command matches both a whitelist prefix and a blacklist
	// substring; blacklist must win.
	d, ok := RouteByRules("shell", shellParams("git push --force"), ModeBalanced,
		[]string{"git"}, []string{"--force"})
	require.True(t, ok)
	assert.Equal(t, DecisionBlock, d)
}

func TestRouteByRules_ShellWhitelistPrefix(t *testing.T) {
	d, ok := RouteByRules("terminal", shellParams("git status"), ModeBalanced,
		[]string{"git status"}, []string{"rm -rf"})
	require.True(t, ok)
	assert.Equal(t, DecisionAuto, d)
}

func TestRouteByRules_ShellWhitelistIsPrefixNotSubstring(t *testing.T) {
	d, ok := RouteByRules("shell", shellParams("sudo git status"), ModeBalanced,
		[]string{"git status"}, nil)
	require.True(t, ok)
	assert.Equal(t, DecisionApprove, d, "whitelist entries match prefixes only")
}

func TestRouteByRules_ShellCaseInsensitive(t *testing.T) {
	d, ok := RouteByRules("command", shellParams("  GIT STATUS  "), ModeBalanced,
		[]string{"git status"}, nil)
	require.True(t, ok)
	assert.Equal(t, DecisionAuto, d)
}

func TestRouteByRules_ShellDefaultApprove(t *testing.T) {
	d, ok := RouteByRules("shell", shellParams("make deploy"), ModeBalanced, nil, nil)
	require.True(t, ok)
	assert.Equal(t, DecisionApprove, d)
}

func TestRouteByRules_ShellMissingCommandApprove(t *testing.T) {
	d, ok := RouteByRules("shell", nil, ModeBalanced, []string{""}, []string{""})
	require.True(t, ok)
	assert.Equal(t, DecisionApprove, d, "empty list entries must not match the empty command")
}

func TestRouteByRules_UnknownToolUndecided(t *testing.T) {
	d, ok := RouteByRules("deploy_kubernetes", nil, ModeBalanced, nil, nil)
	assert.False(t, ok, "unknown tools must signal the LLM fallback")
	assert.Equal(t, DecisionApprove, d, "undecided defaults to approve when taken at face value")
}

func TestRouteByRules_TruthTable(t *testing.T) {
	cases := []struct {
		tool    string
		command string
		mode    Mode
		want    Decision
		decided bool
	}{
		{"read_file", "", ModeGodMode, DecisionAuto, true},
		{"read_file", "", ModeParanoid, DecisionApprove, true},
		{"read_file", "", ModeBalanced, DecisionAuto, true},
		{"apply_patch", "", ModeBalanced, DecisionApprove, true},
		{"shell", "rm -rf /", ModeBalanced, DecisionBlock, true},
		{"shell", "ls -la", ModeBalanced, DecisionAuto, true},
		{"shell", "cargo build", ModeBalanced, DecisionApprove, true},
		{"mystery", "", ModeBalanced, DecisionApprove, false},
	}
	whitelist := []string{"ls", "git status"}
	blacklist := []string{"rm -rf"}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.tool, tc.mode), func(t *testing.T) {
			d, ok := RouteByRules(tc.tool, shellParams(tc.command), tc.mode, whitelist, blacklist)
			assert.Equal(t, tc.want, d)
			assert.Equal(t, tc.decided, ok)
		})
	}
}

func TestMatchedBlacklistPattern(t *testing.T) {
	assert.Equal(t, "rm -rf", MatchedBlacklistPattern("sudo rm -rf /tmp", []string{"mkfs.", "rm -rf"}))
	assert.Equal(t, "", MatchedBlacklistPattern("ls -la", []string{"mkfs.", "rm -rf"}))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("god_mode")
	require.NoError(t, err)
	assert.Equal(t, ModeGodMode, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBalanced, m, "missing mode defaults to balanced")

	_, err = ParseMode("yolo")
	assert.Error(t, err)
}

func TestDecisionOrdering(t *testing.T) {
	assert.Equal(t, DecisionBlock, DecisionAuto.Max(DecisionBlock))
	assert.Equal(t, DecisionApprove, DecisionApprove.Max(DecisionAuto))
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("BLOCK")
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, d)

	_, err = ParseDecision("maybe")
	assert.Error(t, err)
}
