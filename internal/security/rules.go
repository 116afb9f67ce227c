package security

import "strings"

// Tool name sets for balanced-mode routing. Backends use several aliases
// for the same operation, so each set carries all known spellings.
var (
	readOnlyTools = map[string]bool{
		"read_file":   true,
		"read":        true,
		"list_files":  true,
		"tree":        true,
		"ls":          true,
		"search_text": true,
		"search":      true,
		"rg":          true,
	}

	writeTools = map[string]bool{
		"write_file":   true,
		"file_write":   true,
		"replace_text": true,
		"replace":      true,
		"apply_patch":  true,
		"patch":        true,
	}

	shellTools = map[string]bool{
		"terminal": true,
		"shell":    true,
		"command":  true,
	}
)

// IsReadOnlyTool reports whether the tool name belongs to the read-only set.
func IsReadOnlyTool(name string) bool {
	return readOnlyTools[strings.ToLower(name)]
}

// IsWriteTool reports whether the tool name belongs to the write set.
func IsWriteTool(name string) bool {
	return writeTools[strings.ToLower(name)]
}

// IsShellTool reports whether the tool name is a shell alias.
func IsShellTool(name string) bool {
	return shellTools[strings.ToLower(name)]
}

// RouteByRules maps a tool request to a routing decision using only static
// rules. It is pure: no I/O, no state, independently testable against a
// truth table.
//
// First matching rule wins, in order:
//  1. god_mode: auto, unconditionally.
//  2. paranoid: approve, unconditionally.
//  3. balanced:
//     a. read-only tools: auto.
//     b. write tools: approve.
//     c. shell aliases: blacklist substring beats whitelist prefix;
//        neither matching means approve.
//     d. anything else: undecided (ok=false), the caller should fall
//        back to the LLM classifier.
//
// Whitelist entries match as lowercase command prefixes, blacklist entries
// as lowercase substrings anywhere in the command.
func RouteByRules(toolName string, params map[string]any, mode Mode, whitelist, blacklist []string) (Decision, bool) {
	if mode == ModeGodMode {
		return DecisionAuto, true
	}
	if mode == ModeParanoid {
		return DecisionApprove, true
	}

	name := strings.ToLower(toolName)

	if readOnlyTools[name] {
		return DecisionAuto, true
	}
	if writeTools[name] {
		return DecisionApprove, true
	}
	if shellTools[name] {
		command := ""
		if params != nil {
			if c, ok := params["command"].(string); ok {
				command = c
			}
		}
		command = strings.ToLower(strings.TrimSpace(command))

		// Blacklist is checked before whitelist and wins on match.
		for _, pattern := range blacklist {
			p := strings.ToLower(strings.TrimSpace(pattern))
			if p != "" && strings.Contains(command, p) {
				return DecisionBlock, true
			}
		}
		for _, entry := range whitelist {
			e := strings.ToLower(strings.TrimSpace(entry))
			if e != "" && strings.HasPrefix(command, e) {
				return DecisionAuto, true
			}
		}
		return DecisionApprove, true
	}

	// Unknown tool: no static rule applies.
	return DecisionApprove, false
}

// MatchedBlacklistPattern returns the first blacklist pattern contained in
// the command, for inclusion in user-facing block messages. Empty string
// when nothing matches.
func MatchedBlacklistPattern(command string, blacklist []string) string {
	cmd := strings.ToLower(strings.TrimSpace(command))
	for _, pattern := range blacklist {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p != "" && strings.Contains(cmd, p) {
			return pattern
		}
	}
	return ""
}
