package cli

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for terminal output.
type Styles struct {
	// Status line ("Executing shell...")
	Status lipgloss.Style
	// Intermediate model reasoning
	Thought lipgloss.Style
	// Tool name in previews and notices
	ToolName lipgloss.Style
	// Preview body shown in approval prompts
	Preview lipgloss.Style
	// Successful tool output
	Success lipgloss.Style
	// Errors and failed output
	Failure lipgloss.Style
	// Blocked-request notice
	Blocked lipgloss.Style
	// Approval prompt line
	Prompt lipgloss.Style
	// Security mode badge
	ModeBadge lipgloss.Style
	// Help and informational text
	Info lipgloss.Style
}

// DefaultStyles returns styles with colors enabled.
func DefaultStyles() Styles {
	return Styles{
		Status:    lipgloss.NewStyle().Faint(true),
		Thought:   lipgloss.NewStyle().Italic(true).Faint(true),
		ToolName:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true), // yellow
		Preview:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),            // cyan
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),            // green
		Failure:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),            // red
		Blocked:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Prompt:    lipgloss.NewStyle().Bold(true),
		ModeBadge: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true), // magenta
		Info:      lipgloss.NewStyle().Faint(true),
	}
}

// PlainStyles returns styles with no coloring, for non-TTY output.
func PlainStyles() Styles {
	return Styles{
		Status:    lipgloss.NewStyle(),
		Thought:   lipgloss.NewStyle(),
		ToolName:  lipgloss.NewStyle(),
		Preview:   lipgloss.NewStyle(),
		Success:   lipgloss.NewStyle(),
		Failure:   lipgloss.NewStyle(),
		Blocked:   lipgloss.NewStyle(),
		Prompt:    lipgloss.NewStyle(),
		ModeBadge: lipgloss.NewStyle(),
		Info:      lipgloss.NewStyle(),
	}
}
