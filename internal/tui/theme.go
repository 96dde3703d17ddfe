package tui

import "github.com/charmbracelet/lipgloss"

// Slate neutrals with a sky accent. The components package repeats these
// hex values.
var (
	tintAccent  = lipgloss.Color("#0EA5E9")
	tintKey     = lipgloss.Color("#7DD3FC")
	tintHint    = lipgloss.Color("#64748B")
	tintText    = lipgloss.Color("#F1F5F9")
	tintFaint   = lipgloss.Color("#94A3B8")
	tintPass    = lipgloss.Color("#22C55E")
	tintCaution = lipgloss.Color("#EAB308")
	tintFail    = lipgloss.Color("#F43F5E")
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(tintAccent)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(tintAccent)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(tintKey)
	valueStyle   = lipgloss.NewStyle().Foreground(tintText)
	hintStyle    = lipgloss.NewStyle().Foreground(tintHint)
	faintStyle   = lipgloss.NewStyle().Foreground(tintFaint)
	descStyle    = faintStyle
	passStyle    = lipgloss.NewStyle().Foreground(tintPass)
	cautionStyle = lipgloss.NewStyle().Foreground(tintCaution)
	failStyle    = lipgloss.NewStyle().Foreground(tintFail)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(tintAccent).
			Padding(1, 2)
)

// Below this size the browser shows a resize notice instead of its panes.
const (
	minWidth  = 60
	minHeight = 16
)
