package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	statusAccent  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DD3FC"))
	statusText    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1F5F9"))
	statusFailure = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
	statusOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
)

// StatusBar is the line between the panes and the footer. A message takes
// precedence over the filter unless the filter is being typed.
type StatusBar struct {
	FilterText    string
	Filtering     bool
	Profile       string
	ProfileCount  int
	PropertyCount int
	Message       string
	IsError       bool
}

func (sb *StatusBar) left() string {
	switch {
	case sb.Filtering:
		return statusAccent.Render("Filter: ") + statusText.Render(sb.FilterText+"_")
	case sb.Message != "" && sb.IsError:
		return statusFailure.Render(sb.Message)
	case sb.Message != "":
		return statusOK.Render(sb.Message)
	case sb.FilterText != "":
		return statusAccent.Render("Filter: ") + statusText.Render(sb.FilterText)
	}
	return ""
}

// View renders the status bar at width.
func (sb *StatusBar) View(width int) string {
	left := sb.left()

	right := statusMuted.Render(fmt.Sprintf("%d profiles", sb.ProfileCount))
	if sb.Profile != "" {
		right = statusAccent.Render(sb.Profile) + statusMuted.Render(fmt.Sprintf(": %d properties  |  ", sb.PropertyCount)) + right
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}
