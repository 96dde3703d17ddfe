package components

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	headerTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0EA5E9"))

	headerLayerBadge = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F1F5F9")).
				Background(lipgloss.Color("#0EA5E9")).
				Padding(0, 1)

	headerMissingBadge = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0F172A")).
				Background(lipgloss.Color("#EAB308")).
				Padding(0, 1)
)

// RenderHeader returns the header bar with the app name and a badge naming
// the active layer. The badge is highlighted when the layer file does not
// exist yet.
func RenderHeader(width int, app, layer string, exists bool) string {
	title := headerTitle.Render(app + " config")

	badgeStyle := headerLayerBadge
	text := "layer: " + layer
	if !exists {
		badgeStyle = headerMissingBadge
		text += " (new)"
	}
	badge := badgeStyle.Render(text)

	spacer := max(width-lipgloss.Width(title)-lipgloss.Width(badge), 1)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		lipgloss.NewStyle().Width(spacer).Render(""),
		badge,
	)
}
