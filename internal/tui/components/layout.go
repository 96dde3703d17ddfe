package components

import (
	"github.com/charmbracelet/lipgloss"
)

const borderColor, focusColor = lipgloss.Color("#334155"), lipgloss.Color("#0EA5E9")

// Profile pane width bounds. Dotted profile names get a quarter of the
// terminal within these limits.
const (
	minProfileWidth = 24
	maxProfileWidth = 40
)

// LayoutDimensions holds the pane sizes of the browser.
type LayoutDimensions struct {
	LeftWidth     int
	RightWidth    int
	ContentHeight int
}

// CalculateLayout sizes the profile and property panes. The header, status
// bar and footer take one line each and the pane borders two more.
func CalculateLayout(termWidth, termHeight int) LayoutDimensions {
	left := min(max(termWidth/4, minProfileWidth), maxProfileWidth)

	return LayoutDimensions{
		LeftWidth:     left,
		RightWidth:    max(termWidth-left-5, 20),
		ContentHeight: max(termHeight-6, 4),
	}
}

// RenderDualPane joins the two panes side by side, outlining the focused
// one.
func RenderDualPane(left, right string, leftFocused bool, dims LayoutDimensions) string {
	pane := func(content string, width int, focused bool) string {
		color := borderColor
		if focused {
			color = focusColor
		}
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Width(width).
			Height(dims.ContentHeight).
			Render(content)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		pane(left, dims.LeftWidth, leftFocused),
		pane(right, dims.RightWidth, !leftFocused),
	)
}
