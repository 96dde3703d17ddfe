package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterMode selects the key hints shown in the footer.
type FooterMode int

const (
	FooterBrowse FooterMode = iota
	FooterFilter
	FooterForm
	FooterConfirm
	FooterPopup
)

var (
	hintKey  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DD3FC")).Bold(true)
	hintText = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	hintGap  = lipgloss.NewStyle().Foreground(lipgloss.Color("#334155")).Render("  ")
)

// footerHints maps each mode to key/description pairs.
var footerHints = map[FooterMode][][2]string{
	FooterBrowse: {
		{"j/k", "nav"}, {"tab", "pane"}, {"l", "layer"}, {"/", "filter"},
		{"enter", "view"}, {"a", "add"}, {"r", "edit"}, {"d", "del"},
		{"s", "show secure"}, {"c", "copy"}, {"?", "help"}, {"q", "quit"},
	},
	FooterFilter:  {{"esc", "stop filter"}, {"enter", "apply"}},
	FooterForm:    {{"tab", "next field"}, {"space", "secure"}, {"enter", "save"}, {"esc", "cancel"}},
	FooterConfirm: {{"y", "delete"}, {"n", "keep"}, {"esc", "cancel"}},
	FooterPopup:   {{"esc", "close"}},
}

// RenderFooter returns the key hints for mode, truncated to width.
func RenderFooter(width int, mode FooterMode) string {
	hints := footerHints[mode]
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, hintKey.Render(h[0])+hintText.Render(":"+h[1]))
	}

	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(strings.Join(parts, hintGap))
}
