package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	plSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0EA5E9"))

	plNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))

	plFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1F5F9"))

	plDefault = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22C55E"))

	plTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#64748B")).
		MarginBottom(1)
)

// ProfileItem is one row of the profile list.
type ProfileItem struct {
	Name      string // dotted name
	Type      string
	IsDefault bool
}

// depth is the nesting level of the profile, 0 for top-level profiles.
func (p ProfileItem) depth() int {
	return strings.Count(p.Name, ".")
}

// label is the last segment of the dotted name.
func (p ProfileItem) label() string {
	return p.Name[strings.LastIndex(p.Name, ".")+1:]
}

// ProfileList holds the state for the profile selector pane.
type ProfileList struct {
	Items   []ProfileItem
	Cursor  int
	Focused bool
	Offset  int
}

// NewProfileList creates a list from items already sorted by name, so
// children follow their parent.
func NewProfileList(items []ProfileItem) ProfileList {
	return ProfileList{
		Items:   items,
		Focused: true,
	}
}

// SetItems replaces the items, keeping the cursor on the same profile when
// it still exists.
func (pl *ProfileList) SetItems(items []ProfileItem) {
	selected := pl.Selected()
	pl.Items = items
	pl.Cursor = 0
	for i, item := range items {
		if item.Name == selected {
			pl.Cursor = i
			break
		}
	}
}

// Selected returns the dotted name of the profile under the cursor, or "".
func (pl *ProfileList) Selected() string {
	if pl.Cursor >= 0 && pl.Cursor < len(pl.Items) {
		return pl.Items[pl.Cursor].Name
	}
	return ""
}

// MoveUp moves the cursor up by one.
func (pl *ProfileList) MoveUp() {
	if pl.Cursor > 0 {
		pl.Cursor--
	}
}

// MoveDown moves the cursor down by one.
func (pl *ProfileList) MoveDown() {
	if pl.Cursor < len(pl.Items)-1 {
		pl.Cursor++
	}
}

// Len returns the number of profiles.
func (pl *ProfileList) Len() int {
	return len(pl.Items)
}

// View renders the profile list pane. Nested profiles are indented under
// their parent and default profiles are marked with "*".
func (pl *ProfileList) View(width, height int) string {
	var b strings.Builder

	b.WriteString(plTitle.Render("Profiles"))
	b.WriteString("\n")

	if len(pl.Items) == 0 {
		b.WriteString(plNormal.Italic(true).Render("  none"))
		return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
	}

	viewportHeight := max(height-2, 1) // title + margin
	if pl.Cursor < pl.Offset {
		pl.Offset = pl.Cursor
	}
	if pl.Cursor >= pl.Offset+viewportHeight {
		pl.Offset = pl.Cursor - viewportHeight + 1
	}

	for i := pl.Offset; i < len(pl.Items) && i < pl.Offset+viewportHeight; i++ {
		item := pl.Items[i]

		prefix := "  "
		style := plNormal
		if i == pl.Cursor {
			prefix = "> "
			if pl.Focused {
				style = plSelected
			} else {
				style = plFocused
			}
		}

		line := style.Render(prefix + strings.Repeat("  ", item.depth()) + truncate(item.label(), width-4-2*item.depth()))
		if item.IsDefault {
			line += plDefault.Render(" *")
		}
		b.WriteString(line)
		if i < len(pl.Items)-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(b.String())
}
