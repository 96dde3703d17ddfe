package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ptSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0EA5E9"))

	ptNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1F5F9"))

	ptValue = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#94A3B8"))

	ptInherited = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	ptSecure = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EAB308"))

	ptTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#64748B"))

	ptFocusedRow = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1F5F9")).
			Bold(true)
)

// MaskedValue is shown instead of a secure value unless revealed.
const MaskedValue = "(secure value)"

// PropertyRow represents a single resolved property for display.
type PropertyRow struct {
	Name      string
	Value     string // formatted value
	Secure    bool
	Inherited bool
}

// display returns the value as shown in the table.
func (r PropertyRow) display(reveal bool) string {
	if r.Secure && !reveal {
		return MaskedValue
	}
	return r.Value
}

// PropertyTable holds the state for the property list pane.
type PropertyTable struct {
	Profile string
	AllRows []PropertyRow // all rows before filtering
	Rows    []PropertyRow // visible rows after filtering
	Cursor  int
	Focused bool
	Filter  string
	Reveal  bool // show secure values in clear text
	Offset  int  // scroll offset for viewport
}

// NewPropertyTable creates a table for the properties of profile. rows must
// already be sorted.
func NewPropertyTable(profile string, rows []PropertyRow) PropertyTable {
	return PropertyTable{
		Profile: profile,
		AllRows: rows,
		Rows:    rows,
	}
}

// SetRows replaces the table data and resets the cursor.
func (pt *PropertyTable) SetRows(profile string, rows []PropertyRow) {
	pt.Profile = profile
	pt.AllRows = rows
	pt.ApplyFilter(pt.Filter)
	pt.Cursor = 0
	pt.Offset = 0
}

// ApplyFilter filters rows by the given string (case-insensitive match on
// the property name, or on the value of non-secure properties).
func (pt *PropertyTable) ApplyFilter(filter string) {
	pt.Filter = filter
	if filter == "" {
		pt.Rows = pt.AllRows
		return
	}

	lower := strings.ToLower(filter)
	filtered := make([]PropertyRow, 0)
	for _, row := range pt.AllRows {
		if strings.Contains(strings.ToLower(row.Name), lower) ||
			(!row.Secure && strings.Contains(strings.ToLower(row.Value), lower)) {
			filtered = append(filtered, row)
		}
	}
	pt.Rows = filtered

	if pt.Cursor >= len(pt.Rows) {
		pt.Cursor = max(0, len(pt.Rows)-1)
	}
	pt.Offset = 0
}

// Selected returns the currently selected row, or nil if empty.
func (pt *PropertyTable) Selected() *PropertyRow {
	if pt.Cursor >= 0 && pt.Cursor < len(pt.Rows) {
		return &pt.Rows[pt.Cursor]
	}
	return nil
}

// MoveUp moves the cursor up by one.
func (pt *PropertyTable) MoveUp() {
	if pt.Cursor > 0 {
		pt.Cursor--
	}
}

// MoveDown moves the cursor down by one.
func (pt *PropertyTable) MoveDown() {
	if pt.Cursor < len(pt.Rows)-1 {
		pt.Cursor++
	}
}

// Len returns the number of visible rows.
func (pt *PropertyTable) Len() int {
	return len(pt.Rows)
}

// TotalLen returns the number of total (unfiltered) rows.
func (pt *PropertyTable) TotalLen() int {
	return len(pt.AllRows)
}

// View renders the property table pane.
func (pt *PropertyTable) View(width, height int) string {
	var b strings.Builder

	title := "Properties"
	if pt.Profile != "" {
		title += " of " + pt.Profile
	}
	countStr := fmt.Sprintf("%d keys", len(pt.Rows))
	titleLeft := ptTitle.Render(truncate(title, width-len(countStr)-3))
	spacer := max(width-lipgloss.Width(titleLeft)-lipgloss.Width(countStr)-2, 1)
	b.WriteString(titleLeft)
	b.WriteString(lipgloss.NewStyle().Width(spacer).Render(""))
	b.WriteString(ptTitle.Render(countStr))
	b.WriteString("\n")

	if len(pt.Rows) == 0 {
		b.WriteString(ptInherited.Render("  No properties"))
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Render(b.String())
	}

	viewportHeight := max(height-2, 1) // title + margin
	if pt.Cursor < pt.Offset {
		pt.Offset = pt.Cursor
	}
	if pt.Cursor >= pt.Offset+viewportHeight {
		pt.Offset = pt.Cursor - viewportHeight + 1
	}

	nameWidth := width * 2 / 5
	valueWidth := width - nameWidth - 3 // prefix + space

	for i := pt.Offset; i < len(pt.Rows) && i < pt.Offset+viewportHeight; i++ {
		row := pt.Rows[i]

		prefix := "  "
		nameStyle := ptNormal
		valueStyle := ptValue
		if row.Inherited {
			nameStyle = ptInherited
		}
		if row.Secure {
			valueStyle = ptSecure
		}
		if i == pt.Cursor {
			prefix = "> "
			if pt.Focused {
				nameStyle = ptSelected
				valueStyle = ptSelected
			} else {
				nameStyle = ptFocusedRow
			}
		}

		name := truncate(row.Name, nameWidth)
		value := truncate(row.display(pt.Reveal), valueWidth)
		b.WriteString(prefix + nameStyle.Render(padRight(name, nameWidth)) + " " + valueStyle.Render(value))
		if i < pt.Offset+viewportHeight-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(b.String())
}

// truncate shortens a string to maxLen with ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen < 4 {
		return s
	}
	return s[:maxLen-1] + "…"
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
