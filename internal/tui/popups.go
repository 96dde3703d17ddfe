package tui

import (
	"fmt"
	"strings"

	"go.dot.industries/zcfg/internal/tui/components"
)

// renderHelpPopup returns the help overlay content.
func (m model) renderHelpPopup() string {
	var b strings.Builder
	for _, binding := range keys.helpBindings() {
		h := binding.Help()
		b.WriteString(keyStyle.Width(14).Render(h.Key) + " " + descStyle.Render(h.Desc) + "\n")
	}

	return dialogStyle.
		Width(60).
		Render(
			headingStyle.Render("Keyboard Shortcuts") + "\n\n" +
				b.String(),
		)
}

// renderLayerPickerPopup returns the layer picker overlay.
func (m model) renderLayerPickerPopup() string {
	var b strings.Builder
	for i, l := range m.layers {
		prefix := "  "
		style := valueStyle
		if i == m.layerPickerCursor {
			prefix = "> "
			style = cursorStyle
		}
		line := prefix + l.Label
		if l.User == m.layer.User && l.Global == m.layer.Global {
			line += " (active)"
		}
		b.WriteString(style.Render(line))
		if !l.Exists {
			b.WriteString(hintStyle.Render("  new"))
		}
		b.WriteString("\n" + faintStyle.Render("    "+l.Path) + "\n")
	}

	return dialogStyle.
		Width(min(m.width-10, 70)).
		Render(
			headingStyle.Render("Active Layer") + "\n\n" +
				b.String() + "\n" +
				hintStyle.Render("j/k:nav  enter:select  esc:close"),
		)
}

// renderDetailPopup returns the property detail overlay.
func (m model) renderDetailPopup() string {
	value := valueStyle.Render(m.detail.Value)
	if m.detail.Secure && !m.properties.Reveal {
		value = hintStyle.Render(components.MaskedValue)
	}

	var flags []string
	if m.detail.Secure {
		flags = append(flags, "secure")
	}
	if m.detail.Inherited {
		flags = append(flags, "inherited")
	}
	kind := "plain"
	if len(flags) > 0 {
		kind = strings.Join(flags, ", ")
	}

	return dialogStyle.
		Width(min(m.width-10, 70)).
		Render(
			headingStyle.Render("Property Detail") + "\n\n" +
				"Profile:  " + keyStyle.Render(m.properties.Profile) + "\n" +
				"Name:     " + keyStyle.Render(m.detail.Name) + "\n" +
				"Kind:     " + faintStyle.Render(kind) + "\n\n" +
				"Value:\n" + value + "\n\n" +
				hintStyle.Render("c:copy  s:show secure  esc:close"),
		)
}

// renderPropertyFormPopup returns the add/edit property form overlay.
func (m model) renderPropertyFormPopup() string {
	title := "New Property"
	if m.formIsEdit {
		title = "Edit Property"
	}

	secure := "[ ]"
	if m.formSecure {
		secure = "[x]"
	}

	fields := []struct {
		label string
		value string
	}{
		{"Name", m.formName.View()},
		{"Value", m.formValue.View()},
		{"Secure", secure},
	}

	var b strings.Builder
	for i, f := range fields {
		label := faintStyle.Render(fmt.Sprintf("  %-8s", f.label+":"))
		if i == m.formField {
			label = keyStyle.Render(fmt.Sprintf("> %-8s", f.label+":"))
		}
		b.WriteString(label + " " + f.value + "\n")
	}

	return dialogStyle.
		Width(min(m.width-10, 60)).
		Render(
			headingStyle.Render(title) + "\n" +
				faintStyle.Render("profile "+m.profiles.Selected()+" in "+m.layer.Label) + "\n\n" +
				b.String() + "\n" +
				hintStyle.Render("tab:next field  space:toggle secure  enter:save  esc:cancel"),
		)
}

// renderConfirmPopup returns the delete confirmation overlay.
func (m model) renderConfirmPopup() string {
	choices := []string{"Cancel", "Delete"}
	var b strings.Builder
	for i, c := range choices {
		prefix := "  "
		style := valueStyle
		if i == m.confirmCursor {
			prefix = "> "
			style = cursorStyle
		}
		b.WriteString(style.Render(prefix+c) + "\n")
	}

	return dialogStyle.
		Width(min(m.width-10, 50)).
		Render(
			headingStyle.Render("Confirm Delete") + "\n\n" +
				valueStyle.Render(fmt.Sprintf("Delete %s from %s?",
					keyStyle.Render(m.confirmProperty),
					m.profiles.Selected())) + "\n\n" +
				b.String() + "\n" +
				hintStyle.Render("y:delete  n:keep  j/k:nav  enter:confirm"),
		)
}
