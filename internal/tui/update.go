package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go.dot.industries/zcfg/internal/tui/bridge"
	"go.dot.industries/zcfg/internal/tui/components"
)

// Update handles all messages in the Elm architecture.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- Window ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	// --- Config lifecycle ---
	case configLoadedMsg:
		return m.handleConfigLoaded(msg)

	case configErrorMsg:
		m.fatalError = msg.err.Error()
		return m, nil

	// --- Profile data ---
	case profileSelectedMsg:
		return m, loadPropertiesCmd(m.bridge, msg.name)

	case propertiesLoadedMsg:
		m.properties.SetRows(msg.profile, propertyRows(msg.properties))
		return m, nil

	case propertiesErrorMsg:
		return m.setStatus("Error loading profile: "+msg.err.Error(), true, 3*time.Second)

	// --- Layers ---
	case layerChangedMsg:
		m.bridge.Activate(msg.target)
		m.activePopup = popupNone
		return m, loadConfigCmd(m.bridge, false)

	// --- Edits ---
	case propertySavedMsg:
		m.activePopup = popupNone
		next, cmd := m.setStatus("Saved "+msg.name, false, 3*time.Second)
		return next, tea.Batch(loadConfigCmd(m.bridge, false), cmd)

	case propertyDeletedMsg:
		m.activePopup = popupNone
		next, cmd := m.setStatus("Deleted "+msg.name, false, 3*time.Second)
		return next, tea.Batch(loadConfigCmd(m.bridge, false), cmd)

	case editErrorMsg:
		return m.setStatus(msg.op+" failed: "+msg.err.Error(), true, 5*time.Second)

	// --- Status ---
	case statusMsg:
		return m.setStatus(msg.text, msg.isError, 3*time.Second)

	case clearStatusMsg:
		m.statusBar.Message = ""
		m.statusBar.IsError = false
		return m, nil

	// --- Keyboard ---
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// setStatus shows a status message that clears itself after d.
func (m model) setStatus(text string, isError bool, d time.Duration) (model, tea.Cmd) {
	m.statusBar.Message = text
	m.statusBar.IsError = isError
	return m, clearStatusAfter(d)
}

// handleConfigLoaded refreshes the panes from a (re)loaded config.
func (m model) handleConfigLoaded(msg configLoadedMsg) (tea.Model, tea.Cmd) {
	first := !m.loaded
	m.loaded = true
	m.layer = msg.active
	m.layers = msg.layers

	items := make([]components.ProfileItem, 0, len(msg.profiles))
	for _, p := range msg.profiles {
		items = append(items, components.ProfileItem{Name: p.Name, Type: p.Type, IsDefault: p.IsDefault})
	}
	if first {
		m.profiles = components.NewProfileList(items)
	} else {
		m.profiles.SetItems(items)
	}

	selected := m.profiles.Selected()
	if selected == "" {
		m.properties.SetRows("", nil)
		return m, nil
	}
	return m, loadPropertiesCmd(m.bridge, selected)
}

// handleKey dispatches keyboard events based on current state.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.activePopup != popupNone {
		return m.handlePopupKey(msg)
	}

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.focus == focusProfiles {
			m.focus = focusProperties
		} else {
			m.focus = focusProfiles
		}
		m.profiles.Focused = m.focus == focusProfiles
		m.properties.Focused = m.focus == focusProperties
		return m, nil

	case key.Matches(msg, keys.Up):
		return m.handleNav(-1)

	case key.Matches(msg, keys.Down):
		return m.handleNav(1)

	case key.Matches(msg, keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, keys.Filter):
		m.filtering = true
		m.filterText = ""
		return m, nil

	case key.Matches(msg, keys.Layer):
		m.activePopup = popupLayerPicker
		m.layerPickerCursor = 0
		for i, l := range m.layers {
			if l.User == m.layer.User && l.Global == m.layer.Global {
				m.layerPickerCursor = i
				break
			}
		}
		return m, nil

	case key.Matches(msg, keys.Help):
		m.activePopup = popupHelp
		return m, nil

	case key.Matches(msg, keys.Reveal):
		m.properties.Reveal = !m.properties.Reveal
		return m, nil

	case key.Matches(msg, keys.Copy):
		return m.handleCopy()

	case key.Matches(msg, keys.Add):
		return m.openPropertyForm(nil)

	case key.Matches(msg, keys.Edit):
		if m.focus != focusProperties {
			return m, nil
		}
		return m.openPropertyForm(m.properties.Selected())

	case key.Matches(msg, keys.Delete):
		return m.handleDelete()

	case key.Matches(msg, keys.Reload):
		return m, loadConfigCmd(m.bridge, true)
	}

	return m, nil
}

// handleNav moves the cursor of the focused pane by delta rows.
func (m model) handleNav(delta int) (tea.Model, tea.Cmd) {
	if m.focus == focusProperties {
		if delta < 0 {
			m.properties.MoveUp()
		} else {
			m.properties.MoveDown()
		}
		return m, nil
	}

	prev := m.profiles.Selected()
	if delta < 0 {
		m.profiles.MoveUp()
	} else {
		m.profiles.MoveDown()
	}
	if selected := m.profiles.Selected(); selected != prev {
		return m, func() tea.Msg {
			return profileSelectedMsg{name: selected}
		}
	}
	return m, nil
}

// handleEnter opens the detail popup for the selected property.
func (m model) handleEnter() (tea.Model, tea.Cmd) {
	if m.focus == focusProfiles {
		m.focus = focusProperties
		m.profiles.Focused = false
		m.properties.Focused = true
		return m, nil
	}

	selected := m.properties.Selected()
	if selected == nil {
		return m, nil
	}

	m.activePopup = popupDetail
	m.detail = *selected
	return m, nil
}

// handleCopy copies the value of the property shown in the detail popup,
// or of the selected property.
func (m model) handleCopy() (tea.Model, tea.Cmd) {
	row := m.properties.Selected()
	if m.activePopup == popupDetail {
		row = &m.detail
	}
	if row == nil {
		return m, nil
	}

	if err := clipboard.WriteAll(row.Value); err != nil {
		return m.setStatus("Copy failed: "+err.Error(), true, 2*time.Second)
	}
	return m.setStatus("Copied "+row.Name+" to clipboard", false, 2*time.Second)
}

// openPropertyForm opens the property form, prefilled from row when
// editing.
func (m model) openPropertyForm(row *components.PropertyRow) (tea.Model, tea.Cmd) {
	if m.profiles.Selected() == "" {
		return m.setStatus("Select a profile first", true, 3*time.Second)
	}

	m.activePopup = popupPropertyForm
	m.formIsEdit = row != nil
	m.formField = formFieldName
	m.formName.SetValue("")
	m.formValue.SetValue("")
	m.formSecure = false

	if row != nil {
		m.formName.SetValue(row.Name)
		m.formValue.SetValue(row.Value)
		m.formSecure = row.Secure
		m.formField = formFieldValue
	}

	m.syncFormFocus()
	return m, textinput.Blink
}

// syncFormFocus focuses the text input of the current form field and masks
// the value of secure properties.
func (m *model) syncFormFocus() {
	m.formName.Blur()
	m.formValue.Blur()
	switch m.formField {
	case formFieldName:
		m.formName.Focus()
	case formFieldValue:
		m.formValue.Focus()
	}

	m.formValue.EchoMode = textinput.EchoNormal
	if m.formSecure {
		m.formValue.EchoMode = textinput.EchoPassword
	}
}

// handleDelete opens the delete confirmation for the selected property.
func (m model) handleDelete() (tea.Model, tea.Cmd) {
	if m.focus != focusProperties {
		return m, nil
	}

	selected := m.properties.Selected()
	if selected == nil {
		return m, nil
	}
	if selected.Inherited {
		return m.setStatus(selected.Name+" is inherited from a parent profile", true, 3*time.Second)
	}

	m.activePopup = popupConfirm
	m.confirmProperty = selected.Name
	m.confirmCursor = 0
	return m, nil
}

// handleFilterKey handles keyboard input while in filter mode.
func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.filtering = false
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.filtering = false
		return m, nil

	case msg.Type == tea.KeyBackspace:
		if len(m.filterText) > 0 {
			m.filterText = m.filterText[:len(m.filterText)-1]
			m.properties.ApplyFilter(m.filterText)
		}
		return m, nil

	case msg.Type == tea.KeyRunes:
		m.filterText += string(msg.Runes)
		m.properties.ApplyFilter(m.filterText)
		return m, nil
	}

	return m, nil
}

// handlePopupKey dispatches keyboard events for the currently active popup.
func (m model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Escape) {
		m.activePopup = popupNone
		return m, nil
	}

	switch m.activePopup {
	case popupLayerPicker:
		return m.handleLayerPickerKey(msg)

	case popupDetail:
		if key.Matches(msg, keys.Copy) {
			return m.handleCopy()
		}

	case popupPropertyForm:
		return m.handlePropertyFormKey(msg)

	case popupConfirm:
		return m.handleConfirmKey(msg)
	}

	return m, nil
}

// handleLayerPickerKey handles keys within the layer picker popup.
func (m model) handleLayerPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.layerPickerCursor > 0 {
			m.layerPickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.layerPickerCursor < len(m.layers)-1 {
			m.layerPickerCursor++
		}
	case msg.Type == tea.KeyEnter:
		if m.layerPickerCursor >= 0 && m.layerPickerCursor < len(m.layers) {
			target := m.layers[m.layerPickerCursor]
			return m, func() tea.Msg {
				return layerChangedMsg{target: target}
			}
		}
	}
	return m, nil
}

// handlePropertyFormKey handles keys within the add/edit property form.
func (m model) handlePropertyFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		step := 1
		if msg.Type == tea.KeyShiftTab {
			step = formFieldCount - 1
		}
		m.formField = (m.formField + step) % formFieldCount
		if m.formIsEdit && m.formField == formFieldName {
			m.formField = (m.formField + step) % formFieldCount
		}
		m.syncFormFocus()
		return m, nil

	case tea.KeyEnter:
		return m, saveProperty(m.bridge, m.profiles.Selected(), m.formName.Value(), m.formValue.Value(), m.formSecure)
	}

	if m.formField == formFieldSecure {
		if msg.Type == tea.KeySpace || msg.String() == "x" {
			m.formSecure = !m.formSecure
			m.syncFormFocus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.formField == formFieldName {
		m.formName, cmd = m.formName.Update(msg)
	} else {
		m.formValue, cmd = m.formValue.Update(msg)
	}
	return m, cmd
}

// handleConfirmKey handles keys within the delete confirmation popup.
func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.confirmCursor = 1 - m.confirmCursor
	case msg.String() == "y":
		return m, deleteProperty(m.bridge, m.profiles.Selected(), m.confirmProperty)
	case msg.String() == "n":
		m.activePopup = popupNone
	case msg.Type == tea.KeyEnter:
		if m.confirmCursor == 1 {
			return m, deleteProperty(m.bridge, m.profiles.Selected(), m.confirmProperty)
		}
		m.activePopup = popupNone
	}
	return m, nil
}

// --- Command factories ---

// saveProperty creates a command that writes a property to the active
// layer.
func saveProperty(b *bridge.Bridge, profile, name, value string, secure bool) tea.Cmd {
	return func() tea.Msg {
		if err := b.SetProperty(profile, name, value, secure); err != nil {
			return editErrorMsg{op: "Save", err: err}
		}
		return propertySavedMsg{name: name}
	}
}

// deleteProperty creates a command that removes a property from the active
// layer.
func deleteProperty(b *bridge.Bridge, profile, name string) tea.Cmd {
	return func() tea.Msg {
		if err := b.DeleteProperty(profile, name); err != nil {
			return editErrorMsg{op: "Delete", err: err}
		}
		return propertyDeletedMsg{name: name}
	}
}

// clearStatusAfter returns a command that sends clearStatusMsg after a delay.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// propertyRows converts resolved properties to table rows.
func propertyRows(props []bridge.Property) []components.PropertyRow {
	rows := make([]components.PropertyRow, 0, len(props))
	for _, p := range props {
		rows = append(rows, components.PropertyRow{
			Name:      p.Name,
			Value:     bridge.FormatValue(p.Value),
			Secure:    p.Secure,
			Inherited: p.Inherited,
		})
	}
	return rows
}
