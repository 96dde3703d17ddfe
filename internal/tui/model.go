package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go.dot.industries/zcfg/internal/tui/bridge"
	"go.dot.industries/zcfg/internal/tui/components"
)

// focusPane tracks which pane has focus.
type focusPane int

const (
	focusProfiles focusPane = iota
	focusProperties
)

// popup identifies which popup is currently open.
type popup int

const (
	popupNone popup = iota
	popupHelp
	popupLayerPicker
	popupDetail
	popupPropertyForm
	popupConfirm
)

// Property form fields, in tab order.
const (
	formFieldName = iota
	formFieldValue
	formFieldSecure
	formFieldCount
)

// model is the root Bubble Tea model of the config browser.
type model struct {
	// Dimensions
	width  int
	height int

	// Core data
	bridge *bridge.Bridge
	loaded bool
	layer  bridge.LayerTarget
	layers []bridge.LayerTarget

	// UI state
	focus       focusPane
	activePopup popup
	filtering   bool
	filterText  string

	// Components
	profiles   components.ProfileList
	properties components.PropertyTable
	statusBar  components.StatusBar

	// Layer picker
	layerPickerCursor int

	// Detail popup
	detail components.PropertyRow

	// Property form
	formName   textinput.Model
	formValue  textinput.Model
	formSecure bool
	formField  int
	formIsEdit bool

	// Confirm dialog
	confirmProperty string
	confirmCursor   int // 0=cancel, 1=confirm

	// Error state
	fatalError string
}

// newModel creates the initial model with the given bridge.
func newModel(b *bridge.Bridge) model {
	name := textinput.New()
	name.Placeholder = "property name"
	name.CharLimit = 128

	value := textinput.New()
	value.Placeholder = "value"

	return model{
		bridge:    b,
		focus:     focusProfiles,
		formName:  name,
		formValue: value,
	}
}

// Init reads the profile list of the already loaded config.
func (m model) Init() tea.Cmd {
	return loadConfigCmd(m.bridge, false)
}

// loadConfigCmd creates a command that lists profiles and layers, first
// re-reading every layer from disk when reload is set.
func loadConfigCmd(b *bridge.Bridge, reload bool) tea.Cmd {
	return func() tea.Msg {
		if reload {
			if err := b.Reload(); err != nil {
				return configErrorMsg{err: err}
			}
		}
		return configLoadedMsg{
			profiles: b.Profiles(),
			layers:   b.Layers(),
			active:   b.ActiveLayer(),
		}
	}
}

// loadPropertiesCmd creates a command that resolves the properties of a
// profile.
func loadPropertiesCmd(b *bridge.Bridge, profile string) tea.Cmd {
	return func() tea.Msg {
		props, err := b.Properties(profile)
		if err != nil {
			return propertiesErrorMsg{err: err}
		}
		return propertiesLoadedMsg{profile: profile, properties: props}
	}
}

// View renders the entire TUI.
func (m model) View() string {
	if m.fatalError != "" {
		return lipgloss.NewStyle().
			Foreground(tintFail).
			Padding(1, 2).
			Render("Error: " + m.fatalError + "\n\nPress q to quit.")
	}

	if !m.loaded {
		return lipgloss.NewStyle().
			Foreground(tintHint).
			Padding(1, 2).
			Render("Loading configuration...")
	}

	if m.width < minWidth || m.height < minHeight {
		return lipgloss.NewStyle().
			Foreground(tintCaution).
			Padding(1, 2).
			Render("Terminal too small. Please resize.")
	}

	dims := components.CalculateLayout(m.width, m.height)

	header := components.RenderHeader(m.width, m.bridge.App(), m.layer.Label, m.layer.Exists)

	leftContent := m.profiles.View(dims.LeftWidth-2, dims.ContentHeight-2)
	rightContent := m.properties.View(dims.RightWidth-2, dims.ContentHeight-2)
	panes := components.RenderDualPane(leftContent, rightContent, m.focus == focusProfiles, dims)

	m.statusBar.Profile = m.profiles.Selected()
	m.statusBar.ProfileCount = m.profiles.Len()
	m.statusBar.PropertyCount = m.properties.TotalLen()
	m.statusBar.Filtering = m.filtering
	m.statusBar.FilterText = m.filterText
	statusLine := m.statusBar.View(m.width)

	footer := components.RenderFooter(m.width, m.footerMode())

	view := lipgloss.JoinVertical(lipgloss.Left,
		header,
		panes,
		statusLine,
		footer,
	)

	if m.activePopup != popupNone {
		view = m.overlayPopup(view)
	}

	return view
}

// footerMode picks the key hints for the current popup or input mode.
func (m model) footerMode() components.FooterMode {
	switch m.activePopup {
	case popupNone:
		if m.filtering {
			return components.FooterFilter
		}
		return components.FooterBrowse
	case popupPropertyForm:
		return components.FooterForm
	case popupConfirm:
		return components.FooterConfirm
	default:
		return components.FooterPopup
	}
}

// overlayPopup renders the active popup centered on the screen.
func (m model) overlayPopup(base string) string {
	var popupContent string

	switch m.activePopup {
	case popupHelp:
		popupContent = m.renderHelpPopup()
	case popupLayerPicker:
		popupContent = m.renderLayerPickerPopup()
	case popupDetail:
		popupContent = m.renderDetailPopup()
	case popupPropertyForm:
		popupContent = m.renderPropertyFormPopup()
	case popupConfirm:
		popupContent = m.renderConfirmPopup()
	default:
		return base
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		popupContent,
		lipgloss.WithWhitespaceChars(" "),
	)
}
