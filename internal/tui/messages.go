package tui

import "go.dot.industries/zcfg/internal/tui/bridge"

// --- Config loading ---

// configLoadedMsg carries the profile list and layer set after a (re)load.
type configLoadedMsg struct {
	profiles []bridge.Profile
	layers   []bridge.LayerTarget
	active   bridge.LayerTarget
}

// configErrorMsg is sent when config loading fails.
type configErrorMsg struct{ err error }

// --- Profile selection ---

// profileSelectedMsg signals that the user selected a profile.
type profileSelectedMsg struct {
	name string
}

// propertiesLoadedMsg carries the resolved properties of a profile.
type propertiesLoadedMsg struct {
	profile    string
	properties []bridge.Property
}

// propertiesErrorMsg is sent when resolving a profile fails.
type propertiesErrorMsg struct{ err error }

// --- Layers ---

// layerChangedMsg signals that the user picked a new active layer.
type layerChangedMsg struct {
	target bridge.LayerTarget
}

// --- Edits ---

// propertySavedMsg signals that a property was written.
type propertySavedMsg struct{ name string }

// propertyDeletedMsg signals that a property was removed.
type propertyDeletedMsg struct{ name string }

// editErrorMsg is sent when writing or removing a property fails.
type editErrorMsg struct {
	op  string
	err error
}

// --- UI state ---

// statusMsg shows a temporary status message in the status bar.
type statusMsg struct {
	text    string
	isError bool
}

// clearStatusMsg clears the status message.
type clearStatusMsg struct{}
