package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/credential"
	"go.dot.industries/zcfg/internal/tui/bridge"
)

func testModel(t *testing.T) (model, string) {
	t.Helper()
	project := t.TempDir()
	path := filepath.Join(project, "zowe.config.json")
	content := `{
		"profiles": {
			"lpar1": {
				"properties": {"host": "example.com"},
				"secure": ["user"],
				"profiles": {
					"zosmf": {"type": "zosmf", "properties": {"port": 1443}}
				}
			},
			"base": {"type": "base", "properties": {"rejectUnauthorized": true}}
		},
		"defaults": {"zosmf": "lpar1.zosmf"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(context.Background(), "zowe",
		config.WithHomeDir(t.TempDir()),
		config.WithProjectDir(project),
		config.WithVault(credential.NewMemory()))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return newModel(bridge.New(context.Background(), cfg)), path
}

// send applies msg and then runs the returned command once, applying its
// message too. Batches and ticks are not followed.
func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(model)
	if cmd == nil {
		return m
	}
	next := cmd()
	switch next.(type) {
	case nil, tea.BatchMsg, clearStatusMsg:
		return m
	}
	updated, _ = m.Update(next)
	return updated.(model)
}

func loaded(t *testing.T) (model, string) {
	t.Helper()
	m, path := testModel(t)
	m = send(t, m, m.Init()())
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, path
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfigLoadedMsg(t *testing.T) {
	m, path := loaded(t)

	if !m.loaded {
		t.Fatal("model should be loaded after configLoadedMsg")
	}
	if m.layer.Label != "project" || m.layer.Path != path {
		t.Errorf("active layer = %+v, want project %s", m.layer, path)
	}
	if len(m.layers) != 4 {
		t.Errorf("expected 4 layers, got %d", len(m.layers))
	}
	if m.profiles.Len() != 3 {
		t.Errorf("expected 3 profiles, got %d", m.profiles.Len())
	}
	if m.properties.Profile != "base" || m.properties.TotalLen() != 1 {
		t.Errorf("properties of %q: %d rows, want base with 1", m.properties.Profile, m.properties.TotalLen())
	}
}

func TestConfigErrorMsg(t *testing.T) {
	m, _ := testModel(t)

	updated, _ := m.Update(configErrorMsg{err: errors.New("broken")})
	mdl := updated.(model)

	if mdl.fatalError != "broken" {
		t.Errorf("fatalError = %q, want broken", mdl.fatalError)
	}
	if !strings.Contains(mdl.View(), "broken") {
		t.Error("View() should show the fatal error")
	}
}

func TestWindowSizeMsg(t *testing.T) {
	m, _ := testModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	mdl := updated.(model)

	if mdl.width != 100 || mdl.height != 30 {
		t.Errorf("size = %dx%d, want 100x30", mdl.width, mdl.height)
	}
}

func TestViewTooSmall(t *testing.T) {
	m, _ := loaded(t)

	m = send(t, m, tea.WindowSizeMsg{Width: minWidth - 1, Height: minHeight})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Errorf("narrow terminal should show the resize notice:\n%s", m.View())
	}

	m = send(t, m, tea.WindowSizeMsg{Width: minWidth, Height: minHeight})
	if strings.Contains(m.View(), "Terminal too small") {
		t.Error("minimum size should render the browser")
	}
}

func TestTabSwitchesFocus(t *testing.T) {
	m, _ := loaded(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusProperties || m.profiles.Focused || !m.properties.Focused {
		t.Errorf("after tab: focus = %v", m.focus)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusProfiles {
		t.Errorf("after second tab: focus = %v", m.focus)
	}
}

func TestNavigationLoadsProfile(t *testing.T) {
	m, _ := loaded(t)

	m = send(t, m, runes("j"))
	m = send(t, m, runes("j"))
	// profileSelectedMsg returns a load command that send does not follow.
	m = send(t, m, loadPropertiesCmd(m.bridge, m.profiles.Selected())())

	if m.properties.Profile != "lpar1.zosmf" {
		t.Fatalf("properties of %q, want lpar1.zosmf", m.properties.Profile)
	}

	var names []string
	for _, row := range m.properties.AllRows {
		names = append(names, row.Name)
	}
	if diff := cmp.Diff([]string{"host", "port", "user"}, names); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterMode(t *testing.T) {
	m, _ := loaded(t)
	m.properties.SetRows("lpar1", propertyRows([]bridge.Property{
		{Name: "host", Value: "example.com"},
		{Name: "port", Value: 443.0},
	}))

	m = send(t, m, runes("/"))
	if !m.filtering {
		t.Fatal("/ should enter filter mode")
	}

	m = send(t, m, runes("po"))
	if m.filterText != "po" || m.properties.Len() != 1 {
		t.Errorf("filter %q matched %d rows, want 1", m.filterText, m.properties.Len())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.filterText != "p" {
		t.Errorf("after backspace filter = %q", m.filterText)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.filtering {
		t.Error("esc should leave filter mode")
	}
}

func TestLayerPicker(t *testing.T) {
	m, _ := loaded(t)

	m = send(t, m, runes("l"))
	if m.activePopup != popupLayerPicker {
		t.Fatal("l should open the layer picker")
	}
	if got := m.layers[m.layerPickerCursor].Label; got != "project" {
		t.Errorf("picker starts on %q, want the active layer", got)
	}

	for i, l := range m.layers {
		if l.User && l.Global {
			m.layerPickerCursor = i
		}
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should pick the layer")
	}
	changed, ok := cmd().(layerChangedMsg)
	if !ok {
		t.Fatal("enter should send layerChangedMsg")
	}
	m = send(t, m, changed)

	if m.activePopup != popupNone {
		t.Error("picker should close after selecting")
	}
	if !m.layer.User || !m.layer.Global {
		t.Errorf("active layer = %+v, want global user", m.layer)
	}
}

func TestAddProperty(t *testing.T) {
	m, path := loaded(t)

	m = send(t, m, runes("a"))
	if m.activePopup != popupPropertyForm || m.formField != formFieldName {
		t.Fatalf("a should open the form on the name field, popup = %v", m.activePopup)
	}

	m = send(t, m, runes("protocol"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, runes("https"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.activePopup != popupNone {
		t.Errorf("form should close after saving, status = %q", m.statusBar.Message)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"protocol": "https"`) {
		t.Errorf("saved file missing property:\n%s", data)
	}
}

func TestAddSecureProperty(t *testing.T) {
	m, path := loaded(t)

	m = send(t, m, runes("a"))
	m = send(t, m, runes("password"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, runes("s3cret"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if !m.formSecure {
		t.Fatal("space on the secure field should toggle it")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Errorf("secure value written to disk:\n%s", data)
	}
}

func TestDeleteProperty(t *testing.T) {
	m, path := loaded(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, runes("d"))
	if m.activePopup != popupConfirm || m.confirmProperty != "rejectUnauthorized" {
		t.Fatalf("d should confirm deleting rejectUnauthorized, got popup %v %q", m.activePopup, m.confirmProperty)
	}

	m = send(t, m, runes("j"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "rejectUnauthorized") {
		t.Errorf("property still on disk:\n%s", data)
	}
}

func TestDeleteInheritedPropertyRefused(t *testing.T) {
	m, _ := loaded(t)
	m.focus = focusProperties
	m.properties.SetRows("lpar1.zosmf", propertyRows([]bridge.Property{
		{Name: "host", Value: "example.com", Inherited: true},
	}))

	m = send(t, m, runes("d"))
	if m.activePopup != popupNone {
		t.Error("inherited property should not open the confirm dialog")
	}
	if !m.statusBar.IsError {
		t.Error("expected an error status")
	}
}

func TestEscapeClosesPopup(t *testing.T) {
	m, _ := loaded(t)

	m = send(t, m, runes("?"))
	if m.activePopup != popupHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help popup not rendered")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.activePopup != popupNone {
		t.Error("esc should close the popup")
	}
}

func TestRevealToggle(t *testing.T) {
	m, _ := loaded(t)

	m = send(t, m, runes("s"))
	if !m.properties.Reveal {
		t.Error("s should reveal secure values")
	}
	m = send(t, m, runes("s"))
	if m.properties.Reveal {
		t.Error("second s should hide secure values")
	}
}

func TestQuit(t *testing.T) {
	m, _ := loaded(t)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
