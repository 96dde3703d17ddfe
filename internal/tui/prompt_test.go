package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func TestPromptModel(t *testing.T) {
	m := newPromptModel("Enter host:", "", false)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("example.com")})
	updated, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit the prompt")
	}

	got, err := updated.(promptModel).value()
	if err != nil || got != "example.com" {
		t.Errorf("value() = %q, %v", got, err)
	}
	if updated.View() != "" {
		t.Error("finished prompt should render nothing")
	}
}

func TestPromptModel_Cancel(t *testing.T) {
	m := newPromptModel("Enter host:", "", true)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, err := updated.(promptModel).value(); !errors.Is(err, ErrPromptCanceled) {
		t.Errorf("value() error = %v, want ErrPromptCanceled", err)
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		answer  string
		typ     string
		want    any
		wantErr bool
	}{
		{"", "string", nil, false},
		{"  ", "number", nil, false},
		{"host", "string", "host", false},
		{"443", "string", "443", false},
		{"443", "number", 443.0, false},
		{"abc", "number", nil, true},
		{"true", "boolean", true, false},
		{"maybe", "boolean", nil, true},
		{"a, 2 ,", "array", []any{"a", 2.0}, false},
		{"false", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.answer, func(t *testing.T) {
			got, err := ParseAnswer(tt.answer, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnswer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAnswer() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
