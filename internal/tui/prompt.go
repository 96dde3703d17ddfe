package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go.dot.industries/zcfg/internal/config"
)

// ErrPromptCanceled is returned when the user aborts a prompt.
var ErrPromptCanceled = errors.New("prompt canceled")

// promptModel reads a single line of input.
type promptModel struct {
	label    string
	input    textinput.Model
	done     bool
	canceled bool
}

func newPromptModel(label, placeholder string, secure bool) promptModel {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "> "
	if secure {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '*'
	}
	in.Focus()

	return promptModel{label: label, input: in}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return keyStyle.Render(m.label) + "\n" + m.input.View() + "\n" +
		hintStyle.Render("enter:accept  esc:cancel") + "\n"
}

// value returns the entered text, or ErrPromptCanceled.
func (m promptModel) value() (string, error) {
	if m.canceled || !m.done {
		return "", ErrPromptCanceled
	}
	return m.input.Value(), nil
}

// Prompter asks questions on a terminal.
type Prompter struct {
	ctx context.Context
	in  io.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and drawing to out.
func NewPrompter(ctx context.Context, in io.Reader, out io.Writer) *Prompter {
	return &Prompter{ctx: ctx, in: in, out: out}
}

// Ask reads one line. Secure input is masked while typing.
func (p *Prompter) Ask(label, placeholder string, secure bool) (string, error) {
	prog := tea.NewProgram(
		newPromptModel(label, placeholder, secure),
		tea.WithContext(p.ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return final.(promptModel).value()
}

// PropertyPrompt returns a config.PromptFunc that asks for each property
// with Ask. A blank answer leaves the property out.
func (p *Prompter) PropertyPrompt() config.PromptFunc {
	return func(name string, def config.PropertyDefinition) (any, error) {
		label := "Enter " + name
		if def.Description != "" {
			label += " (" + def.Description + ")"
		}
		label += " - blank to skip:"

		placeholder := ""
		if def.Default != nil {
			placeholder = fmt.Sprint(def.Default)
		}

		answer, err := p.Ask(label, placeholder, def.Secure)
		if err != nil {
			return nil, err
		}
		return ParseAnswer(answer, def.Type)
	}
}

// ParseAnswer converts a prompt answer to a value of the given property
// type. A blank answer gives nil.
func ParseAnswer(answer, typ string) (any, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, nil
	}

	switch typ {
	case "string":
		return answer, nil
	case "number":
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", answer)
		}
		return f, nil
	case "boolean":
		b, err := strconv.ParseBool(answer)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", answer)
		}
		return b, nil
	case "array":
		var items []any
		for _, item := range strings.Split(answer, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, config.CoerceValue(item))
			}
		}
		return items, nil
	}

	return config.CoerceValue(answer), nil
}
