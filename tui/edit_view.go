// ABOUTME: Add and edit forms built from textinputs with focus cycling
// ABOUTME: Choice fields cycle through a vocabulary with left and right instead of free text
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/models"
)

type formField struct {
	key         string
	label       string
	placeholder string
	value       string
	options     []string
	secret      bool
	limit       int
}

type formResult int

const (
	formPending formResult = iota
	formSubmitted
	formCancelled
)

type form struct {
	title  string
	fields []formField
	inputs []textinput.Model
	focus  int
	busy   bool
}

func newForm(title string, fields ...formField) *form {
	f := &form{title: title, fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, fld := range fields {
		in := textinput.New()
		in.Placeholder = fld.placeholder
		if in.Placeholder == "" {
			in.Placeholder = fld.label
		}
		in.CharLimit = 200
		if fld.limit > 0 {
			in.CharLimit = fld.limit
		}
		if fld.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		value := fld.value
		if value == "" && len(fld.options) > 0 {
			value = fld.options[0]
		}
		in.SetValue(value)
		f.inputs[i] = in
	}
	f.updateFocus()
	return f
}

func (f *form) updateFocus() {
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// Values returns the trimmed input per field key.
func (f *form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, fld := range f.fields {
		out[fld.key] = strings.TrimSpace(f.inputs[i].Value())
	}
	return out
}

// Set replaces one field's value.
func (f *form) Set(key, value string) {
	for i, fld := range f.fields {
		if fld.key == key {
			f.inputs[i].SetValue(value)
		}
	}
}

func (f *form) Update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	if f.busy {
		return formPending, nil
	}
	switch msg.String() {
	case "esc":
		return formCancelled, nil
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.inputs)
		f.updateFocus()
		return formPending, nil
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
		f.updateFocus()
		return formPending, nil
	case "enter", "ctrl+s":
		if msg.String() == "enter" && f.focus < len(f.inputs)-1 {
			f.focus++
			f.updateFocus()
			return formPending, nil
		}
		return formSubmitted, nil
	}

	fld := f.fields[f.focus]
	if len(fld.options) > 0 {
		switch msg.String() {
		case "left", "h":
			f.inputs[f.focus].SetValue(models.Cycle(fld.options, f.inputs[f.focus].Value(), -1))
		case "right", "l", " ":
			f.inputs[f.focus].SetValue(models.Cycle(fld.options, f.inputs[f.focus].Value(), 1))
		}
		return formPending, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formPending, cmd
}

var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Width(16)

	formChoiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

func (f *form) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(f.title)))
	s.WriteString("\n\n")

	for i, fld := range f.fields {
		if i == f.focus {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(formLabelStyle.Render(fld.label))
		if len(fld.options) > 0 {
			s.WriteString(formChoiceStyle.Render("‹ " + f.inputs[i].Value() + " ›"))
		} else {
			s.WriteString(f.inputs[i].View())
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	help := []string{"Tab: Next field", "←/→: Change choice", "Ctrl+S: Save", "Esc: Cancel"}
	if f.busy {
		help = []string{"Saving..."}
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}
