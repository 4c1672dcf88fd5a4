// ABOUTME: Bubbletea panel around the Sidebar state machine
// ABOUTME: Keys map to Sidebar actions; requests run as commands and report back with ResultMsg
package sidebar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/models"
)

// Op names a sidebar request for result messages and notices.
type Op string

const (
	OpSave     Op = "save"
	OpStatus   Op = "status"
	OpAssign   Op = "assign"
	OpNote     Op = "note"
	OpReminder Op = "reminder"
	OpDelete   Op = "delete"
	OpCopy     Op = "copy"
)

// ResultMsg reports a finished sidebar request.
type ResultMsg struct {
	ID  string
	Op  Op
	Err error
}

// ClosedMsg asks the page to hide the panel.
type ClosedMsg struct {
	ID      string
	Deleted bool
}

type inputMode int

const (
	inputNone inputMode = iota
	inputNote
	inputReminder
)

// Model renders a Sidebar and turns keys into its actions.
type Model struct {
	sb  *Sidebar
	ctx context.Context

	fields []models.Field
	inputs []textinput.Model
	focus  int

	mode      inputMode
	note      textinput.Model
	remText   textinput.Model
	remDate   textinput.Model
	remFocus  int
	statusSel string

	copy func(string) error

	message string
	width   int
	height  int
}

// NewModel wraps sb. ctx is passed to every request the panel issues.
func NewModel(ctx context.Context, sb *Sidebar) Model {
	note := textinput.New()
	note.Placeholder = "Add a note"
	note.CharLimit = 500

	remText := textinput.New()
	remText.Placeholder = "Reminder"
	remText.CharLimit = 200

	remDate := textinput.New()
	remDate.Placeholder = "YYYY-MM-DDTHH:MM"
	remDate.CharLimit = 16

	m := Model{
		sb:        sb,
		ctx:       ctx,
		note:      note,
		remText:   remText,
		remDate:   remDate,
		statusSel: sb.Record().Status,
		copy:      clipboard.WriteAll,
		width:     48,
		height:    24,
	}
	for _, f := range sb.Fields() {
		if !f.Custom {
			m.fields = append(m.fields, f)
		}
	}
	return m
}

func (m Model) Sidebar() *Sidebar { return m.sb }

// Typing reports whether a text input has focus, so the shell should not treat keys as
// global shortcuts.
func (m Model) Typing() bool {
	return m.mode != inputNone || m.sb.State() == StateEditing
}

func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m
}

func (m *Model) initInputs() {
	draft, _ := m.sb.Draft()
	m.inputs = make([]textinput.Model, len(m.fields))
	for i, f := range m.fields {
		in := textinput.New()
		in.Placeholder = f.Label
		in.CharLimit = 500
		in.SetValue(draft.RecordField(f.Key))
		m.inputs[i] = in
	}
	m.focus = 0
	m.updateFocus()
}

func (m *Model) updateFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m Model) run(op Op, fn func(ctx context.Context) error) tea.Cmd {
	id := m.sb.Record().ID
	ctx := m.ctx
	return func() tea.Msg {
		return ResultMsg{ID: id, Op: op, Err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m.handleResult(msg)
	case tea.KeyMsg:
		state := m.sb.State()
		if state == StateConfirmDelete {
			return m.handleConfirmKeys(msg)
		}
		if m.mode != inputNone {
			return m.handleInputKeys(msg)
		}
		switch state {
		case StateEditing:
			return m.handleEditKeys(msg)
		case StateViewing:
			return m.handleViewKeys(msg)
		}
	}
	return m, nil
}

func (m Model) handleResult(msg ResultMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		var verr *models.ValidationError
		if errors.As(msg.Err, &verr) {
			m.message = verr.Error()
		} else {
			m.message = fmt.Sprintf("%s failed", msg.Op)
		}
		return m, nil
	}
	m.message = ""
	switch msg.Op {
	case OpNote:
		m.note.SetValue("")
		m.mode = inputNone
	case OpReminder:
		m.remText.SetValue("")
		m.remDate.SetValue("")
		m.mode = inputNone
	case OpStatus:
		m.statusSel = m.sb.Record().Status
	case OpDelete:
		return m, func() tea.Msg { return ClosedMsg{ID: msg.ID, Deleted: true} }
	}
	return m, nil
}

func (m Model) handleViewKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		id := m.sb.Record().ID
		return m, func() tea.Msg { return ClosedMsg{ID: id} }
	case "e":
		if err := m.sb.BeginEdit(); err == nil {
			m.initInputs()
		}
		return m, nil
	case "d":
		m.sb.RequestDelete()
		return m, nil
	case "y":
		return m, m.copyField("email")
	case "Y":
		return m, m.copyField("phone")
	}

	if m.sb.LeadSections() {
		switch msg.String() {
		case "s":
			return m.cycleStatus(1)
		case "S":
			return m.cycleStatus(-1)
		case "ctrl+s":
			return m, m.applyStatus()
		case "n":
			return m.openNote()
		case "r":
			return m.openReminder()
		}
	}
	return m.handleAssignKeys(msg)
}

func (m Model) cycleStatus(step int) (Model, tea.Cmd) {
	m.statusSel = models.Cycle(models.LeadStatuses, m.statusSel, step)
	return m, nil
}

func (m Model) applyStatus() tea.Cmd {
	status := m.statusSel
	sb := m.sb
	return m.run(OpStatus, func(ctx context.Context) error { return sb.ChangeStatus(ctx, status) })
}

func (m Model) openNote() (Model, tea.Cmd) {
	m.mode = inputNote
	m.note.Focus()
	return m, textinput.Blink
}

func (m Model) openReminder() (Model, tea.Cmd) {
	m.mode = inputReminder
	m.remFocus = 0
	m.remText.Focus()
	m.remDate.Blur()
	return m, textinput.Blink
}

func (m Model) handleAssignKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "[":
		m.sb.CycleAssignee(-1)
	case "]":
		m.sb.CycleAssignee(1)
	case "a":
		if !m.sb.CanAssign() {
			return m, nil
		}
		return m, m.run(OpAssign, m.sb.Assign)
	}
	return m, nil
}

func (m Model) copyField(key string) tea.Cmd {
	value := m.sb.Record().RecordField(key)
	if value == "" {
		return nil
	}
	copyFn := m.copy
	return m.run(OpCopy, func(context.Context) error { return copyFn(value) })
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.note.Blur()
		m.remText.Blur()
		m.remDate.Blur()
		return m, nil
	case "tab":
		if m.mode == inputReminder {
			m.remFocus = 1 - m.remFocus
			if m.remFocus == 0 {
				m.remText.Focus()
				m.remDate.Blur()
			} else {
				m.remDate.Focus()
				m.remText.Blur()
			}
		}
		return m, nil
	case "enter":
		if m.mode == inputNote {
			text := m.note.Value()
			return m, m.run(OpNote, func(ctx context.Context) error { return m.sb.AddNote(ctx, text) })
		}
		text := m.remText.Value()
		at, err := models.ParseTimestamp(m.remDate.Value())
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		return m, m.run(OpReminder, func(ctx context.Context) error { return m.sb.AddReminder(ctx, text, at.Time) })
	}

	var cmd tea.Cmd
	switch {
	case m.mode == inputNote:
		m.note, cmd = m.note.Update(msg)
	case m.remFocus == 0:
		m.remText, cmd = m.remText.Update(msg)
	default:
		m.remDate, cmd = m.remDate.Update(msg)
	}
	return m, cmd
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sb.CancelEdit()
		m.inputs = nil
		m.message = ""
		return m, nil
	case "tab", "down":
		if len(m.inputs) > 0 {
			m.focus = (m.focus + 1) % len(m.inputs)
			m.updateFocus()
		}
		return m, nil
	case "shift+tab", "up":
		if len(m.inputs) > 0 {
			m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
			m.updateFocus()
		}
		return m, nil
	case "ctrl+s", "enter":
		for i, f := range m.fields {
			if err := m.sb.SetDraftField(f.Key, m.inputs[i].Value()); err != nil {
				m.message = err.Error()
				return m, nil
			}
		}
		return m, m.run(OpSave, m.sb.Save)
	case "ctrl+d":
		m.sb.RequestDelete()
		return m, nil
	case "ctrl+a":
		if !m.sb.CanAssign() {
			return m, nil
		}
		return m, m.run(OpAssign, m.sb.Assign)
	case "ctrl+left":
		m.sb.CycleAssignee(-1)
		return m, nil
	case "ctrl+right":
		m.sb.CycleAssignee(1)
		return m, nil
	}

	// Status, notes and reminders persist immediately while editing too; the draft follows.
	if m.sb.LeadSections() {
		switch msg.String() {
		case "ctrl+t":
			return m.cycleStatus(1)
		case "ctrl+g":
			return m, m.applyStatus()
		case "ctrl+n":
			return m.openNote()
		case "ctrl+r":
			return m.openReminder()
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, m.run(OpDelete, m.sb.ConfirmDelete)
	case "n", "N", "esc":
		m.sb.CancelDelete()
	}
	return m, nil
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(14)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2)
)

func renderField(label, value string) string {
	if value == "" {
		value = mutedStyle.Render("No " + label)
	} else {
		value = fieldValueStyle.Render(value)
	}
	return fieldLabelStyle.Render(label+":") + " " + value + "\n"
}

func (m Model) View() string {
	rec := m.sb.Record()
	state := m.sb.State()

	if state == StateConfirmDelete {
		box := confirmBoxStyle.Render(fmt.Sprintf(
			"Delete %s %q?\n\nThis cannot be undone.\n\n%s",
			m.sb.Entity(), rec.Name, helpStyle.Render("y: delete • n: cancel"),
		))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var s strings.Builder
	title := strings.ToUpper(string(m.sb.Entity()))
	if state == StateEditing {
		title = "EDIT " + title
	}
	s.WriteString(panelTitleStyle.Render(title))
	s.WriteString("\n")

	if state == StateEditing {
		for i, in := range m.inputs {
			prefix := "  "
			if i == m.focus {
				prefix = "> "
			}
			s.WriteString(prefix + fieldLabelStyle.Render(m.fields[i].Label+":") + " " + in.View() + "\n")
		}
	} else {
		for _, f := range m.fields {
			s.WriteString(renderField(f.Label, rec.RecordField(f.Key)))
		}
	}

	for _, f := range m.sb.Fields() {
		if f.Custom && f.Key == "assignee" {
			s.WriteString(renderField(f.Label, m.sb.AssigneeName()))
			if state == StateEditing || m.sb.Selection() != rec.Assignee {
				pick := models.UserName(m.sb.Users(), m.sb.Selection())
				hint := "a: assign"
				if !m.sb.CanAssign() {
					hint = "unchanged"
				}
				s.WriteString(mutedStyle.Render(fmt.Sprintf("  ‹ %s › %s", pick, hint)) + "\n")
			}
		}
	}

	if m.sb.LeadSections() {
		s.WriteString("\n")
		status := rec.Status
		if m.statusSel != status {
			apply := "ctrl+s"
			if state == StateEditing {
				apply = "ctrl+g"
			}
			status = fmt.Sprintf("%s → %s (%s)", rec.Status, m.statusSel, apply)
		}
		s.WriteString(renderField("Status", status))

		s.WriteString("\n" + fieldLabelStyle.Render("Notes") + "\n")
		if len(rec.Notes) == 0 {
			s.WriteString(mutedStyle.Render("  No notes") + "\n")
		}
		for _, n := range rec.Notes {
			s.WriteString("  • " + n + "\n")
		}
		if m.mode == inputNote {
			s.WriteString("  " + m.note.View() + "\n")
		}

		s.WriteString("\n" + fieldLabelStyle.Render("Reminders") + "\n")
		if len(rec.Reminders) == 0 {
			s.WriteString(mutedStyle.Render("  No reminders") + "\n")
		}
		for _, r := range rec.Reminders {
			s.WriteString(fmt.Sprintf("  • %s %s\n", r.Text, mutedStyle.Render(r.Date.Format("Jan 2 15:04"))))
		}
		if m.mode == inputReminder {
			s.WriteString("  " + m.remText.View() + "\n  " + m.remDate.View() + "\n")
		}
	}

	if m.message != "" {
		s.WriteString("\n" + errorStyle.Render(m.message) + "\n")
	}
	if m.sb.Busy() {
		s.WriteString("\n" + mutedStyle.Render("saving…") + "\n")
	}

	s.WriteString(m.renderHelp(state))
	return panelStyle.Width(max(m.width-2, 20)).Render(s.String())
}

func (m Model) renderHelp(state State) string {
	var help []string
	switch {
	case m.mode != inputNone:
		help = []string{"enter: add", "tab: next", "esc: cancel"}
	case state == StateEditing:
		help = []string{"tab: next field", "ctrl+s: save", "esc: cancel edit", "ctrl+d: delete"}
		if m.sb.LeadSections() {
			help = append(help, "ctrl+t/ctrl+g: pick/set status", "ctrl+n: note", "ctrl+r: reminder")
		}
	default:
		help = []string{"e: edit", "d: delete", "[ ]: pick assignee", "y/Y: copy email/phone", "esc: close"}
		if m.sb.LeadSections() {
			help = append(help, "s: status", "n: note", "r: reminder")
		}
	}
	return helpStyle.Render(strings.Join(help, " • "))
}
