// ABOUTME: Confirmation dialog for destructive actions such as delete and delete all
// ABOUTME: The dialog closes when its action finishes, whether it succeeded or not
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// confirmDoneMsg reports the dialog's action.
type confirmDoneMsg struct {
	op  string
	err error
}

type confirmDialog struct {
	op      string
	title   string
	detail  string
	action  func(ctx context.Context) error
	running bool
}

func newConfirm(op, title, detail string, action func(ctx context.Context) error) *confirmDialog {
	return &confirmDialog{op: op, title: title, detail: detail, action: action}
}

// Update returns closed=true when the user backs out. Confirming starts the action; the
// owner closes the dialog on confirmDoneMsg.
func (c *confirmDialog) Update(ctx context.Context, msg tea.KeyMsg) (closed bool, cmd tea.Cmd) {
	if c.running {
		return false, nil
	}
	switch msg.String() {
	case "y", "Y":
		c.running = true
		op, action := c.op, c.action
		return false, func() tea.Msg {
			return confirmDoneMsg{op: op, err: action(ctx)}
		}
	case "n", "N", "esc":
		return true, nil
	}
	return false, nil
}

func (c *confirmDialog) View(width, height int) string {
	var s strings.Builder
	s.WriteString(warningStyle.Render("⚠️  " + c.title))
	s.WriteString("\n\n")
	if c.detail != "" {
		s.WriteString(c.detail)
		s.WriteString("\n\n")
	}
	if c.running {
		s.WriteString("Working...")
	} else {
		s.WriteString("This action cannot be undone.\n\n")
		s.WriteString(confirmButtonStyle.Render("[Y] Yes"))
		s.WriteString(cancelButtonStyle.Render("[N] No"))
	}
	box := confirmBoxStyle.Render(s.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
