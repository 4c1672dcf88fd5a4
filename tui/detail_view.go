package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type detailRow struct {
	label string
	value string
}

// detailPanel is the read-mostly panel for tasks, deals, meetings and groups. Leads and
// contacts use the sidebar package instead.
type detailPanel struct {
	id      string
	title   string
	rows    []detailRow
	heading string // list caption, e.g. "Members"
	list    []string
	cursor  int
	help    []string
}

func (d *detailPanel) move(step int) {
	if len(d.list) == 0 {
		return
	}
	d.cursor = min(max(d.cursor+step, 0), len(d.list)-1)
}

func renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (d *detailPanel) View(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(d.title))
	s.WriteString("\n")

	for _, r := range d.rows {
		s.WriteString(renderField(r.label, r.value))
	}

	if d.heading != "" {
		s.WriteString("\n")
		s.WriteString(fieldLabelStyle.Render(d.heading))
		s.WriteString("\n")
		if len(d.list) == 0 {
			s.WriteString(mutedStyle.Render("  None"))
			s.WriteString("\n")
		}
		for i, item := range d.list {
			line := "  " + item
			if i == d.cursor {
				line = selectedLineStyle.Render("> " + item)
			}
			s.WriteString(line)
			s.WriteString("\n")
		}
	}

	s.WriteString(helpStyle.Render(strings.Join(d.help, " • ")))
	return panelStyle.Width(max(width-2, 20)).MaxHeight(height).Render(s.String())
}
