// ABOUTME: Notifications overlay opened with N: unread assignments, newest first
// ABOUTME: enter marks the selected notification read on the server
package tui

import (
	"github.com/charmbracelet/bubbles/table"

	"github.com/harperreed/crmtui/views"
)

func (m Model) renderNotifications(width int) string {
	if len(m.notifications) == 0 {
		return titleStyle.Render("NOTIFICATIONS") + "\n" +
			mutedStyle.Render("You're all caught up.") + "\n" +
			helpStyle.Render("esc: Close")
	}

	msgWidth := max(width-40, 20)
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Type", Width: 20},
		{Title: "Message", Width: msgWidth},
		{Title: "When", Width: 14},
	}

	var rows []table.Row
	for _, n := range m.notifications {
		indicator := "🔵"
		if n.Type == "task" {
			indicator = "🟢"
		}
		rows = append(rows, table.Row{
			indicator,
			n.Title(),
			views.Fit(n.Message, msgWidth),
			views.Ago(n.CreatedAt.Time),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)
	if m.noteCursor < len(rows) {
		t.SetCursor(m.noteCursor)
	}

	return titleStyle.Render("NOTIFICATIONS") + "\n" + t.View() + "\n" +
		helpStyle.Render("j/k: Move • enter: Mark read • esc: Close")
}
