// ABOUTME: Settings page: notification toggles and appearance, synced with the server and prefs
// ABOUTME: Layout changes land in the prefs store, which the shell watches to redraw the rail
package tui

import (
	"fmt"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/prefs"
)

var (
	settingsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Underline(true)

	settingsNameStyle = lipgloss.NewStyle().
				Bold(true).
				Width(24)

	settingsOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	settingsOffStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9"))
)

type settingKind int

const (
	settingToggle settingKind = iota
	settingLayout
	settingView
)

type settingRow struct {
	key   string
	label string
	kind  settingKind
}

var settingRows = []settingRow{
	{key: "emailAlerts", label: "Email Alerts", kind: settingToggle},
	{key: "taskReminders", label: "Task Reminders", kind: settingToggle},
	{key: "leadAssignments", label: "Lead Assignments", kind: settingToggle},
	{key: "systemAnnouncements", label: "System Announcements", kind: settingToggle},
	{key: "sidebarLayout", label: "Sidebar Layout", kind: settingLayout},
	{key: "defaultView", label: "Default View", kind: settingView},
}

type settingsLoadedMsg struct {
	settings models.Settings
	err      error
}

type settingsSavedMsg struct {
	previous models.Settings
	title    string
	message  string
	err      error
}

type settingsPage struct {
	d        *deps
	settings models.Settings
	loaded   bool
	cursor   int
	saving   bool
}

func newSettingsPage(d *deps) *settingsPage {
	return &settingsPage{d: d, settings: models.DefaultSettings()}
}

func (p *settingsPage) Enter() tea.Cmd {
	ctx, client := p.d.ctx, p.d.client
	return func() tea.Msg {
		s, err := client.Settings(ctx)
		return settingsLoadedMsg{settings: s, err: err}
	}
}

func (p *settingsPage) Typing() bool { return false }

func (p *settingsPage) toggle(key string) *bool {
	n := &p.settings.Notifications
	switch key {
	case "emailAlerts":
		return &n.EmailAlerts
	case "taskReminders":
		return &n.TaskReminders
	case "leadAssignments":
		return &n.LeadAssignments
	case "systemAnnouncements":
		return &n.SystemAnnouncements
	}
	return nil
}

func (p *settingsPage) layout() string {
	if p.d.prefs != nil {
		return p.d.prefs.Layout()
	}
	return p.settings.Theme.SidebarLayout
}

func (p *settingsPage) defaultView() string {
	if p.d.prefs != nil {
		return p.d.prefs.Get().DefaultView
	}
	return p.d.cfg.UI.DefaultView
}

func (p *settingsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		p.loaded = true
		if msg.err != nil {
			p.d.logger.Warn("settings not loaded", "err", msg.err)
			return nil
		}
		p.settings = msg.settings
		if p.d.prefs != nil && msg.settings.Theme.SidebarLayout != p.d.prefs.Layout() {
			if err := p.d.prefs.SetLayout(msg.settings.Theme.SidebarLayout); err != nil {
				p.d.logger.Warn("layout preference not saved", "err", err)
			}
		}
		return nil

	case settingsSavedMsg:
		p.saving = false
		if msg.err != nil {
			p.settings = msg.previous
			p.d.notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: "Failed to update settings"})
			return nil
		}
		p.d.notify(api.Notice{Kind: api.NoticeSuccess, Title: msg.title, Message: msg.message})
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.cursor = min(p.cursor+1, len(settingRows)-1)
		case "k", "up":
			p.cursor = max(p.cursor-1, 0)
		case "enter", " ", "l", "right":
			return p.change(1)
		case "h", "left":
			return p.change(-1)
		}
	}
	return nil
}

// change flips or cycles the selected row and persists it.
func (p *settingsPage) change(step int) tea.Cmd {
	if p.saving {
		return nil
	}
	row := settingRows[p.cursor]
	previous := p.settings
	ctx, client := p.d.ctx, p.d.client

	switch row.kind {
	case settingToggle:
		v := p.toggle(row.key)
		*v = !*v
		state := "disabled"
		if *v {
			state = "enabled"
		}
		notifications := p.settings.Notifications
		p.saving = true
		return func() tea.Msg {
			return settingsSavedMsg{
				previous: previous,
				title:    "Notification Preferences Updated",
				message:  fmt.Sprintf("%s %s.", humanizeKey(row.key), state),
				err:      client.UpdateNotificationSettings(ctx, notifications),
			}
		}

	case settingLayout:
		layout := models.Cycle(models.Layouts, p.layout(), step)
		p.settings.Theme.SidebarLayout = layout
		if p.d.prefs != nil {
			if err := p.d.prefs.SetLayout(layout); err != nil {
				p.d.logger.Warn("layout preference not saved", "err", err)
			}
		}
		theme := p.settings.Theme
		p.saving = true
		return func() tea.Msg {
			return settingsSavedMsg{
				previous: previous,
				title:    "Appearance Settings Updated",
				message:  fmt.Sprintf("sidebarLayout set to %s.", layout),
				err:      client.UpdateTheme(ctx, theme),
			}
		}

	case settingView:
		view := models.Cycle(prefs.Views, p.defaultView(), step)
		if p.d.prefs == nil {
			p.d.cfg.UI.DefaultView = view
			return nil
		}
		if err := p.d.prefs.SetDefaultView(view); err != nil {
			p.d.notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: "Failed to save default view"})
		}
	}
	return nil
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// humanizeKey turns "emailAlerts" into "Email Alerts".
func humanizeKey(key string) string {
	s := camelBoundary.ReplaceAllString(key, "$1 $2")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (p *settingsPage) value(row settingRow) string {
	switch row.kind {
	case settingToggle:
		if *p.toggle(row.key) {
			return settingsOnStyle.Render("● On")
		}
		return settingsOffStyle.Render("○ Off")
	case settingLayout:
		return p.layout()
	case settingView:
		return p.defaultView()
	}
	return ""
}

func (p *settingsPage) View(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("SETTINGS"))
	s.WriteString("\n")
	if !p.loaded {
		s.WriteString(mutedStyle.Render("Loading settings..."))
		s.WriteString("\n")
	}

	for i, row := range settingRows {
		switch i {
		case 0:
			s.WriteString(settingsHeaderStyle.Render("Notifications"))
			s.WriteString("\n\n")
		case 4:
			s.WriteString("\n")
			s.WriteString(settingsHeaderStyle.Render("Theme & Appearance"))
			s.WriteString("\n\n")
		}
		line := settingsNameStyle.Render(row.label) + p.value(row)
		if i == p.cursor {
			line = "▶ " + selectedLineStyle.Render(line)
		} else {
			line = "  " + line
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	if p.saving {
		s.WriteString("\n" + mutedStyle.Render("Saving..."))
	}
	s.WriteString(helpStyle.Render("j/k: Move • enter/space: Toggle • h/l: Cycle"))
	return lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(s.String())
}

// profilePage shows the signed in user.
type profilePage struct {
	d          *deps
	confirming bool
}

func newProfilePage(d *deps) *profilePage { return &profilePage{d: d} }

func (p *profilePage) Enter() tea.Cmd { return nil }
func (p *profilePage) Typing() bool   { return p.confirming }

func (p *profilePage) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if p.confirming {
		p.confirming = false
		if key.String() != "y" {
			return nil
		}
		ctx, client := p.d.ctx, p.d.client
		return func() tea.Msg {
			return loggedOutMsg{err: client.Logout(ctx)}
		}
	}
	if key.String() == "L" {
		p.confirming = true
	}
	return nil
}

func (p *profilePage) View(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("PROFILE"))
	s.WriteString("\n")
	u := p.d.account.user
	if u == nil {
		s.WriteString(mutedStyle.Render("Not logged in"))
		return s.String()
	}
	s.WriteString(fieldValueStyle.Render("What is up, " + u.Name + "!"))
	s.WriteString("\n\n")
	s.WriteString(renderField("Name", u.Name))
	s.WriteString(renderField("Email", u.Email))
	s.WriteString(renderField("Role", u.Role))
	s.WriteString(renderField("User ID", u.ID))
	s.WriteString(renderField("Server", p.d.client.BaseURL()))
	if p.confirming {
		s.WriteString("\n" + warningStyle.Render("Log out? (y/n)"))
	}
	s.WriteString(helpStyle.Render("L: Log out"))
	return lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(s.String())
}
