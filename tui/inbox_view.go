// ABOUTME: Business inbox page: a table of received emails, refreshed on a timer while shown
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/views"
)

type inboxMsg struct {
	gen   int
	inbox models.Inbox
	err   error
}

type inboxTickMsg struct{ gen int }

type inboxPage struct {
	d *deps

	emails    []models.InboxEmail
	shown     []models.InboxEmail
	table     table.Model
	search    textinput.Model
	searching bool
	detail    *detailPanel

	// gen invalidates polls started before the last Enter or Leave.
	gen     int
	active  bool
	loading bool
	fetched time.Time
}

func newInboxPage(d *deps) *inboxPage {
	search := textinput.New()
	search.Placeholder = "Search by subject..."
	search.CharLimit = 100

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "From", Width: 28},
			{Title: "Subject", Width: 40},
			{Title: "Received", Width: 16},
		}),
		table.WithFocused(true),
	)
	return &inboxPage{d: d, table: t, search: search}
}

func (p *inboxPage) Enter() tea.Cmd {
	p.gen++
	p.active = true
	p.loading = true
	return p.fetch(p.d.ctx)
}

// Leave stops polling until the page is shown again.
func (p *inboxPage) Leave() {
	p.gen++
	p.active = false
}

func (p *inboxPage) fetch(ctx context.Context) tea.Cmd {
	gen, client := p.gen, p.d.client
	return func() tea.Msg {
		inbox, err := client.Inbox(ctx)
		return inboxMsg{gen: gen, inbox: inbox, err: err}
	}
}

func (p *inboxPage) schedule() tea.Cmd {
	every := p.d.cfg.Poll.Inbox.Duration
	if every <= 0 {
		return nil
	}
	gen := p.gen
	return tea.Tick(every, func(time.Time) tea.Msg { return inboxTickMsg{gen: gen} })
}

func (p *inboxPage) Typing() bool { return p.searching || p.detail != nil }

func (p *inboxPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case inboxMsg:
		if msg.gen != p.gen || !p.active {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.d.logger.Debug("inbox fetch failed", "err", msg.err)
			return p.schedule()
		}
		p.emails = msg.inbox.Emails
		p.fetched = time.Now()
		p.applySearch()
		if n := msg.inbox.NewEmailsCount; n > 0 {
			p.d.notify(api.Notice{Kind: api.NoticeInfo, Title: "Inbox", Message: fmt.Sprintf("You have %d new emails", n)})
		}
		return p.schedule()

	case inboxTickMsg:
		if msg.gen != p.gen || !p.active {
			return nil
		}
		return p.fetch(api.Quiet(p.d.ctx))

	case tea.KeyMsg:
		return p.handleKeys(msg)
	}
	return nil
}

func (p *inboxPage) handleKeys(msg tea.KeyMsg) tea.Cmd {
	if p.detail != nil {
		if s := msg.String(); s == "esc" || s == "q" {
			p.detail = nil
		}
		return nil
	}
	if p.searching {
		switch msg.String() {
		case "esc":
			p.searching = false
			p.search.Blur()
			p.search.SetValue("")
			p.applySearch()
			return nil
		case "enter":
			p.searching = false
			p.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		p.applySearch()
		return cmd
	}

	switch msg.String() {
	case "/":
		p.searching = true
		p.search.Focus()
		return textinput.Blink
	case "r":
		p.loading = true
		return p.fetch(p.d.ctx)
	case "enter":
		if i := p.table.Cursor(); i >= 0 && i < len(p.shown) {
			p.openDetail(p.shown[i])
		}
		return nil
	}
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *inboxPage) applySearch() {
	q := strings.ToLower(strings.TrimSpace(p.search.Value()))
	p.shown = p.shown[:0]
	rows := make([]table.Row, 0, len(p.emails))
	for _, e := range p.emails {
		if q != "" && !strings.Contains(strings.ToLower(e.Subject), q) {
			continue
		}
		p.shown = append(p.shown, e)
		rows = append(rows, table.Row{e.From, e.Subject, views.Ago(e.Date.Time)})
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (p *inboxPage) openDetail(e models.InboxEmail) {
	received := ""
	if !e.Date.IsZero() {
		received = e.Date.Format("Mon Jan 2, 2006 15:04")
	}
	p.detail = &detailPanel{
		id:    e.MessageID,
		title: "EMAIL",
		rows: []detailRow{
			{"From", e.From},
			{"To", e.To},
			{"Subject", e.Subject},
			{"Received", received},
			{"Preview", e.Snippet},
		},
		help: []string{"esc: Close"},
	}
}

func (p *inboxPage) View(width, height int) string {
	var s strings.Builder
	title := titleStyle.Render("EMAILS")
	s.WriteString(title)
	s.WriteString("\n")

	status := fmt.Sprintf("%d emails", len(p.shown))
	switch {
	case p.loading:
		status = "Loading..."
	case !p.fetched.IsZero():
		status += " • updated " + views.Ago(p.fetched)
	}
	s.WriteString(mutedStyle.Render(status))
	s.WriteString("\n")

	p.table.SetHeight(max(height-8, 3))
	body := p.table.View()
	if len(p.shown) == 0 && !p.loading {
		body = mutedStyle.Render("No emails found")
	}
	if p.detail != nil {
		body = p.detail.View(min(width, 80), height-4)
	}
	s.WriteString(body)
	s.WriteString("\n")

	if p.searching || p.search.Value() != "" {
		s.WriteString("/ " + p.search.View())
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("enter: Open • /: Search • r: Refresh"))
	return s.String()
}
