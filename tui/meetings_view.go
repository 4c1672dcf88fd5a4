// ABOUTME: Meetings page: booking form, type filter, details and cancellation
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

type meetingsPage struct {
	*listPage
	meetings *pages.Meetings
	detail   *detailPanel
}

func newMeetingsPage(d *deps, meetings *pages.Meetings) *meetingsPage {
	p := &meetingsPage{
		listPage: newListPage(d, RouteMeetings, pages.MeetingViews),
		meetings: meetings,
	}
	p.records = func() []views.Record { return views.Records(meetings.Visible()) }
	p.setSearch = meetings.SetSearch
	p.load = meetings.Load
	p.onOpen = func(r views.Record) tea.Cmd {
		p.openDetail(r.RecordID())
		return nil
	}
	return p
}

func (p *meetingsPage) openDetail(id string) {
	m, ok := p.meetings.Find(id)
	if !ok {
		p.detail = nil
		return
	}
	when := m.Date + " " + m.Time
	if at, ok := m.Start(); ok {
		when = at.Format("Mon Jan 2, 2006 15:04") + " (" + views.Ago(at) + ")"
	}
	p.detail = &detailPanel{
		id:    m.ID,
		title: "MEETING",
		rows: []detailRow{
			{"Contact", m.ContactName},
			{"Company", m.Company},
			{"When", when},
			{"Duration", m.Duration},
			{"Type", m.Type},
			{"Status", m.Status},
			{"Notes", m.Notes},
		},
		help: []string{"x: Cancel meeting", "esc: Close"},
	}
}

func (p *meetingsPage) Typing() bool {
	return p.detail != nil || p.listPage.Typing()
}

func (p *meetingsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case confirmDoneMsg:
		if msg.op == pages.ActionDelete && msg.err == nil {
			p.detail = nil
		}
	case tea.KeyMsg:
		if p.overlay() || p.switcher.Capturing() {
			return p.listPage.Update(msg)
		}
		if p.detail != nil {
			switch msg.String() {
			case "esc", "q":
				p.detail = nil
			case "x":
				id, name := p.detail.id, p.detail.rows[0].value
				p.openConfirm(newConfirm(pages.ActionDelete, "Cancel meeting?", "With "+name, func(ctx context.Context) error {
					return p.meetings.Delete(ctx, id)
				}))
			}
			return nil
		}
		switch msg.String() {
		case "a":
			return p.openAdd()
		case "f":
			f := p.meetings.Filter()
			f.Type = models.Cycle(append([]string{models.FilterAll}, models.MeetingTypes...), f.Type, 1)
			p.meetings.SetFilter(f)
			p.refresh()
			return nil
		}
	}
	return p.listPage.Update(msg)
}

func (p *meetingsPage) openAdd() tea.Cmd {
	f := newForm("Book Meeting",
		formField{key: "contactName", label: "Contact"},
		formField{key: "company", label: "Company"},
		formField{key: "date", label: "Date", placeholder: "YYYY-MM-DD"},
		formField{key: "time", label: "Time", placeholder: "HH:MM"},
		formField{key: "duration", label: "Duration", options: models.MeetingDurations},
		formField{key: "type", label: "Type", options: models.MeetingTypes},
		formField{key: "notes", label: "Notes", limit: 500},
	)
	return p.openForm(pages.ActionAdd, f, func(ctx context.Context, v map[string]string) error {
		_, err := p.meetings.Add(ctx, models.Meeting{
			ContactName: v["contactName"],
			Company:     v["company"],
			Date:        v["date"],
			Time:        v["time"],
			Duration:    v["duration"],
			Type:        v["type"],
			Notes:       v["notes"],
		})
		return err
	})
}

func (p *meetingsPage) View(width, height int) string {
	header := mutedStyle.Render(fmt.Sprintf("Type: %s • %d shown", orAll(p.meetings.Filter().Type), len(p.meetings.Visible())))
	side := ""
	if p.detail != nil {
		side = p.detail.View(sidePanelWidth, height)
	}
	return p.view(width, height, header, side, []string{"a: Book", "f: Type", "enter: Open"})
}
