// ABOUTME: Leads and contacts pages: filters, add, CSV import, delete all and the detail sidebar
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/sidebar"
	"github.com/harperreed/crmtui/viz"
	"github.com/harperreed/crmtui/views"
)

type peoplePage struct {
	*listPage
	people *pages.People
	panel  *sidebar.Model
}

func newPeoplePage(d *deps, route Route, people *pages.People) *peoplePage {
	entity := people.Entity()
	p := &peoplePage{
		listPage: newListPage(d, route, func(s pages.ViewSettings) []views.ViewConfig {
			return pages.PeopleViews(entity, s)
		}),
		people: people,
	}
	p.records = func() []views.Record { return views.Records(people.Visible()) }
	p.setSearch = people.SetSearch
	p.load = people.Load
	p.onStatus = people.UpdateStatus
	p.onOpen = p.open
	return p
}

func (p *peoplePage) open(r views.Record) tea.Cmd {
	person, ok := p.people.Find(r.RecordID())
	if !ok {
		return nil
	}
	sb := sidebar.New(p.people.Entity(), person, p.people, p.people.Users(), p.d.logger)
	panel := sidebar.NewModel(p.d.ctx, sb).SetSize(sidePanelWidth, 30)
	p.panel = &panel
	return nil
}

func (p *peoplePage) Typing() bool {
	if p.panel != nil {
		return true
	}
	return p.listPage.Typing()
}

func (p *peoplePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case sidebar.ResultMsg, sidebar.ClosedMsg:
		return p.updatePanel(msg)

	case tea.KeyMsg:
		if p.panel != nil {
			return p.updatePanel(msg)
		}
		if p.overlay() || p.switcher.Capturing() {
			return p.listPage.Update(msg)
		}
		switch msg.String() {
		case "a":
			return p.openAdd()
		case "i":
			return p.openImport()
		case "D":
			p.openConfirm(newConfirm(pages.ActionDeleteAll,
				fmt.Sprintf("Delete all %ss?", p.people.Entity()),
				fmt.Sprintf("%d records will be removed.", len(p.people.Items())),
				p.people.DeleteAll))
			return nil
		case "g":
			p.cycleGroup()
			return nil
		case "f":
			f := p.people.Filter()
			p.people.SetStatusFilter(models.Cycle(append([]string{models.FilterAll}, models.LeadStatuses...), f.Status, 1))
			p.refresh()
			return nil
		}
	}
	return p.listPage.Update(msg)
}

func (p *peoplePage) updatePanel(msg tea.Msg) tea.Cmd {
	if p.panel == nil {
		return nil
	}
	if closed, ok := msg.(sidebar.ClosedMsg); ok {
		if closed.ID == p.panel.Sidebar().Record().ID {
			p.panel = nil
		}
		p.refresh()
		return nil
	}
	panel, cmd := p.panel.Update(msg)
	p.panel = &panel
	if _, ok := msg.(sidebar.ResultMsg); ok {
		p.refresh()
	}
	return cmd
}

func (p *peoplePage) cycleGroup() {
	ids := []string{pages.GroupAll}
	for _, g := range p.people.Groups() {
		ids = append(ids, g.ID)
	}
	p.people.SetGroupFilter(models.Cycle(ids, p.people.Filter().Group, 1))
	p.refresh()
}

func (p *peoplePage) groupName() string {
	id := p.people.Filter().Group
	if id == pages.GroupAll || id == "" {
		return "All"
	}
	for _, g := range p.people.Groups() {
		if g.ID == id {
			return g.Name
		}
	}
	return "All"
}

func (p *peoplePage) openAdd() tea.Cmd {
	fields := []formField{
		{key: "name", label: "Name"},
		{key: "company", label: "Company"},
		{key: "email", label: "Email"},
		{key: "phone", label: "Phone", limit: 20},
		{key: "description", label: "Description", limit: 500},
	}
	if p.people.Entity() == models.EntityLead {
		fields = append(fields,
			formField{key: "status", label: "Status", options: models.LeadStatuses},
			formField{key: "value", label: "Value", placeholder: "0"},
		)
	}
	f := newForm("New "+p.people.Entity().Label(), fields...)
	return p.openForm(pages.ActionAdd, f, func(ctx context.Context, v map[string]string) error {
		person := models.Person{
			Name:        v["name"],
			Company:     v["company"],
			Email:       v["email"],
			Phone:       v["phone"],
			Description: v["description"],
			Status:      v["status"],
		}
		if v["value"] != "" {
			value, err := models.ParseNumber(v["value"])
			if err != nil {
				return p.invalid("value", err)
			}
			person.Value = value
		}
		_, err := p.people.Add(ctx, person)
		return err
	})
}

func (p *peoplePage) openImport() tea.Cmd {
	f := newForm("Import "+p.people.Entity().Label()+"s from CSV",
		formField{key: "path", label: "CSV file", placeholder: "~/Downloads/leads.csv", limit: 500},
		formField{key: "group", label: "Create group", options: []string{"no", "yes"}},
	)
	return p.openForm(pages.ActionImport, f, func(ctx context.Context, v map[string]string) error {
		path := expandHome(v["path"])
		if path == "" {
			return p.invalid("file", errors.New("Please select a CSV file"))
		}
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()
		_, err = p.people.Import(ctx, filepath.Base(path), file, v["group"] == "yes")
		return err
	})
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func (p *peoplePage) View(width, height int) string {
	f := p.people.Filter()
	status := f.Status
	if status == "" {
		status = models.FilterAll
	}
	header := mutedStyle.Render(fmt.Sprintf("Group: %s • Status: %s • %d shown", p.groupName(), status, len(p.people.Visible())))
	if p.people.Entity() == models.EntityLead && p.form == nil && p.confirm == nil {
		header = lipgloss.JoinVertical(lipgloss.Left, header, viz.RenderValues(p.people.ValueSummary()))
	}

	side := ""
	if p.panel != nil {
		panel := p.panel.SetSize(sidePanelWidth, height)
		side = panel.View()
	}
	help := []string{"a: Add", "i: Import CSV", "D: Delete all", "g: Group", "f: Status", "enter: Open"}
	return p.view(width, height, header, side, help)
}
