// ABOUTME: Tasks page: add with a related lead, contact or deal, toggle, filters and delete
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

type tasksPage struct {
	*listPage
	tasks  *pages.Tasks
	detail *detailPanel
}

func newTasksPage(d *deps, tasks *pages.Tasks) *tasksPage {
	p := &tasksPage{
		listPage: newListPage(d, RouteTasks, pages.TaskViews),
		tasks:    tasks,
	}
	p.records = func() []views.Record { return views.Records(tasks.Visible()) }
	p.setSearch = tasks.SetSearch
	p.load = tasks.Load
	p.onStatus = tasks.UpdateStatus
	p.onOpen = func(r views.Record) tea.Cmd {
		p.openDetail(r.RecordID())
		return nil
	}
	return p
}

func (p *tasksPage) openDetail(id string) {
	task, ok := p.tasks.Find(id)
	if !ok {
		p.detail = nil
		return
	}
	due := ""
	if at, ok := task.DueAt(); ok {
		due = at.Format("Jan 2, 2006") + " (" + views.Ago(at) + ")"
	}
	p.detail = &detailPanel{
		id:    task.ID,
		title: "TASK",
		rows: []detailRow{
			{"Title", task.Title},
			{"Description", task.Description},
			{"Due", due},
			{"Priority", task.Priority},
			{"Status", task.Status},
			{"Related To", p.tasks.RelatedName(task.Related)},
			{"Assigned To", models.UserName(p.tasks.Users(), task.AssignedTo)},
		},
		help: []string{"t: Toggle status", "x: Delete", "esc: Close"},
	}
}

func (p *tasksPage) Typing() bool {
	return p.detail != nil || p.listPage.Typing()
}

func (p *tasksPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case actionMsg:
		cmd := p.listPage.Update(msg)
		if p.detail != nil {
			p.openDetail(p.detail.id)
		}
		return cmd
	case confirmDoneMsg:
		if msg.op == pages.ActionDelete && msg.err == nil {
			p.detail = nil
		}
	case tea.KeyMsg:
		if p.overlay() || p.switcher.Capturing() {
			return p.listPage.Update(msg)
		}
		if p.detail != nil {
			return p.handleDetailKeys(msg)
		}
		switch msg.String() {
		case "a":
			return p.openAdd()
		case "f":
			f := p.tasks.Filter()
			f.Status = models.Cycle(append([]string{models.FilterAll}, models.TaskStatuses...), f.Status, 1)
			p.tasks.SetFilter(f)
			p.refresh()
			return nil
		case "p":
			f := p.tasks.Filter()
			f.Priority = models.Cycle(append([]string{models.FilterAll}, models.Priorities...), f.Priority, 1)
			p.tasks.SetFilter(f)
			p.refresh()
			return nil
		}
	}
	return p.listPage.Update(msg)
}

func (p *tasksPage) handleDetailKeys(msg tea.KeyMsg) tea.Cmd {
	id := p.detail.id
	switch msg.String() {
	case "esc", "q":
		p.detail = nil
	case "t":
		return p.run(pages.ActionToggle, func(ctx context.Context) error {
			_, err := p.tasks.Toggle(ctx, id)
			return err
		})
	case "x":
		task, _ := p.tasks.Find(id)
		p.openConfirm(newConfirm(pages.ActionDelete, "Delete task?", task.Title, func(ctx context.Context) error {
			return p.tasks.Delete(ctx, id)
		}))
	}
	return nil
}

func (p *tasksPage) openAdd() tea.Cmd {
	f := newForm("New Task",
		formField{key: "title", label: "Title"},
		formField{key: "description", label: "Description", limit: 500},
		formField{key: "dueDate", label: "Due date", placeholder: "YYYY-MM-DD"},
		formField{key: "priority", label: "Priority", value: models.PriorityMedium, options: models.Priorities},
		formField{key: "relatedModel", label: "Related type", options: []string{"None", "Lead", "Contact", "Deal"}},
		formField{key: "related", label: "Related to", placeholder: "Name or id"},
	)
	return p.openForm(pages.ActionAdd, f, func(ctx context.Context, v map[string]string) error {
		task := models.Task{
			Title:       v["title"],
			Description: v["description"],
			Priority:    v["priority"],
		}
		if v["dueDate"] != "" {
			due, err := models.ParseTimestamp(v["dueDate"])
			if err != nil {
				return p.invalid("dueDate", err)
			}
			task.DueDate = due
		}
		rel, err := p.resolveRelated(v["relatedModel"], v["related"])
		if err != nil {
			return p.invalid("relatedModel", err)
		}
		task.Related = rel
		_, err = p.tasks.Add(ctx, task)
		return err
	})
}

// resolveRelated turns the form's type and name-or-id into a RelatedEntity. A name that
// matches nothing is passed through as an id and fails validation in the controller.
func (p *tasksPage) resolveRelated(model, ref string) (models.RelatedEntity, error) {
	if model == "None" || ref == "" {
		return models.RelatedEntity{}, nil
	}
	id := ref
	byName := func(name string) bool { return strings.EqualFold(name, ref) }
	switch model {
	case "Lead":
		for _, l := range p.tasks.Leads() {
			if byName(l.Name) {
				id = l.ID
			}
		}
	case "Contact":
		for _, c := range p.tasks.Contacts() {
			if byName(c.Name) {
				id = c.ID
			}
		}
	case "Deal":
		for _, d := range p.tasks.Deals() {
			if byName(d.Name) {
				id = d.ID
			}
		}
	}
	return models.ParseRelated(model, id)
}

func (p *tasksPage) View(width, height int) string {
	f := p.tasks.Filter()
	header := mutedStyle.Render(fmt.Sprintf("Status: %s • Priority: %s • %d shown",
		orAll(f.Status), orAll(f.Priority), len(p.tasks.Visible())))
	side := ""
	if p.detail != nil {
		side = p.detail.View(sidePanelWidth, height)
	}
	return p.view(width, height, header, side, []string{"a: Add", "f: Status", "p: Priority", "enter: Open"})
}

func orAll(s string) string {
	if s == "" {
		return models.FilterAll
	}
	return s
}
