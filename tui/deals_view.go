// ABOUTME: Pipeline page: deals by stage with the stage summary, add, stage changes and delete
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

type dealsPage struct {
	*listPage
	deals  *pages.Deals
	detail *detailPanel
}

func newDealsPage(d *deps, deals *pages.Deals) *dealsPage {
	p := &dealsPage{
		listPage: newListPage(d, RoutePipeline, pages.DealViews),
		deals:    deals,
	}
	p.records = func() []views.Record { return views.Records(deals.Visible()) }
	p.setSearch = deals.SetSearch
	p.load = deals.Load
	p.onStatus = deals.UpdateStage
	p.onOpen = func(r views.Record) tea.Cmd {
		p.openDetail(r.RecordID())
		return nil
	}
	return p
}

func (p *dealsPage) openDetail(id string) {
	deal, ok := p.deals.Find(id)
	if !ok {
		p.detail = nil
		return
	}
	closeDate := ""
	if at, ok := deal.DueAt(); ok {
		closeDate = at.Format("Jan 2, 2006")
	}
	p.detail = &detailPanel{
		id:    deal.ID,
		title: "DEAL",
		rows: []detailRow{
			{"Name", deal.Name},
			{"Company", deal.Company},
			{"Stage", deal.Stage},
			{"Value", views.Money(float64(deal.Value))},
			{"Probability", deal.Probability.String() + "%"},
			{"Expected Close", closeDate},
		},
		help: []string{"s/S: Next/previous stage", "x: Delete", "esc: Close"},
	}
}

func (p *dealsPage) Typing() bool {
	return p.detail != nil || p.listPage.Typing()
}

func (p *dealsPage) Update(msg tea.Msg) tea.Cmd {
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
			f := p.deals.Filter()
			f.Stage = models.Cycle(append([]string{models.FilterAll}, models.DealStages...), f.Stage, 1)
			p.deals.SetFilter(f)
			p.refresh()
			return nil
		}
	}
	return p.listPage.Update(msg)
}

func (p *dealsPage) handleDetailKeys(msg tea.KeyMsg) tea.Cmd {
	id := p.detail.id
	deal, _ := p.deals.Find(id)
	switch msg.String() {
	case "esc", "q":
		p.detail = nil
	case "s", "S":
		step := 1
		if msg.String() == "S" {
			step = -1
		}
		stage := models.Cycle(models.DealStages, deal.Stage, step)
		return p.run(pages.ActionStatus, func(ctx context.Context) error {
			return p.deals.UpdateStage(ctx, id, stage)
		})
	case "x":
		p.openConfirm(newConfirm(pages.ActionDelete, "Delete deal?", deal.Name, func(ctx context.Context) error {
			return p.deals.Delete(ctx, id)
		}))
	}
	return nil
}

func (p *dealsPage) openAdd() tea.Cmd {
	f := newForm("New Deal",
		formField{key: "name", label: "Deal name"},
		formField{key: "company", label: "Company"},
		formField{key: "stage", label: "Stage", options: models.DealStages},
		formField{key: "value", label: "Value", placeholder: "10000"},
		formField{key: "probability", label: "Probability %", placeholder: "50"},
		formField{key: "expectedCloseDate", label: "Expected close", placeholder: "YYYY-MM-DD"},
	)
	return p.openForm(pages.ActionAdd, f, func(ctx context.Context, v map[string]string) error {
		deal := models.Deal{Name: v["name"], Company: v["company"], Stage: v["stage"]}
		var err error
		if deal.Value, err = models.ParseNumber(v["value"]); err != nil {
			return p.invalid("value", err)
		}
		if deal.Probability, err = models.ParseNumber(strings.TrimSuffix(v["probability"], "%")); err != nil {
			return p.invalid("probability", err)
		}
		if v["expectedCloseDate"] != "" {
			if deal.ExpectedCloseDate, err = models.ParseTimestamp(v["expectedCloseDate"]); err != nil {
				return p.invalid("expectedCloseDate", err)
			}
		}
		_, err = p.deals.Add(ctx, deal)
		return err
	})
}

func (p *dealsPage) View(width, height int) string {
	var parts []string
	for _, s := range p.deals.Summary() {
		parts = append(parts, fmt.Sprintf("%s %d (%s)", s.Stage, s.Count, views.Money(s.Total)))
	}
	header := mutedStyle.Render(strings.Join(parts, " • "))
	header += "\n" + mutedStyle.Render("Stage: "+orAll(p.deals.Filter().Stage))
	side := ""
	if p.detail != nil {
		side = p.detail.View(sidePanelWidth, height)
	}
	return p.view(width, height, header, side, []string{"a: Add", "f: Stage", "enter: Open"})
}
