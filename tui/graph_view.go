package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
	"github.com/harperreed/crmtui/viz"
)

// summaryPage is the shared shape of the dashboard and analytics pages.
type summaryPage struct {
	d       *deps
	title   string
	spin    spinner.Model
	loading bool
	now     func() time.Time
}

func newSummaryPage(d *deps, title string) summaryPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return summaryPage{d: d, title: title, spin: sp, now: time.Now}
}

func (s *summaryPage) Enter() tea.Cmd {
	s.loading = true
	ctx, ctl := s.d.ctx, s.d.ctl
	return tea.Batch(func() tea.Msg {
		return actionMsg{op: pages.ActionLoad, err: ctl.LoadAll(ctx)}
	}, s.spin.Tick)
}

func (s *summaryPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.loading {
			return nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return cmd
	case actionMsg:
		if msg.op == pages.ActionLoad {
			s.loading = false
		}
	case tea.KeyMsg:
		if msg.String() == "r" {
			return s.Enter()
		}
	}
	return nil
}

func (s *summaryPage) Typing() bool { return false }

func (s *summaryPage) header() string {
	title := titleStyle.Render(s.title)
	if s.loading {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", s.spin.View()+" Loading...")
	}
	return title
}

func (s *summaryPage) input() viz.DashboardInput {
	return viz.DashboardInputOf(s.d.ctl)
}

type dashboardPage struct {
	summaryPage
}

func newDashboardPage(d *deps) *dashboardPage {
	return &dashboardPage{summaryPage: newSummaryPage(d, "DASHBOARD")}
}

func (p *dashboardPage) Update(msg tea.Msg) tea.Cmd { return p.update(msg) }

func (p *dashboardPage) View(width, height int) string {
	var s strings.Builder
	s.WriteString(p.header())
	s.WriteString("\n")
	if u := p.d.account.user; u != nil {
		s.WriteString(fieldValueStyle.Render("Welcome back, " + u.Name))
		s.WriteString("\n\n")
	}
	s.WriteString(viz.RenderDashboard(viz.GenerateDashboardStats(p.input(), p.now())))
	s.WriteString(helpStyle.Render("r: Reload • tab: Next page • ?: Help"))
	return lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(s.String())
}

type analyticsPage struct {
	summaryPage
	exported string
}

func newAnalyticsPage(d *deps) *analyticsPage {
	return &analyticsPage{summaryPage: newSummaryPage(d, "ANALYTICS")}
}

type exportedMsg struct {
	path string
	err  error
}

func (p *analyticsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case exportedMsg:
		if msg.err != nil {
			p.d.notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: "Failed to export graph: " + msg.err.Error()})
			return nil
		}
		p.exported = msg.path
		p.d.notify(api.Notice{Kind: api.NoticeSuccess, Title: "Success", Message: "Graph written to " + msg.path})
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			return p.export(viz.FormatDOT)
		case "E":
			return p.export(viz.FormatSVG)
		}
	}
	return p.update(msg)
}

// export renders the whole CRM graph into the temp directory.
func (p *analyticsPage) export(format viz.Format) tea.Cmd {
	snap := viz.SnapshotOf(p.d.ctl)
	ctx, logger := p.d.ctx, p.d.logger
	return func() tea.Msg {
		out, err := viz.NewGraphGenerator(snap, format, logger).GenerateCompleteGraph(ctx)
		if err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(os.TempDir(), "crm-graph."+string(format))
		return exportedMsg{path: path, err: os.WriteFile(path, []byte(out), 0o644)}
	}
}

func (p *analyticsPage) View(width, height int) string {
	in := p.input()
	var s strings.Builder
	s.WriteString(p.header())
	s.WriteString("\n")

	s.WriteString(viz.RenderValues(pages.ValueByStatus(in.Leads)))
	s.WriteString("\n")

	s.WriteString("PIPELINE BY STAGE\n")
	for _, st := range pages.SummarizeStages(in.Deals) {
		s.WriteString(fmt.Sprintf("  %-14s %3d deals  %12s  weighted %s\n",
			st.Stage, st.Count, views.Money(st.Total), views.Money(st.Weighted)))
	}
	s.WriteString("\n")

	s.WriteString("TASKS\n")
	done := 0
	for _, t := range in.Tasks {
		if t.Status == models.TaskCompleted {
			done++
		}
	}
	pct := 0
	if len(in.Tasks) > 0 {
		pct = done * 100 / len(in.Tasks)
	}
	s.WriteString(fmt.Sprintf("  %s %3d%% complete (%d of %d)\n\n", viz.Bar(pct/5, 20), pct, done, len(in.Tasks)))

	s.WriteString("MEETINGS BY TYPE\n")
	counts := map[string]int{}
	for _, m := range in.Meetings {
		counts[m.Type]++
	}
	for _, t := range models.MeetingTypes {
		s.WriteString(fmt.Sprintf("  %-12s %d\n", t, counts[t]))
	}

	if p.exported != "" {
		s.WriteString("\n" + mutedStyle.Render("Last export: "+p.exported))
	}
	s.WriteString(helpStyle.Render("e: Export graph (dot) • E: Export graph (svg) • r: Reload"))
	return lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(s.String())
}
