// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides the ASCII dashboard shown by the dashboard route and the viz command
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

// StaleLeadAge is how long a lead may sit in New before it needs attention.
const StaleLeadAge = 14 * 24 * time.Hour

type DashboardStats struct {
	Totals pages.Totals
	Stages []pages.StageSummary
	Values []pages.StatusValue

	// Recent activity (last 7 days)
	RecentActivity []ActivityItem

	// Needs attention
	OverdueTasks []string
	StaleLeads   []string
}

type ActivityItem struct {
	Date        time.Time
	Description string
}

type DashboardInput struct {
	Leads    []models.Person
	Contacts []models.Person
	Deals    []models.Deal
	Tasks    []models.Task
	Meetings []models.Meeting
}

func GenerateDashboardStats(in DashboardInput, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		Totals: pages.ComputeTotals(in.Leads, in.Contacts, in.Deals, in.Tasks, in.Meetings),
		Stages: pages.SummarizeStages(in.Deals),
		Values: pages.ValueByStatus(in.Leads),
	}

	weekAgo := now.AddDate(0, 0, -7)
	recent := func(created models.Timestamp, what string) {
		if created.IsZero() || created.Before(weekAgo) {
			return
		}
		stats.RecentActivity = append(stats.RecentActivity, ActivityItem{Date: created.Time, Description: what})
	}
	for _, l := range in.Leads {
		recent(l.CreatedAt, "New lead: "+l.Name)
		if l.Status == models.StatusNew && !l.CreatedAt.IsZero() && now.Sub(l.CreatedAt.Time) > StaleLeadAge {
			stats.StaleLeads = append(stats.StaleLeads, l.Name)
		}
	}
	for _, c := range in.Contacts {
		recent(c.CreatedAt, "New contact: "+c.Name)
	}
	for _, d := range in.Deals {
		recent(d.CreatedAt, "New deal: "+d.Name)
	}
	for _, t := range in.Tasks {
		recent(t.CreatedAt, "New task: "+t.Title)
		if due, ok := t.DueAt(); ok && t.Status != models.TaskCompleted && due.Before(now) {
			stats.OverdueTasks = append(stats.OverdueTasks, t.Title)
		}
	}

	sort.SliceStable(stats.RecentActivity, func(i, j int) bool {
		return stats.RecentActivity[i].Date.After(stats.RecentActivity[j].Date)
	})
	if len(stats.RecentActivity) > 5 {
		stats.RecentActivity = stats.RecentActivity[:5]
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  CRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Stages)
	out.WriteString("\n")

	t := stats.Totals
	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d leads  👥 %d contacts  💼 %d open deals  ✅ %d open tasks  📅 %d meetings\n",
		t.Leads, t.Contacts, t.OpenDeals, t.OpenTasks, t.Meetings))
	out.WriteString(fmt.Sprintf("  Pipeline %s  Won %s\n\n", views.Money(t.Pipeline), views.Money(t.Won)))

	if len(stats.RecentActivity) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for _, a := range stats.RecentActivity {
			out.WriteString(fmt.Sprintf("  %-14s %s\n", humanize.Time(a.Date), a.Description))
		}
		out.WriteString("\n")
	}

	if len(stats.OverdueTasks) > 0 || len(stats.StaleLeads) > 0 || t.PendingMeets > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.OverdueTasks) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d tasks - past due\n", len(stats.OverdueTasks)))
		}
		if len(stats.StaleLeads) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d leads - still New after 14+ days\n", len(stats.StaleLeads)))
		}
		if t.PendingMeets > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d meetings - pending confirmation\n", t.PendingMeets))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, stages []pages.StageSummary) {
	maxCount := 1
	for _, s := range stages {
		maxCount = max(maxCount, s.Count)
	}
	for _, s := range stages {
		barLength := (s.Count * 10) / maxCount
		out.WriteString(fmt.Sprintf("  %-14s %s  %2d (%s)\n",
			s.Stage, Bar(barLength, 10), s.Count, views.Money(s.Total)))
	}
}

// RenderValues draws the lead value by status card, one bar per status scaled to
// pages.ValueScale.
func RenderValues(values []pages.StatusValue) string {
	var out strings.Builder
	out.WriteString("LEAD VALUE BY STATUS\n")
	for _, v := range values {
		out.WriteString(fmt.Sprintf("  %-12s %s %3d%%  %s\n", v.Status, Bar(v.Percent/5, 20), v.Percent, views.Money(v.Total)))
	}
	return out.String()
}

// Bar renders filled out of width blocks, clamping filled to [0, width].
func Bar(filled, width int) string {
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// DashboardInputOf copies the loaded collections out of a workspace.
func DashboardInputOf(w *pages.Workspace) DashboardInput {
	return DashboardInput{
		Leads:    w.Leads.Items(),
		Contacts: w.Contacts.Items(),
		Deals:    w.Deals.Items(),
		Tasks:    w.Tasks.Items(),
		Meetings: w.Meetings.Items(),
	}
}
