package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/models"
)

func TestGenerateDashboardStats(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := DashboardInput{
		Leads: []models.Person{
			{ID: "l1", Name: "Ann", Status: models.StatusNew, CreatedAt: models.NewTimestamp(now.AddDate(0, 0, -30))},
			{ID: "l2", Name: "Bo", Status: models.StatusWon, Value: 5000, CreatedAt: models.NewTimestamp(now.AddDate(0, 0, -1))},
		},
		Deals: []models.Deal{
			{ID: "d1", Name: "Big", Stage: models.StageProposal, Value: 10000},
			{ID: "d2", Name: "Done", Stage: models.StageClosedWon, Value: 3000},
		},
		Tasks: []models.Task{
			{ID: "t1", Title: "Late", Status: models.TaskToDo, DueDate: models.NewTimestamp(now.AddDate(0, 0, -2))},
			{ID: "t2", Title: "Finished", Status: models.TaskCompleted, DueDate: models.NewTimestamp(now.AddDate(0, 0, -2))},
		},
		Meetings: []models.Meeting{{ID: "m1", Status: models.MeetingPending}},
	}

	stats := GenerateDashboardStats(in, now)
	assert.Equal(t, 2, stats.Totals.Leads)
	assert.Equal(t, 1, stats.Totals.OpenDeals)
	assert.Equal(t, 10000.0, stats.Totals.Pipeline)
	assert.Equal(t, 3000.0, stats.Totals.Won)
	assert.Equal(t, []string{"Late"}, stats.OverdueTasks)
	assert.Equal(t, []string{"Ann"}, stats.StaleLeads)
	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, "New lead: Bo", stats.RecentActivity[0].Description)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "CRM DASHBOARD")
	assert.Contains(t, out, models.StageProposal)
	assert.Contains(t, out, "1 tasks - past due")
	assert.Contains(t, out, "1 meetings - pending")
}

func TestBarClamps(t *testing.T) {
	assert.Equal(t, "░░░", Bar(-1, 3))
	assert.Equal(t, "███", Bar(7, 3))
	assert.Equal(t, "█░░", Bar(1, 3))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatDOT, f)
	_, err = ParseFormat("png")
	assert.Error(t, err)
}

func TestGeneratePipelineGraph(t *testing.T) {
	snap := Snapshot{Deals: []models.Deal{
		{ID: "d1", Name: "Big", Stage: models.StageProposal, Value: 10000, Probability: 50},
		{ID: "d2", Name: "Odd", Stage: "Limbo"},
	}}
	dot, err := NewGraphGenerator(snap, FormatDOT, nil).GeneratePipelineGraph(context.Background())
	require.NoError(t, err)
	assert.Contains(t, dot, "deal_d1")
	assert.NotContains(t, dot, "deal_d2")
	for _, stage := range models.DealStages {
		assert.True(t, strings.Contains(dot, stage), "stage %s missing", stage)
	}
}

func TestGenerateGroupGraph(t *testing.T) {
	snap := Snapshot{
		Leads: []models.Person{{ID: "l1", Name: "Ann"}},
		Groups: []models.Group{{ID: "g1", Name: "Hot", Members: []models.GroupMember{
			{MemberID: "l1", Type: models.EntityLead},
			{MemberID: "gone", Type: models.EntityLead},
		}}},
	}
	gen := NewGraphGenerator(snap, FormatDOT, nil)

	dot, err := gen.GenerateGroupGraph(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, dot, "Ann")
	assert.NotContains(t, dot, "leadgone")

	_, err = gen.GenerateGroupGraph(context.Background(), "missing")
	assert.Error(t, err)
}
