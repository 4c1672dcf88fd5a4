// ABOUTME: Aggregates for the lead value card, the pipeline summary and the dashboard
package pages

import (
	"math"

	"github.com/harperreed/crmtui/models"
)

// ValueScale is the amount a full lead value bar represents.
const ValueScale = 200000

// StatusValue is the summed lead value for one status.
type StatusValue struct {
	Status  string
	Total   float64
	Percent int // share of ValueScale, clamped to [0, 100]
}

// ValueByStatus sums value per status in vocabulary order. Unknown statuses are ignored.
func ValueByStatus(people []models.Person) []StatusValue {
	totals := make(map[string]float64, len(models.LeadStatuses))
	for _, p := range people {
		totals[p.Status] += float64(p.Value)
	}
	out := make([]StatusValue, len(models.LeadStatuses))
	for i, st := range models.LeadStatuses {
		pct := int(math.Round(totals[st] / ValueScale * 100))
		out[i] = StatusValue{Status: st, Total: totals[st], Percent: min(max(pct, 0), 100)}
	}
	return out
}

// ValueSummary is the lead value card. With a group selected it covers the filtered subset,
// otherwise the whole collection.
func (p *People) ValueSummary() []StatusValue {
	if p.Filter().Group == GroupAll {
		return ValueByStatus(p.items.Items())
	}
	return ValueByStatus(p.Visible())
}

// StageSummary aggregates deals in one stage.
type StageSummary struct {
	Stage    string
	Count    int
	Total    float64
	Weighted float64 // value times probability
}

// SummarizeStages returns one row per stage in pipeline order.
func SummarizeStages(deals []models.Deal) []StageSummary {
	index := make(map[string]int, len(models.DealStages))
	out := make([]StageSummary, len(models.DealStages))
	for i, st := range models.DealStages {
		index[st] = i
		out[i].Stage = st
	}
	for _, d := range deals {
		i, ok := index[d.Stage]
		if !ok {
			continue
		}
		out[i].Count++
		out[i].Total += float64(d.Value)
		out[i].Weighted += float64(d.Value) * float64(d.Probability) / 100
	}
	return out
}

// Totals is the dashboard header.
type Totals struct {
	Leads        int
	Contacts     int
	OpenDeals    int
	Pipeline     float64
	Won          float64
	OpenTasks    int
	Meetings     int
	PendingMeets int
}

// ComputeTotals derives the dashboard numbers from loaded collections.
func ComputeTotals(leads, contacts []models.Person, deals []models.Deal, tasks []models.Task, meetings []models.Meeting) Totals {
	t := Totals{Leads: len(leads), Contacts: len(contacts), Meetings: len(meetings)}
	for _, d := range deals {
		if d.Stage == models.StageClosedWon {
			t.Won += float64(d.Value)
			continue
		}
		t.OpenDeals++
		t.Pipeline += float64(d.Value)
	}
	for _, task := range tasks {
		if task.Status != models.TaskCompleted {
			t.OpenTasks++
		}
	}
	for _, m := range meetings {
		if m.Status == models.MeetingPending {
			t.PendingMeets++
		}
	}
	return t
}
