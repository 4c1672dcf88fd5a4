// ABOUTME: Per-page view configurations for the switcher and the calendar event mappers
package pages

import (
	"fmt"
	"time"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/views"
)

// ViewSettings carries the user-tunable parts of the view configs.
type ViewSettings struct {
	PageSize      int
	PaginateFirst bool
}

// LeadReminderEvents maps a lead to one event per dated reminder.
func LeadReminderEvents(r views.Record, _ time.Time) []views.Event {
	p, ok := r.(models.Person)
	if !ok {
		return nil
	}
	var out []views.Event
	for _, rem := range p.Reminders {
		if rem.Date.IsZero() {
			continue
		}
		out = append(out, views.Event{
			Title: fmt.Sprintf("%s: %s", p.Name, rem.Text),
			Start: rem.Date.Time,
			Ref:   r,
		})
	}
	return out
}

// PeopleViews are the leads and contacts tabs.
func PeopleViews(entity models.EntityType, s ViewSettings) []views.ViewConfig {
	table := views.TableConfig{
		Columns: []views.Column{
			{Key: "name", Label: "Name", Clickable: true},
			{Key: "company", Label: "Company"},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone"},
			{Key: "status", Label: "Status", Width: 14},
		},
		Badge:    views.LeadBadge,
		PageSize: s.PageSize,
	}
	cal := views.CalendarConfig{Events: views.DueEvents}
	if entity == models.EntityLead {
		cal.Events = LeadReminderEvents
	}
	return []views.ViewConfig{
		table,
		views.KanbanConfig{Statuses: models.LeadStatuses, Badge: views.LeadBadge, PaginateFirst: s.PaginateFirst, PageSize: s.PageSize},
		cal,
		views.BoardConfig{},
	}
}

// TaskViews are the tasks tabs.
func TaskViews(s ViewSettings) []views.ViewConfig {
	return []views.ViewConfig{
		views.TableConfig{
			Columns: []views.Column{
				{Key: "title", Label: "Title", Clickable: true},
				{Key: "dueDate", Label: "Due", Width: 12},
				{Key: "priority", Label: "Priority", Width: 10},
				{Key: "status", Label: "Status", Width: 14},
				{Key: "relatedTo", Label: "Related"},
			},
			Badge:    views.TaskStatusBadge,
			PageSize: s.PageSize,
		},
		views.KanbanConfig{Statuses: models.TaskStatuses, Badge: views.TaskStatusBadge, PaginateFirst: s.PaginateFirst, PageSize: s.PageSize},
		views.CalendarConfig{Events: views.DueEvents},
		views.BoardConfig{},
	}
}

// DealViews are the pipeline tabs.
func DealViews(s ViewSettings) []views.ViewConfig {
	return []views.ViewConfig{
		views.TableConfig{
			Columns: []views.Column{
				{Key: "name", Label: "Deal", Clickable: true},
				{Key: "company", Label: "Company"},
				{Key: "stage", Label: "Stage", Width: 15},
				{Key: "value", Label: "Value", Width: 10},
				{Key: "probability", Label: "Prob.", Width: 6},
				{Key: "expectedCloseDate", Label: "Close", Width: 12},
			},
			Badge:    views.StageBadge,
			BadgeKey: "stage",
			PageSize: s.PageSize,
		},
		views.KanbanConfig{Statuses: models.DealStages, Badge: views.StageBadge, PaginateFirst: s.PaginateFirst, PageSize: s.PageSize},
		views.CalendarConfig{Events: views.DueEvents},
		views.BoardConfig{},
	}
}

// MeetingViews are the meetings tabs; meetings have no status workflow, so no kanban.
func MeetingViews(s ViewSettings) []views.ViewConfig {
	return []views.ViewConfig{
		views.TableConfig{
			Columns: []views.Column{
				{Key: "contactName", Label: "Contact", Clickable: true},
				{Key: "company", Label: "Company"},
				{Key: "date", Label: "Date", Width: 12},
				{Key: "time", Label: "Time", Width: 6},
				{Key: "duration", Label: "Duration", Width: 9},
				{Key: "type", Label: "Type", Width: 11},
				{Key: "status", Label: "Status", Width: 10},
			},
			PageSize: s.PageSize,
		},
		views.CalendarConfig{Events: views.DueEvents},
		views.BoardConfig{},
	}
}

// GroupViews are the groups tabs.
func GroupViews(s ViewSettings) []views.ViewConfig {
	return []views.ViewConfig{
		views.TableConfig{
			Columns: []views.Column{
				{Key: "name", Label: "Group", Clickable: true},
				{Key: "members", Label: "Members", Width: 12},
				{Key: "type", Label: "Type", Width: 10},
			},
			BadgeKey: "-",
			PageSize: s.PageSize,
		},
		views.BoardConfig{},
	}
}
