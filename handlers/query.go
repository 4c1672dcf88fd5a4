// ABOUTME: Meeting, group and universal query tool handlers
// ABOUTME: Implements list_meetings, list_groups and query_crm across every entity type
package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

// QueryHandlers delegates lead, contact, deal and task queries to the handlers that own those
// controllers' filters.
type QueryHandlers struct {
	ws     *pages.Workspace
	people *PeopleHandlers
	deals  *DealHandlers
	tasks  *TaskHandlers
	mu     sync.Mutex
}

func NewQueryHandlers(ws *pages.Workspace, people *PeopleHandlers, deals *DealHandlers, tasks *TaskHandlers) *QueryHandlers {
	return &QueryHandlers{ws: ws, people: people, deals: deals, tasks: tasks}
}

type ListMeetingsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search by contact name or company"`
	Type  string `json:"type,omitempty" jsonschema:"Filter by type: Scheduled, In-person, Virtual"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type MeetingOutput struct {
	ID          string `json:"id"`
	ContactName string `json:"contact_name"`
	Company     string `json:"company,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Type        string `json:"type"`
	Status      string `json:"status,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type ListMeetingsOutput struct {
	Meetings []MeetingOutput `json:"meetings"`
	Count    int             `json:"count"`
}

func (h *QueryHandlers) ListMeetings(ctx context.Context, _ *mcp.CallToolRequest, input ListMeetingsInput) (*mcp.CallToolResult, ListMeetingsOutput, error) {
	if input.Type != "" && !models.InVocabulary(models.MeetingTypes, input.Type) {
		return nil, ListMeetingsOutput{}, fmt.Errorf("invalid type: %s", input.Type)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	meetings := h.ws.Meetings
	if err := meetings.Load(ctx); err != nil {
		return nil, ListMeetingsOutput{}, fmt.Errorf("failed to load meetings: %w", err)
	}
	meetings.SetFilter(pages.MeetingFilter{Type: input.Type, Search: input.Query})
	defer meetings.SetFilter(pages.MeetingFilter{})

	visible := meetings.Visible()
	out := ListMeetingsOutput{Meetings: []MeetingOutput{}}
	for _, m := range visible[:min(limitOrDefault(input.Limit), len(visible))] {
		out.Meetings = append(out.Meetings, meetingToOutput(m))
	}
	out.Count = len(out.Meetings)
	return nil, out, nil
}

type ListGroupsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search by group name"`
}

type MemberOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type GroupOutput struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Members []MemberOutput `json:"members"`
}

type ListGroupsOutput struct {
	Groups []GroupOutput `json:"groups"`
	Count  int           `json:"count"`
}

func (h *QueryHandlers) ListGroups(ctx context.Context, _ *mcp.CallToolRequest, input ListGroupsInput) (*mcp.CallToolResult, ListGroupsOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groups := h.ws.Groups
	if err := groups.Load(ctx); err != nil {
		return nil, ListGroupsOutput{}, fmt.Errorf("failed to load groups: %w", err)
	}

	out := ListGroupsOutput{Groups: []GroupOutput{}}
	for _, g := range groups.Visible(input.Query) {
		out.Groups = append(out.Groups, groupToOutput(g, groups))
	}
	out.Count = len(out.Groups)
	return nil, out, nil
}

type QueryCRMInput struct {
	EntityType string `json:"entity_type" jsonschema:"Type of entity to query (lead, contact, deal, task, meeting, group)"`
	Query      string `json:"query,omitempty" jsonschema:"Search query matched against names, companies and titles"`
	Status     string `json:"status,omitempty" jsonschema:"Status, stage or meeting type to filter by"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string `json:"entity_type"`
	Results    []any  `json:"results"`
	Count      int    `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, req *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}

	var results []any
	switch input.EntityType {
	case "lead", "contact":
		list := ListPeopleInput{Query: input.Query, Status: input.Status, Limit: input.Limit}
		var (
			out ListPeopleOutput
			err error
		)
		if input.EntityType == "lead" {
			_, out, err = h.people.ListLeads(ctx, req, list)
		} else {
			_, out, err = h.people.ListContacts(ctx, req, list)
		}
		if err != nil {
			return nil, QueryCRMOutput{}, err
		}
		results = collect(out.People)
	case "deal":
		_, out, err := h.deals.ListDeals(ctx, req, ListDealsInput{Query: input.Query, Stage: input.Status, Limit: input.Limit})
		if err != nil {
			return nil, QueryCRMOutput{}, err
		}
		results = collect(out.Deals)
	case "task":
		_, out, err := h.tasks.ListTasks(ctx, req, ListTasksInput{Query: input.Query, Status: input.Status, Limit: input.Limit})
		if err != nil {
			return nil, QueryCRMOutput{}, err
		}
		results = collect(out.Tasks)
	case "meeting":
		_, out, err := h.ListMeetings(ctx, req, ListMeetingsInput{Query: input.Query, Type: input.Status, Limit: input.Limit})
		if err != nil {
			return nil, QueryCRMOutput{}, err
		}
		results = collect(out.Meetings)
	case "group":
		_, out, err := h.ListGroups(ctx, req, ListGroupsInput{Query: input.Query})
		if err != nil {
			return nil, QueryCRMOutput{}, err
		}
		results = collect(out.Groups[:min(input.Limit, len(out.Groups))])
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: lead, contact, deal, task, meeting, group)", input.EntityType)
	}

	return nil, QueryCRMOutput{EntityType: input.EntityType, Results: results, Count: len(results)}, nil
}

func collect[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

func meetingToOutput(m models.Meeting) MeetingOutput {
	return MeetingOutput{
		ID:          m.ID,
		ContactName: m.ContactName,
		Company:     m.Company,
		Date:        m.Date,
		Time:        m.Time,
		Duration:    m.Duration,
		Type:        m.Type,
		Status:      m.Status,
		Notes:       m.Notes,
	}
}

func groupToOutput(g models.Group, groups *pages.Groups) GroupOutput {
	out := GroupOutput{ID: g.ID, Name: g.Name, Members: []MemberOutput{}}
	types := make(map[string]models.EntityType, len(g.Members))
	for _, m := range g.Members {
		types[m.MemberID] = m.Type
	}
	for _, p := range groups.Members(g.ID) {
		out.Members = append(out.Members, MemberOutput{ID: p.ID, Name: p.Name, Type: types[p.ID].Label()})
	}
	return out
}
