// ABOUTME: Lead and contact MCP tool handlers
// ABOUTME: Implements list_leads, add_lead, update_lead_status and list_contacts
package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

const defaultLimit = 50

type PeopleHandlers struct {
	ws *pages.Workspace
	mu sync.Mutex // controller filters are shared state
}

func NewPeopleHandlers(ws *pages.Workspace) *PeopleHandlers {
	return &PeopleHandlers{ws: ws}
}

type ListPeopleInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search by name, company or email"`
	Status string `json:"status,omitempty" jsonschema:"Filter by status: New, Contacted, Qualified, Proposal, Negotiation, Won"`
	Group  string `json:"group,omitempty" jsonschema:"Only members of this group (name or ID)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type PersonOutput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Company     string  `json:"company,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Value       float64 `json:"value"`
	AssignedTo  string  `json:"assigned_to,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

type ListPeopleOutput struct {
	People []PersonOutput `json:"people"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
}

func (h *PeopleHandlers) ListLeads(ctx context.Context, _ *mcp.CallToolRequest, input ListPeopleInput) (*mcp.CallToolResult, ListPeopleOutput, error) {
	out, err := h.list(ctx, h.ws.Leads, input)
	return nil, out, err
}

func (h *PeopleHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListPeopleInput) (*mcp.CallToolResult, ListPeopleOutput, error) {
	out, err := h.list(ctx, h.ws.Contacts, input)
	return nil, out, err
}

func (h *PeopleHandlers) list(ctx context.Context, people *pages.People, input ListPeopleInput) (ListPeopleOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := people.Load(ctx); err != nil {
		return ListPeopleOutput{}, fmt.Errorf("failed to load %ss: %w", people.Entity(), err)
	}

	filter := pages.PersonFilter{Search: input.Query, Status: input.Status}
	if input.Status != "" && !models.InVocabulary(models.LeadStatuses, input.Status) {
		return ListPeopleOutput{}, fmt.Errorf("invalid status: %s (valid: %s)", input.Status, strings.Join(models.LeadStatuses, ", "))
	}
	if input.Group != "" {
		g, ok := people.FindGroup(input.Group)
		if !ok {
			return ListPeopleOutput{}, fmt.Errorf("group not found: %s", input.Group)
		}
		filter.Group = g.ID
	}
	people.SetFilter(filter)
	defer people.SetFilter(pages.PersonFilter{})

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	visible := people.Visible()
	out := ListPeopleOutput{People: []PersonOutput{}, Total: len(visible)}
	for _, p := range visible[:min(limit, len(visible))] {
		out.People = append(out.People, personToOutput(p, people.Users()))
	}
	out.Count = len(out.People)
	return out, nil
}

type AddLeadInput struct {
	Name        string  `json:"name" jsonschema:"Lead name (required)"`
	Company     string  `json:"company" jsonschema:"Company name (required)"`
	Email       string  `json:"email" jsonschema:"Email address (required)"`
	Phone       string  `json:"phone,omitempty" jsonschema:"Phone number"`
	Description string  `json:"description,omitempty" jsonschema:"Notes about the lead"`
	Status      string  `json:"status,omitempty" jsonschema:"Initial status (default New)"`
	Value       float64 `json:"value,omitempty" jsonschema:"Estimated value"`
}

func (h *PeopleHandlers) AddLead(ctx context.Context, _ *mcp.CallToolRequest, input AddLeadInput) (*mcp.CallToolResult, PersonOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	created, err := h.ws.Leads.Add(ctx, models.Person{
		Name:        input.Name,
		Company:     input.Company,
		Email:       input.Email,
		Phone:       input.Phone,
		Description: input.Description,
		Status:      input.Status,
		Value:       models.Number(input.Value),
	})
	if err != nil {
		return nil, PersonOutput{}, fmt.Errorf("failed to add lead: %w", err)
	}
	return nil, personToOutput(created, nil), nil
}

type UpdateLeadStatusInput struct {
	ID     string `json:"id" jsonschema:"Lead ID (required)"`
	Status string `json:"status" jsonschema:"New status: New, Contacted, Qualified, Proposal, Negotiation, Won"`
}

func (h *PeopleHandlers) UpdateLeadStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateLeadStatusInput) (*mcp.CallToolResult, PersonOutput, error) {
	if input.ID == "" {
		return nil, PersonOutput{}, fmt.Errorf("id is required")
	}
	if !models.InVocabulary(models.LeadStatuses, input.Status) {
		return nil, PersonOutput{}, fmt.Errorf("invalid status: %s (valid: %s)", input.Status, strings.Join(models.LeadStatuses, ", "))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	leads := h.ws.Leads
	if err := leads.Load(ctx); err != nil {
		return nil, PersonOutput{}, fmt.Errorf("failed to load leads: %w", err)
	}
	if _, ok := leads.Find(input.ID); !ok {
		return nil, PersonOutput{}, fmt.Errorf("lead not found: %s", input.ID)
	}
	if err := leads.UpdateStatus(ctx, input.ID, input.Status); err != nil {
		return nil, PersonOutput{}, fmt.Errorf("failed to update lead: %w", err)
	}
	lead, _ := leads.Find(input.ID)
	return nil, personToOutput(lead, leads.Users()), nil
}

func personToOutput(p models.Person, users []models.User) PersonOutput {
	out := PersonOutput{
		ID:          p.ID,
		Name:        p.Name,
		Company:     p.Company,
		Email:       p.Email,
		Phone:       p.Phone,
		Description: p.Description,
		Status:      p.Status,
		Value:       float64(p.Value),
		CreatedAt:   formatTime(p.CreatedAt),
	}
	if p.Assignee != "" {
		out.AssignedTo = models.UserName(users, p.Assignee)
	}
	return out
}

func formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02T15:04:05Z07:00")
}
