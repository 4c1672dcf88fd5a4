// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides standardized prompts built from the live pipeline, leads and tasks
package handlers

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

// Prompts lists every prompt GetPrompt answers.
var Prompts = []*mcp.Prompt{
	{
		Name:        "deal-analysis",
		Description: "Analyze the deal pipeline by stage",
	},
	{
		Name:        "follow-up-suggestions",
		Description: "Leads with due reminders and overdue tasks that need follow-up",
		Arguments: []*mcp.PromptArgument{
			{Name: "days_ahead", Description: "Include reminders due within this many days (default 7)"},
		},
	},
	{
		Name:        "lead-summary",
		Description: "Summarize one lead with its notes, reminders and tasks",
		Arguments: []*mcp.PromptArgument{
			{Name: "lead_id", Description: "Lead ID", Required: true},
		},
	},
}

type PromptHandlers struct {
	ws  *pages.Workspace
	mu  sync.Mutex
	now func() time.Time
}

func NewPromptHandlers(ws *pages.Workspace) *PromptHandlers {
	return &PromptHandlers{ws: ws, now: time.Now}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "deal-analysis":
		return h.getDealAnalysisPrompt(ctx)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx, arguments)
	case "lead-summary":
		return h.getLeadSummaryPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

func (h *PromptHandlers) getDealAnalysisPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	if err := h.ws.Deals.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	deals := h.ws.Deals.Items()

	var total, weighted float64
	summary := pages.SummarizeStages(deals)
	for _, s := range summary {
		total += s.Total
		weighted += s.Weighted
	}

	var promptText strings.Builder
	promptText.WriteString("Please analyze the current deal pipeline:\n\n")
	fmt.Fprintf(&promptText, "Total Deals: %d\n", len(deals))
	fmt.Fprintf(&promptText, "Total Value: %s\n", money(total))
	fmt.Fprintf(&promptText, "Weighted Value: %s\n\n", money(weighted))
	promptText.WriteString("Pipeline by Stage:\n")
	for _, s := range summary {
		fmt.Fprintf(&promptText, "  - %s: %d deals, %s\n", s.Stage, s.Count, money(s.Total))
	}

	now := h.now()
	var late []string
	for _, d := range deals {
		if d.Stage != models.StageClosedWon && !d.ExpectedCloseDate.IsZero() && d.ExpectedCloseDate.Before(now) {
			late = append(late, fmt.Sprintf("  - %s (%s), expected %s\n", d.Name, d.Stage, humanize.Time(d.ExpectedCloseDate.Time)))
		}
	}
	if len(late) > 0 {
		promptText.WriteString("\nPast expected close date:\n")
		for _, l := range late {
			promptText.WriteString(l)
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Analysis of pipeline health and distribution")
	promptText.WriteString("\n2. Recommendations for deals that may need attention")
	promptText.WriteString("\n3. Suggestions for improving conversion rates")

	return userPrompt("Deal pipeline analysis", promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := 7
	if raw, ok := args["days_ahead"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid days_ahead: %s", raw)
		}
		days = n
	}
	if err := h.ws.Leads.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	if err := h.ws.Tasks.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	now := h.now()
	horizon := now.AddDate(0, 0, days)

	var promptText strings.Builder
	fmt.Fprintf(&promptText, "Leads with reminders due in the next %d days:\n\n", days)
	count := 0
	for _, lead := range h.ws.Leads.Items() {
		for _, r := range lead.Reminders {
			if r.Date.IsZero() || r.Date.After(horizon) {
				continue
			}
			fmt.Fprintf(&promptText, "- %s (%s, %s): %s, due %s\n", lead.Name, lead.Company, lead.Status, r.Text, humanize.Time(r.Date.Time))
			count++
		}
	}
	if count == 0 {
		promptText.WriteString("No reminders are due.\n")
	}

	promptText.WriteString("\nOverdue tasks:\n\n")
	overdue := 0
	for _, t := range h.ws.Tasks.Items() {
		if t.Status == models.TaskCompleted || t.DueDate.IsZero() || !t.DueDate.Before(now) {
			continue
		}
		fmt.Fprintf(&promptText, "- %s [%s] for %s, due %s\n", t.Title, t.Priority, h.ws.Tasks.RelatedName(t.Related), humanize.Time(t.DueDate.Time))
		overdue++
	}
	if overdue == 0 {
		promptText.WriteString("No tasks are overdue.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which leads to reach out to first")
	promptText.WriteString("\n2. Suggest personalized outreach approaches for each")
	promptText.WriteString("\n3. Identify any patterns in follow-up gaps")

	return userPrompt("Follow-up suggestions for leads", promptText.String()), nil
}

func (h *PromptHandlers) getLeadSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["lead_id"]
	if !ok || id == "" {
		return nil, fmt.Errorf("lead_id is required")
	}
	if err := h.ws.Tasks.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	leads := h.ws.Tasks.Leads()
	idx := slices.IndexFunc(leads, func(p models.Person) bool { return p.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("lead not found: %s", id)
	}
	found := leads[idx]

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this lead:\n\n")
	fmt.Fprintf(&promptText, "Name: %s\n", found.Name)
	fmt.Fprintf(&promptText, "Company: %s\n", found.Company)
	if found.Email != "" {
		fmt.Fprintf(&promptText, "Email: %s\n", found.Email)
	}
	if found.Phone != "" {
		fmt.Fprintf(&promptText, "Phone: %s\n", found.Phone)
	}
	fmt.Fprintf(&promptText, "Status: %s\n", found.Status)
	fmt.Fprintf(&promptText, "Value: %s\n", money(float64(found.Value)))
	if found.Description != "" {
		fmt.Fprintf(&promptText, "\nDescription: %s\n", found.Description)
	}
	if len(found.Notes) > 0 {
		promptText.WriteString("\nNotes:\n")
		for _, n := range found.Notes {
			fmt.Fprintf(&promptText, "  - %s\n", n)
		}
	}
	if len(found.Reminders) > 0 {
		promptText.WriteString("\nReminders:\n")
		for _, r := range found.Reminders {
			fmt.Fprintf(&promptText, "  - %s (%s)\n", r.Text, r.Date.Local().Format("2006-01-02"))
		}
	}

	var tasks []string
	for _, t := range h.ws.Tasks.Items() {
		if t.Related.Kind() == models.RelatedLead && t.Related.ID() == id {
			tasks = append(tasks, fmt.Sprintf("  - %s [%s, %s]\n", t.Title, t.Status, t.Priority))
		}
	}
	if len(tasks) > 0 {
		promptText.WriteString("\nTasks:\n")
		for _, t := range tasks {
			promptText.WriteString(t)
		}
	}

	promptText.WriteString("\nPlease summarize where this lead stands and suggest the next step.")

	return userPrompt("Lead summary", promptText.String()), nil
}
