// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements list_deals, add_deal, and update_deal_stage tools
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

type DealHandlers struct {
	ws *pages.Workspace
	mu sync.Mutex
}

func NewDealHandlers(ws *pages.Workspace) *DealHandlers {
	return &DealHandlers{ws: ws}
}

type ListDealsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search by deal name or company"`
	Stage string `json:"stage,omitempty" jsonschema:"Filter by stage: Lead In, Qualification, Proposal, Negotiation, Closed Won"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type DealOutput struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Company           string  `json:"company"`
	Stage             string  `json:"stage"`
	Value             float64 `json:"value"`
	Probability       float64 `json:"probability"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

type StageOutput struct {
	Stage    string  `json:"stage"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Weighted float64 `json:"weighted"`
}

type ListDealsOutput struct {
	Deals  []DealOutput  `json:"deals"`
	Count  int           `json:"count"`
	Stages []StageOutput `json:"stages"`
}

func (h *DealHandlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, ListDealsOutput, error) {
	if input.Stage != "" && !models.InVocabulary(models.DealStages, input.Stage) {
		return nil, ListDealsOutput{}, invalidStage(input.Stage)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	deals := h.ws.Deals
	if err := deals.Load(ctx); err != nil {
		return nil, ListDealsOutput{}, fmt.Errorf("failed to load deals: %w", err)
	}
	deals.SetFilter(pages.DealFilter{Stage: input.Stage, Search: input.Query})
	defer deals.SetFilter(pages.DealFilter{Stage: models.FilterAll})

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	visible := deals.Visible()
	out := ListDealsOutput{Deals: []DealOutput{}}
	for _, d := range visible[:min(limit, len(visible))] {
		out.Deals = append(out.Deals, dealToOutput(d))
	}
	out.Count = len(out.Deals)
	for _, s := range pages.SummarizeStages(visible) {
		out.Stages = append(out.Stages, StageOutput{Stage: s.Stage, Count: s.Count, Total: s.Total, Weighted: s.Weighted})
	}
	return nil, out, nil
}

type AddDealInput struct {
	Name              string  `json:"name" jsonschema:"Deal name (required)"`
	Company           string  `json:"company" jsonschema:"Company name (required)"`
	Stage             string  `json:"stage,omitempty" jsonschema:"Deal stage (default Lead In)"`
	Value             float64 `json:"value" jsonschema:"Deal value (required)"`
	Probability       float64 `json:"probability" jsonschema:"Win probability 0-100 (required)"`
	ExpectedCloseDate string  `json:"expected_close_date" jsonschema:"Expected close date as YYYY-MM-DD (required)"`
}

func (h *DealHandlers) AddDeal(ctx context.Context, _ *mcp.CallToolRequest, input AddDealInput) (*mcp.CallToolResult, DealOutput, error) {
	stage := input.Stage
	if stage == "" {
		stage = models.StageLeadIn
	}
	if !models.InVocabulary(models.DealStages, stage) {
		return nil, DealOutput{}, invalidStage(stage)
	}
	closeDate, err := models.ParseTimestamp(input.ExpectedCloseDate)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("invalid expected_close_date: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	created, err := h.ws.Deals.Add(ctx, models.Deal{
		Name:              input.Name,
		Company:           input.Company,
		Stage:             stage,
		Value:             models.Number(input.Value),
		Probability:       models.Number(input.Probability),
		ExpectedCloseDate: closeDate,
	})
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to add deal: %w", err)
	}
	return nil, dealToOutput(created), nil
}

type UpdateDealStageInput struct {
	ID    string `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"New stage: Lead In, Qualification, Proposal, Negotiation, Closed Won"`
}

func (h *DealHandlers) UpdateDealStage(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealStageInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}
	if !models.InVocabulary(models.DealStages, input.Stage) {
		return nil, DealOutput{}, invalidStage(input.Stage)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	deals := h.ws.Deals
	if err := deals.Load(ctx); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to load deals: %w", err)
	}
	if _, ok := deals.Find(input.ID); !ok {
		return nil, DealOutput{}, fmt.Errorf("deal not found: %s", input.ID)
	}
	if err := deals.UpdateStage(ctx, input.ID, input.Stage); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to update deal: %w", err)
	}
	deal, _ := deals.Find(input.ID)
	return nil, dealToOutput(deal), nil
}

func invalidStage(stage string) error {
	return fmt.Errorf("invalid stage: %s (valid: %s)", stage, strings.Join(models.DealStages, ", "))
}

func dealToOutput(d models.Deal) DealOutput {
	out := DealOutput{
		ID:          d.ID,
		Name:        d.Name,
		Company:     d.Company,
		Stage:       d.Stage,
		Value:       float64(d.Value),
		Probability: float64(d.Probability),
		CreatedAt:   formatTime(d.CreatedAt),
	}
	if !d.ExpectedCloseDate.IsZero() {
		out.ExpectedCloseDate = d.ExpectedCloseDate.Local().Format("2006-01-02")
	}
	return out
}
