// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/viz"
)

type VizHandlers struct {
	ws     *pages.Workspace
	logger *log.Logger
	mu     sync.Mutex
}

func NewVizHandlers(ws *pages.Workspace, logger *log.Logger) *VizHandlers {
	return &VizHandlers{ws: ws, logger: logger}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline, group, or complete"`
	EntityID string `json:"entity_id,omitempty" jsonschema:"Group ID (optional for group graphs; all groups when empty)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}
	switch input.Type {
	case "pipeline", "group", "complete":
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, group, complete)", input.Type)
	}

	h.mu.Lock()
	if err := h.ws.LoadAll(ctx); err != nil {
		h.mu.Unlock()
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to load CRM data: %w", err)
	}
	snap := viz.SnapshotOf(h.ws)
	h.mu.Unlock()

	generator := viz.NewGraphGenerator(snap, viz.FormatDOT, h.logger)
	var (
		dot string
		err error
	)
	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "group":
		dot, err = generator.GenerateGroupGraph(ctx, input.EntityID)
	case "complete":
		dot, err = generator.GenerateCompleteGraph(ctx)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: strings.Count(dot, "label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}
