// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to leads, contacts, deals, tasks and the pipeline via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/pages"
)

// Resources lists every URI ReadResource answers.
var Resources = []*mcp.Resource{
	{URI: "crm://leads", Name: "leads", Description: "All leads", MIMEType: "application/json"},
	{URI: "crm://contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
	{URI: "crm://deals", Name: "deals", Description: "All deals", MIMEType: "application/json"},
	{URI: "crm://tasks", Name: "tasks", Description: "All tasks", MIMEType: "application/json"},
	{URI: "crm://pipeline", Name: "pipeline", Description: "Deal totals per stage", MIMEType: "application/json"},
}

type ResourceHandlers struct {
	ws *pages.Workspace
	mu sync.Mutex
}

func NewResourceHandlers(ws *pages.Workspace) *ResourceHandlers {
	return &ResourceHandlers{ws: ws}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var data any
	switch strings.TrimPrefix(uri, "crm://") {
	case "leads":
		if err := h.ws.Leads.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch leads: %w", err)
		}
		data = h.ws.Leads.Items()
	case "contacts":
		if err := h.ws.Contacts.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch contacts: %w", err)
		}
		data = h.ws.Contacts.Items()
	case "deals":
		if err := h.ws.Deals.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch deals: %w", err)
		}
		data = h.ws.Deals.Items()
	case "tasks":
		if err := h.ws.Tasks.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch tasks: %w", err)
		}
		data = h.ws.Tasks.Items()
	case "pipeline":
		if err := h.ws.Deals.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch deals: %w", err)
		}
		data = h.ws.Deals.Summary()
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}

	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		},
	}}, nil
}
