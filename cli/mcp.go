// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/handlers"
)

// MCPCommand starts the MCP server on stdio. Notices and logs go to stderr so stdout carries
// only protocol traffic.
func MCPCommand(ctx context.Context, env *Env, version string) error {
	env.Logger.Info("Starting CRM MCP Server...", "api", env.BaseURL)

	ws := env.Workspace()

	// Create handlers
	peopleHandlers := handlers.NewPeopleHandlers(ws)
	dealHandlers := handlers.NewDealHandlers(ws)
	taskHandlers := handlers.NewTaskHandlers(ws)
	queryHandlers := handlers.NewQueryHandlers(ws, peopleHandlers, dealHandlers, taskHandlers)
	vizHandlers := handlers.NewVizHandlers(ws, env.Logger)
	resourceHandlers := handlers.NewResourceHandlers(ws)
	promptHandlers := handlers.NewPromptHandlers(ws)

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "crm",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_leads",
		Description: "List leads, optionally filtered by search text, status or group",
	}, peopleHandlers.ListLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts, optionally filtered by search text, status or group",
	}, peopleHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead",
		Description: "Add a new lead to the CRM",
	}, peopleHandlers.AddLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_lead_status",
		Description: "Move a lead to a new status",
	}, peopleHandlers.UpdateLeadStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals with per-stage totals, optionally filtered by stage or search text",
	}, dealHandlers.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_deal",
		Description: "Create a new deal in the pipeline",
	}, dealHandlers.AddDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal_stage",
		Description: "Move a deal to a new pipeline stage",
	}, dealHandlers.UpdateDealStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, optionally filtered by status, priority or search text",
	}, taskHandlers.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Create a task, optionally related to a lead, contact or deal",
	}, taskHandlers.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_task",
		Description: "Advance a task to its next status (To Do, In Progress, Completed)",
	}, taskHandlers.ToggleTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_meetings",
		Description: "List booked meetings, optionally filtered by type or search text",
	}, queryHandlers.ListMeetings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_groups",
		Description: "List groups with their resolved members",
	}, queryHandlers.ListGroups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Universal query tool for flexible filtering across all CRM entity types (lead, contact, deal, task, meeting, group)",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of the pipeline, groups or the complete CRM",
	}, vizHandlers.GenerateGraph)

	// Register resources and prompts
	for _, r := range handlers.Resources {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, p := range handlers.Prompts {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	// Run server on stdio transport
	return server.Run(ctx, &mcp.StdioTransport{})
}
