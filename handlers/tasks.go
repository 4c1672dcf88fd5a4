// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements list_tasks, add_task and toggle_task tools
package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

type TaskHandlers struct {
	ws *pages.Workspace
	mu sync.Mutex
}

func NewTaskHandlers(ws *pages.Workspace) *TaskHandlers {
	return &TaskHandlers{ws: ws}
}

type ListTasksInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search by task title"`
	Status   string `json:"status,omitempty" jsonschema:"Filter by status: To Do, In Progress, Completed"`
	Priority string `json:"priority,omitempty" jsonschema:"Filter by priority: High, Medium, Low"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type TaskOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	RelatedType string `json:"related_type,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`
	RelatedName string `json:"related_name,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

func (h *TaskHandlers) ListTasks(ctx context.Context, _ *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	if input.Status != "" && !models.InVocabulary(models.TaskStatuses, input.Status) {
		return nil, ListTasksOutput{}, fmt.Errorf("invalid status: %s", input.Status)
	}
	if input.Priority != "" && !models.InVocabulary(models.Priorities, input.Priority) {
		return nil, ListTasksOutput{}, fmt.Errorf("invalid priority: %s", input.Priority)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tasks := h.ws.Tasks
	if err := tasks.Load(ctx); err != nil {
		return nil, ListTasksOutput{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	tasks.SetFilter(pages.TaskFilter{Status: input.Status, Priority: input.Priority, Search: input.Query})
	defer tasks.SetFilter(pages.TaskFilter{})

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	visible := tasks.Visible()
	out := ListTasksOutput{Tasks: []TaskOutput{}}
	for _, t := range visible[:min(limit, len(visible))] {
		out.Tasks = append(out.Tasks, h.taskToOutput(t))
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

type AddTaskInput struct {
	Title       string `json:"title" jsonschema:"Task title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Task description"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date as YYYY-MM-DD"`
	Priority    string `json:"priority,omitempty" jsonschema:"High, Medium or Low (default Medium)"`
	RelatedType string `json:"related_type,omitempty" jsonschema:"Related record type: Lead, Contact or Deal"`
	RelatedID   string `json:"related_id,omitempty" jsonschema:"ID of the related record"`
}

func (h *TaskHandlers) AddTask(ctx context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	related, err := models.ParseRelated(input.RelatedType, input.RelatedID)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	due, err := models.ParseTimestamp(input.DueDate)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("invalid due_date: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tasks := h.ws.Tasks
	// The related record is checked against the loaded leads, contacts and deals.
	if !related.IsNone() {
		if err := tasks.Load(ctx); err != nil {
			return nil, TaskOutput{}, fmt.Errorf("failed to load tasks: %w", err)
		}
	}
	created, err := tasks.Add(ctx, models.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Priority:    input.Priority,
		Related:     related,
	})
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to add task: %w", err)
	}
	return nil, h.taskToOutput(created), nil
}

type ToggleTaskInput struct {
	ID string `json:"id" jsonschema:"Task ID (required)"`
}

func (h *TaskHandlers) ToggleTask(ctx context.Context, _ *mcp.CallToolRequest, input ToggleTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.ID == "" {
		return nil, TaskOutput{}, fmt.Errorf("id is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tasks := h.ws.Tasks
	if err := tasks.Load(ctx); err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	if _, ok := tasks.Find(input.ID); !ok {
		return nil, TaskOutput{}, fmt.Errorf("task not found: %s", input.ID)
	}
	if _, err := tasks.Toggle(ctx, input.ID); err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to toggle task: %w", err)
	}
	task, _ := tasks.Find(input.ID)
	return nil, h.taskToOutput(task), nil
}

func (h *TaskHandlers) taskToOutput(t models.Task) TaskOutput {
	out := TaskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
	}
	if !t.DueDate.IsZero() {
		out.DueDate = t.DueDate.Local().Format("2006-01-02")
	}
	if !t.Related.IsNone() {
		out.RelatedType = t.Related.Model()
		out.RelatedID = t.Related.ID()
		out.RelatedName = h.ws.Tasks.RelatedName(t.Related)
	}
	if t.AssignedTo != "" {
		out.AssignedTo = models.UserName(h.ws.Tasks.Users(), t.AssignedTo)
	}
	return out
}
