// ABOUTME: Task CLI commands
// ABOUTME: Lists, adds, toggles and deletes tasks linked to leads, contacts or deals
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

// TasksCommand handles "tasks <subcommand>".
func TasksCommand(ctx context.Context, env *Env, args []string) error {
	return Dispatch(ctx, env, "tasks", map[string]Command{
		"list":   ListTasksCommand,
		"add":    AddTaskCommand,
		"toggle": ToggleTaskCommand,
		"status": UpdateTaskStatusCommand,
		"delete": DeleteTaskCommand,
	}, args)
}

// ListTasksCommand lists tasks with their related record.
func ListTasksCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("tasks list", flag.ExitOnError)
	query := fs.String("query", "", "Search by title")
	status := fs.String("status", "", "Filter by status")
	priority := fs.String("priority", "", "Filter by priority")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if *status != "" {
		if err := oneOf(models.TaskStatuses, *status, "status"); err != nil {
			return err
		}
	}
	if *priority != "" {
		if err := oneOf(models.Priorities, *priority, "priority"); err != nil {
			return err
		}
	}

	tasks := env.Workspace().Tasks
	if err := tasks.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	tasks.SetFilter(pages.TaskFilter{Status: *status, Priority: *priority, Search: *query})
	visible := tasks.Visible()

	if len(visible) == 0 {
		fmt.Fprintln(env.Out, "No tasks found")
		return nil
	}

	w := newTable(env.Out, "TITLE", "STATUS", "PRIORITY", "DUE", "RELATED", "ASSIGNEE", "ID")
	for _, t := range visible[:min(*limit, len(visible))] {
		due := ""
		if !t.DueDate.IsZero() {
			due = t.DueDate.Local().Format("2006-01-02")
		}
		related := ""
		if !t.Related.IsNone() {
			related = fmt.Sprintf("%s: %s", t.Related.Model(), tasks.RelatedName(t.Related))
		}
		assignee := ""
		if t.AssignedTo != "" {
			assignee = models.UserName(tasks.Users(), t.AssignedTo)
		}
		row(w, t.Title, t.Status, t.Priority, due, related, assignee, t.ID)
	}
	return w.Flush()
}

// AddTaskCommand creates a task. A related record must exist, so it is checked against the
// loaded leads, contacts and deals.
func AddTaskCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("tasks add", flag.ExitOnError)
	title := fs.String("title", "", "Task title (required)")
	description := fs.String("description", "", "Task description")
	due := fs.String("due", "", "Due date YYYY-MM-DD")
	priority := fs.String("priority", models.PriorityMedium, "Priority")
	lead := fs.String("lead", "", "Related lead ID")
	contact := fs.String("contact", "", "Related contact ID")
	deal := fs.String("deal", "", "Related deal ID")
	_ = fs.Parse(args)

	if err := oneOf(models.Priorities, *priority, "priority"); err != nil {
		return err
	}
	dueDate, err := models.ParseTimestamp(*due)
	if err != nil {
		return fmt.Errorf("invalid --due: %w", err)
	}

	var model, id string
	for _, r := range []struct{ model, id string }{{"Lead", *lead}, {"Contact", *contact}, {"Deal", *deal}} {
		if r.id == "" {
			continue
		}
		if id != "" {
			return fmt.Errorf("only one of --lead, --contact or --deal may be given")
		}
		model, id = r.model, r.id
	}
	related, err := models.ParseRelated(model, id)
	if err != nil {
		return err
	}

	tasks := env.Workspace().Tasks
	if !related.IsNone() {
		if err := tasks.Load(ctx); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
	}
	created, err := tasks.Add(ctx, models.Task{
		Title:       *title,
		Description: *description,
		DueDate:     dueDate,
		Priority:    *priority,
		Related:     related,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "%s (ID: %s)\n", created.Title, created.ID)
	if !related.IsNone() {
		fmt.Fprintf(env.Out, "  %s: %s\n", related.Model(), tasks.RelatedName(related))
	}
	return nil
}

// ToggleTaskCommand advances a task one status step.
func ToggleTaskCommand(ctx context.Context, env *Env, args []string) error {
	id, err := requireArg(args, "task ID")
	if err != nil {
		return err
	}
	tasks := env.Workspace().Tasks
	if err := tasks.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if _, ok := tasks.Find(id); !ok {
		return fmt.Errorf("task not found: %s", id)
	}
	_, err = tasks.Toggle(ctx, id)
	return err
}

// UpdateTaskStatusCommand sets a status: "tasks status <id> <status>".
func UpdateTaskStatusCommand(ctx context.Context, env *Env, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: tasks status <id> <status>")
	}
	id, status := args[0], strings.Join(args[1:], " ")
	if err := oneOf(models.TaskStatuses, status, "status"); err != nil {
		return err
	}
	return env.Workspace().Tasks.UpdateStatus(ctx, id, status)
}

func DeleteTaskCommand(ctx context.Context, env *Env, args []string) error {
	id, err := requireArg(args, "task ID")
	if err != nil {
		return err
	}
	return env.Workspace().Tasks.Delete(ctx, id)
}
