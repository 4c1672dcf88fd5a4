// ABOUTME: Tasks page controller with related-entity pickers and the status toggle
// ABOUTME: New tasks validate their RelatedEntity against the loaded leads, contacts and deals
package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/resource"
)

type TaskFilter struct {
	Status   string
	Priority string
	Search   string
}

// Tasks controls the tasks page.
type Tasks struct {
	coll     *resource.Collection[models.Task]
	leadsC   *resource.Collection[models.Person]
	contactC *resource.Collection[models.Person]
	dealsC   *resource.Collection[models.Deal]
	usersC   *resource.Collection[models.User]

	items    *resource.Store[models.Task]
	leads    *resource.Store[models.Person]
	contacts *resource.Store[models.Person]
	deals    *resource.Store[models.Deal]
	users    *resource.Store[models.User]

	notifier api.Notifier
	logger   *log.Logger

	mu     sync.RWMutex
	filter TaskFilter
}

func NewTasks(opts Options) *Tasks {
	logger := opts.logger().With("page", models.EntityTask.Path())
	return &Tasks{
		coll:     resource.NewCollection[models.Task](opts.Gateway, models.EntityTask.Path()),
		leadsC:   resource.NewCollection[models.Person](opts.Gateway, models.EntityLead.Path()),
		contactC: resource.NewCollection[models.Person](opts.Gateway, models.EntityContact.Path()),
		dealsC:   resource.NewCollection[models.Deal](opts.Gateway, models.EntityDeal.Path()),
		usersC:   resource.NewCollection[models.User](opts.Gateway, models.EntityUser.Path()),
		items:    resource.NewStore(taskID, logger),
		leads:    resource.NewStore(personID, logger),
		contacts: resource.NewStore(personID, logger),
		deals:    resource.NewStore(dealID, logger),
		users:    resource.NewStore(userID, logger),
		notifier: opts.notifier(),
		logger:   logger,
		filter:   TaskFilter{Status: models.FilterAll, Priority: models.FilterAll},
	}
}

// Load fetches the tasks and every picker list concurrently.
func (t *Tasks) Load(ctx context.Context) error {
	return t.items.Run(ctx, t.notifier, resource.Action{Name: ActionLoad, Failure: "Failed to fetch tasks"}, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return fill(gctx, t.coll, t.items) })
		g.Go(func() error { return fill(gctx, t.usersC, t.users) })
		g.Go(func() error { return fill(gctx, t.leadsC, t.leads) })
		g.Go(func() error { return fill(gctx, t.contactC, t.contacts) })
		g.Go(func() error { return fill(gctx, t.dealsC, t.deals) })
		return g.Wait()
	})
}

// fill lists a collection into a store.
func fill[T any](ctx context.Context, c *resource.Collection[T], s *resource.Store[T]) error {
	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	s.Set(items)
	return nil
}

func (t *Tasks) Items() []models.Task               { return t.items.Items() }
func (t *Tasks) Find(id string) (models.Task, bool) { return t.items.Find(id) }
func (t *Tasks) Users() []models.User               { return t.users.Items() }
func (t *Tasks) Leads() []models.Person             { return t.leads.Items() }
func (t *Tasks) Contacts() []models.Person          { return t.contacts.Items() }
func (t *Tasks) Deals() []models.Deal               { return t.deals.Items() }
func (t *Tasks) Loading(action string) bool         { return t.items.Loading(action) }

func (t *Tasks) HasLead(id string) bool    { return t.leads.Has(id) }
func (t *Tasks) HasContact(id string) bool { return t.contacts.Has(id) }
func (t *Tasks) HasDeal(id string) bool    { return t.deals.Has(id) }

func (t *Tasks) Filter() TaskFilter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.filter
}

func (t *Tasks) SetFilter(f TaskFilter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = f
}

func (t *Tasks) SetSearch(q string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter.Search = q
}

// RelatedName resolves a task's related entity to a display name.
func (t *Tasks) RelatedName(r models.RelatedEntity) string {
	switch r.Kind() {
	case models.RelatedLead:
		if p, ok := t.leads.Find(r.ID()); ok {
			return p.Name
		}
	case models.RelatedContact:
		if p, ok := t.contacts.Find(r.ID()); ok {
			return p.Name
		}
	case models.RelatedDeal:
		if d, ok := t.deals.Find(r.ID()); ok {
			return d.Name
		}
	case models.RelatedNone:
		return "None"
	}
	return r.String()
}

// Visible applies the title search and the status and priority filters.
func (t *Tasks) Visible() []models.Task {
	f := t.Filter()
	var out []models.Task
	for _, task := range t.items.Items() {
		if matches(f.Search, task.Title) && statusMatches(f.Status, task.Status) && statusMatches(f.Priority, task.Priority) {
			out = append(out, task)
		}
	}
	return out
}

// Add creates a task. Priority defaults to Medium and status to To Do.
func (t *Tasks) Add(ctx context.Context, task models.Task) (models.Task, error) {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.TaskToDo
	}
	var created models.Task
	err := t.items.Run(ctx, t.notifier, resource.Action{
		Name:    ActionAdd,
		Success: "Task created successfully!",
		Failure: "Failed to create task",
	}, func(ctx context.Context) error {
		if err := models.ValidateNewTask(task, t); err != nil {
			return err
		}
		var err error
		created, err = t.coll.Create(ctx, task)
		if err != nil {
			return err
		}
		if created.ID == "" {
			return fmt.Errorf("create task: response has no id")
		}
		t.items.Append(created)
		return nil
	})
	return created, err
}

// Save sends the whole task, validating its relation first.
func (t *Tasks) Save(ctx context.Context, task models.Task) (models.Task, error) {
	saved := task
	err := t.items.Run(ctx, t.notifier, resource.Action{
		Name:    ActionSave,
		Success: "Task updated successfully.",
		Failure: "Failed to update task",
	}, func(ctx context.Context) error {
		if err := task.Related.Validate(t); err != nil {
			return err
		}
		out, err := t.coll.Update(ctx, task.ID, task)
		if err != nil {
			return err
		}
		if out.ID != "" {
			saved = out
		}
		t.items.Replace(saved)
		return nil
	})
	return saved, err
}

// Toggle advances a task's status one step and returns the new status.
func (t *Tasks) Toggle(ctx context.Context, id string) (string, error) {
	task, ok := t.items.Find(id)
	if !ok {
		return "", fmt.Errorf("task %s not loaded", id)
	}
	next := models.NextTaskStatus(task.Status)
	err := t.items.Run(ctx, t.notifier, resource.Action{
		Name:    ActionToggle,
		Success: fmt.Sprintf("Task status changed to %s.", next),
		Failure: "Failed to update task status",
	}, func(ctx context.Context) error {
		if err := t.coll.Patch(ctx, id, map[string]string{"status": next}); err != nil {
			return err
		}
		t.items.Modify(id, func(task *models.Task) { task.Status = next })
		return nil
	})
	return next, err
}

// UpdateStatus sets a specific status, used by the kanban.
func (t *Tasks) UpdateStatus(ctx context.Context, id, status string) error {
	return t.items.Run(ctx, t.notifier, resource.Action{
		Name:    ActionStatus,
		Success: fmt.Sprintf("Task status changed to %s.", status),
		Failure: "Failed to update task status",
	}, func(ctx context.Context) error {
		if !models.InVocabulary(models.TaskStatuses, status) {
			return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		}
		if err := t.coll.Patch(ctx, id, map[string]string{"status": status}); err != nil {
			return err
		}
		t.items.Modify(id, func(task *models.Task) { task.Status = status })
		return nil
	})
}

func (t *Tasks) Delete(ctx context.Context, id string) error {
	return t.items.Run(ctx, t.notifier, resource.Action{
		Name:    ActionDelete,
		Success: "The task was removed successfully.",
		Failure: "Failed to delete task",
	}, func(ctx context.Context) error {
		if err := t.coll.Delete(ctx, id); err != nil {
			return err
		}
		t.items.Remove(id)
		return nil
	})
}
