// ABOUTME: Leads and Contacts page controller: load, filter, add, import, update and delete
// ABOUTME: Both entity types share the Person shape, so one controller serves both pages
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/resource"
)

// PersonFilter is the visible-subset selection on the leads and contacts pages.
type PersonFilter struct {
	Group  string // GroupAll or a group id
	Status string // models.FilterAll or a status
	Search string
}

// People controls the leads or contacts page.
type People struct {
	entity   models.EntityType
	coll     *resource.Collection[models.Person]
	groupsC  *resource.Collection[models.Group]
	usersC   *resource.Collection[models.User]
	items    *resource.Store[models.Person]
	groups   *resource.Store[models.Group]
	users    *resource.Store[models.User]
	notifier api.Notifier
	logger   *log.Logger

	mu     sync.RWMutex
	filter PersonFilter
}

func NewLeads(opts Options) *People    { return newPeople(models.EntityLead, opts) }
func NewContacts(opts Options) *People { return newPeople(models.EntityContact, opts) }

func newPeople(entity models.EntityType, opts Options) *People {
	logger := opts.logger().With("page", entity.Path())
	return &People{
		entity:   entity,
		coll:     resource.NewCollection[models.Person](opts.Gateway, entity.Path()),
		groupsC:  resource.NewCollection[models.Group](opts.Gateway, models.EntityGroup.Path()),
		usersC:   resource.NewCollection[models.User](opts.Gateway, models.EntityUser.Path()),
		items:    resource.NewStore(personID, logger),
		groups:   resource.NewStore(groupID, logger),
		users:    resource.NewStore(userID, logger),
		notifier: opts.notifier(),
		logger:   logger,
		filter:   PersonFilter{Group: GroupAll, Status: models.FilterAll},
	}
}

func (p *People) Entity() models.EntityType { return p.entity }

// Load fetches the collection and the group list concurrently, then the users.
func (p *People) Load(ctx context.Context) error {
	return p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionLoad,
		Failure: fmt.Sprintf("Failed to load %ss", p.entity),
	}, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		var people []models.Person
		var groups []models.Group
		g.Go(func() error {
			var err error
			people, err = p.coll.List(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			groups, err = p.groupsC.List(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		p.items.Set(people)
		p.groups.Set(groups)

		users, err := p.usersC.List(ctx)
		if err != nil {
			return err
		}
		p.users.Set(users)
		p.logger.Debug("loaded", "records", len(people), "groups", len(groups), "users", len(users))
		return nil
	})
}

// Items returns the whole collection.
func (p *People) Items() []models.Person { return p.items.Items() }

func (p *People) Find(id string) (models.Person, bool) { return p.items.Find(id) }

func (p *People) Users() []models.User { return p.users.Items() }

// Loading reports whether the named action is in flight.
func (p *People) Loading(action string) bool { return p.items.Loading(action) }

// Groups returns the groups whose members are all of this page's entity type.
func (p *People) Groups() []models.Group {
	var out []models.Group
	for _, g := range p.groups.Items() {
		if g.HasOnly(p.entity) {
			out = append(out, g)
		}
	}
	return out
}

// FindGroup resolves one of Groups by id or case-insensitive name.
func (p *People) FindGroup(ref string) (models.Group, bool) {
	for _, g := range p.Groups() {
		if g.ID == ref || strings.EqualFold(g.Name, ref) {
			return g, true
		}
	}
	return models.Group{}, false
}

func (p *People) Filter() PersonFilter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

func (p *People) SetFilter(f PersonFilter) {
	if f.Group == "" {
		f.Group = GroupAll
	}
	if f.Status == "" {
		f.Status = models.FilterAll
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
}

func (p *People) SetSearch(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter.Search = q
}

func (p *People) SetStatusFilter(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter.Status = status
}

func (p *People) SetGroupFilter(group string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter.Group = group
}

// Visible derives the filtered subset. A selected group maps its member ids through the
// collection, dropping stale ids, before the search and status predicate applies.
func (p *People) Visible() []models.Person {
	f := p.Filter()

	var source []models.Person
	if f.Group == GroupAll {
		source = p.items.Items()
	} else if g, ok := p.groups.Find(f.Group); ok {
		source = resolveMembers(g, p.items.Find, p.logger)
	}

	out := make([]models.Person, 0, len(source))
	for _, person := range source {
		if matches(f.Search, person.Name, person.Company, person.Email) && statusMatches(f.Status, person.Status) {
			out = append(out, person)
		}
	}
	return out
}

// Add validates and creates a record. Missing required fields raise a notice and send nothing.
func (p *People) Add(ctx context.Context, person models.Person) (models.Person, error) {
	if person.Status == "" {
		person.Status = models.StatusNew
	}
	var created models.Person
	err := p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionAdd,
		Success: fmt.Sprintf("New %s has been added successfully", p.entity),
		Failure: fmt.Sprintf("Failed to add %s", p.entity),
	}, func(ctx context.Context) error {
		if err := models.ValidateNewPerson(person); err != nil {
			return err
		}
		var err error
		created, err = p.coll.Create(ctx, person)
		if err != nil {
			return err
		}
		if created.ID == "" {
			return fmt.Errorf("create %s: response has no id", p.entity)
		}
		p.items.Append(created)
		return nil
	})
	return created, err
}

// Save sends the whole record and replaces the local copy with the response. It is the
// sidebar's persister.
func (p *People) Save(ctx context.Context, person models.Person) (models.Person, error) {
	saved := person
	err := p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionSave,
		Success: "Changes saved successfully.",
		Failure: fmt.Sprintf("Failed to update %s", p.entity),
	}, func(ctx context.Context) error {
		out, err := p.coll.Update(ctx, person.ID, person)
		if err != nil {
			return err
		}
		if out.ID != "" {
			saved = out
		}
		p.items.Replace(saved)
		return nil
	})
	return saved, err
}

// Delete removes one record.
func (p *People) Delete(ctx context.Context, id string) error {
	return p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionDelete,
		Success: fmt.Sprintf("The %s was removed successfully.", p.entity),
		Failure: fmt.Sprintf("Failed to delete %s", p.entity),
	}, func(ctx context.Context) error {
		if err := p.coll.Delete(ctx, id); err != nil {
			return err
		}
		p.items.Remove(id)
		return nil
	})
}

// DeleteAll removes every record and clears the local collection.
func (p *People) DeleteAll(ctx context.Context) error {
	return p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionDeleteAll,
		Success: fmt.Sprintf("All %ss have been removed successfully.", p.entity),
		Failure: fmt.Sprintf("Failed to delete all %ss", p.entity),
	}, func(ctx context.Context) error {
		if err := p.coll.DeleteAll(ctx); err != nil {
			return err
		}
		p.items.Clear()
		return nil
	})
}

// UpdateStatus persists a status from the kanban or the status picker.
func (p *People) UpdateStatus(ctx context.Context, id, status string) error {
	return p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionStatus,
		Success: fmt.Sprintf("%s status updated to %s.", p.entity.Label(), status),
		Failure: "Failed to update status",
	}, func(ctx context.Context) error {
		if !models.InVocabulary(models.LeadStatuses, status) {
			return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		}
		if err := p.coll.Patch(ctx, id, map[string]string{"status": status}); err != nil {
			return err
		}
		p.items.Modify(id, func(person *models.Person) { person.Status = status })
		return nil
	})
}

// ImportResult is what a CSV import added locally.
type ImportResult struct {
	Imported []models.Person
	Group    *models.Group
}

type importResponse struct {
	Leads    []models.Person `json:"leads"`
	Contacts []models.Person `json:"contacts"`
	Group    *models.Group   `json:"group"`
}

// records returns the imported records for entity, or nil when the backend only reported a
// count (the contacts endpoint answers {"added": n}).
func (r importResponse) records(entity models.EntityType) []models.Person {
	if entity == models.EntityContact {
		return r.Contacts
	}
	return r.Leads
}

// Import uploads a CSV with the create-group choice in one multipart request. Imported records
// are appended, or the collection is refetched when the response carries no records. A returned
// group is added, otherwise groups are refetched when one was asked for.
func (p *People) Import(ctx context.Context, filename string, file io.Reader, createGroup bool) (ImportResult, error) {
	success := fmt.Sprintf("%ss imported successfully!", p.entity.Label())
	if createGroup {
		success = fmt.Sprintf("%ss imported & grouped successfully!", p.entity.Label())
	}

	var result ImportResult
	err := p.items.Run(ctx, p.notifier, resource.Action{
		Name:    ActionImport,
		Success: success,
		Failure: "Failed to upload CSV",
	}, func(ctx context.Context) error {
		if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
			p.logger.Warn("importing a file without a .csv extension", "file", filename)
		}
		var resp importResponse
		fields := map[string]string{"createGroup": fmt.Sprint(createGroup)}
		if err := p.coll.Gateway().Upload(ctx, p.coll.Path()+"/upload-csv", "file", filename, file, fields, &resp); err != nil {
			return err
		}

		if records := resp.records(p.entity); records != nil {
			result.Imported = records
			p.items.Append(records...)
		} else {
			all, err := p.coll.List(ctx)
			if err != nil {
				return err
			}
			for _, person := range all {
				if !p.items.Has(person.ID) {
					result.Imported = append(result.Imported, person)
				}
			}
			p.items.Set(all)
		}

		switch {
		case resp.Group != nil:
			result.Group = resp.Group
			if !p.groups.Replace(*resp.Group) {
				p.groups.Append(*resp.Group)
			}
		case createGroup:
			groups, err := p.groupsC.List(ctx)
			if err != nil {
				p.logger.Warn("group refresh after import failed", "err", err)
				return nil
			}
			p.groups.Set(groups)
		}
		return nil
	})
	return result, err
}
