// ABOUTME: Groups page controller: create, delete and member management for lead/contact groups
// ABOUTME: Member lists resolve ids through the loaded leads and contacts and drop stale ids
package pages

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/resource"
)

// Groups controls the groups page.
type Groups struct {
	coll     *resource.Collection[models.Group]
	leadsC   *resource.Collection[models.Person]
	contactC *resource.Collection[models.Person]

	items    *resource.Store[models.Group]
	leads    *resource.Store[models.Person]
	contacts *resource.Store[models.Person]

	notifier api.Notifier
	logger   *log.Logger
}

func NewGroups(opts Options) *Groups {
	logger := opts.logger().With("page", models.EntityGroup.Path())
	return &Groups{
		coll:     resource.NewCollection[models.Group](opts.Gateway, models.EntityGroup.Path()),
		leadsC:   resource.NewCollection[models.Person](opts.Gateway, models.EntityLead.Path()),
		contactC: resource.NewCollection[models.Person](opts.Gateway, models.EntityContact.Path()),
		items:    resource.NewStore(groupID, logger),
		leads:    resource.NewStore(personID, logger),
		contacts: resource.NewStore(personID, logger),
		notifier: opts.notifier(),
		logger:   logger,
	}
}

func (g *Groups) Load(ctx context.Context) error {
	return g.items.Run(ctx, g.notifier, resource.Action{Name: ActionLoad, Failure: "Failed to fetch groups"}, func(ctx context.Context) error {
		eg, gctx := errgroup.WithContext(ctx)
		eg.Go(func() error { return fill(gctx, g.coll, g.items) })
		eg.Go(func() error { return fill(gctx, g.leadsC, g.leads) })
		eg.Go(func() error { return fill(gctx, g.contactC, g.contacts) })
		return eg.Wait()
	})
}

func (g *Groups) Items() []models.Group               { return g.items.Items() }
func (g *Groups) Find(id string) (models.Group, bool) { return g.items.Find(id) }
func (g *Groups) Leads() []models.Person              { return g.leads.Items() }
func (g *Groups) Contacts() []models.Person           { return g.contacts.Items() }
func (g *Groups) Loading(action string) bool          { return g.items.Loading(action) }

func (g *Groups) people(t models.EntityType) *resource.Store[models.Person] {
	if t == models.EntityContact {
		return g.contacts
	}
	return g.leads
}

// Members resolves a group's members in order. Ids that no longer resolve are dropped.
func (g *Groups) Members(groupID string) []models.Person {
	grp, ok := g.items.Find(groupID)
	if !ok {
		return nil
	}
	return resolveMembers(grp, func(id string) (models.Person, bool) {
		for _, m := range grp.Members {
			if m.MemberID == id {
				return g.people(m.Type).Find(id)
			}
		}
		return models.Person{}, false
	}, g.logger)
}

// Visible filters groups by name.
func (g *Groups) Visible(search string) []models.Group {
	var out []models.Group
	for _, grp := range g.items.Items() {
		if matches(search, grp.Name) {
			out = append(out, grp)
		}
	}
	return out
}

// Create makes an empty group. The name is required.
func (g *Groups) Create(ctx context.Context, name string) (models.Group, error) {
	var created models.Group
	err := g.items.Run(ctx, g.notifier, resource.Action{
		Name:    ActionAdd,
		Success: "Group created successfully!",
		Failure: "Failed to create group",
	}, func(ctx context.Context) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return &models.ValidationError{Field: "name", Message: "Group name cannot be empty"}
		}
		var resp struct {
			Group models.Group `json:"group"`
		}
		if err := g.coll.Gateway().Do(ctx, http.MethodPost, g.coll.Path()+"/create", map[string]string{"name": name}, &resp); err != nil {
			return err
		}
		created = resp.Group
		if created.Members == nil {
			created.Members = []models.GroupMember{}
		}
		g.items.Append(created)
		return nil
	})
	return created, err
}

func (g *Groups) Delete(ctx context.Context, id string) error {
	return g.items.Run(ctx, g.notifier, resource.Action{
		Name:    ActionDelete,
		Success: "Group deleted successfully!",
		Failure: "Failed to delete group!",
	}, func(ctx context.Context) error {
		if err := g.coll.Delete(ctx, id); err != nil {
			return err
		}
		g.items.Remove(id)
		return nil
	})
}

// AddMembers adds ids of one entity type. Only the members the backend reports as added are
// recorded locally.
func (g *Groups) AddMembers(ctx context.Context, groupID string, t models.EntityType, ids []string) error {
	return g.items.Run(ctx, g.notifier, resource.Action{
		Name:    ActionMembers,
		Success: "Members added successfully!",
		Failure: "Failed to add members",
	}, func(ctx context.Context) error {
		if groupID == "" || len(ids) == 0 {
			return &models.ValidationError{Message: "Please select a group and members"}
		}
		if t != models.EntityLead && t != models.EntityContact {
			return &models.ValidationError{Field: "type", Message: fmt.Sprintf("cannot add %s members", t)}
		}
		var resp struct {
			AddedMembers []struct {
				MemberID string `json:"memberId"`
			} `json:"addedMembers"`
		}
		body := map[string]any{"memberIds": ids, "type": t}
		if err := g.coll.Gateway().Do(ctx, http.MethodPost, g.coll.Item(groupID)+"/add-members", body, &resp); err != nil {
			return err
		}
		g.items.Modify(groupID, func(grp *models.Group) {
			for _, m := range resp.AddedMembers {
				grp.Members = append(grp.Members, models.GroupMember{MemberID: m.MemberID, Type: t})
			}
		})
		return nil
	})
}

// RemoveMember drops one member from a group.
func (g *Groups) RemoveMember(ctx context.Context, groupID, memberID string, t models.EntityType) error {
	return g.items.Run(ctx, g.notifier, resource.Action{
		Name:    ActionMembers,
		Success: "Member removed successfully!",
		Failure: "Failed to remove member!",
	}, func(ctx context.Context) error {
		body := map[string]any{"memberId": memberID, "type": t}
		if err := g.coll.Gateway().Do(ctx, http.MethodPost, g.coll.Item(groupID)+"/remove-member", body, nil); err != nil {
			return err
		}
		g.items.Modify(groupID, func(grp *models.Group) {
			kept := grp.Members[:0:0]
			for _, m := range grp.Members {
				if m.MemberID != memberID {
					kept = append(kept, m)
				}
			}
			grp.Members = kept
		})
		return nil
	})
}
