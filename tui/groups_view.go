// ABOUTME: Groups page: create and delete groups, list members, add and remove leads or contacts
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

type groupsPage struct {
	*listPage
	groups  *pages.Groups
	query   string
	detail  *detailPanel
	members []models.Person
}

func newGroupsPage(d *deps, groups *pages.Groups) *groupsPage {
	p := &groupsPage{
		listPage: newListPage(d, RouteGroups, pages.GroupViews),
		groups:   groups,
	}
	p.records = func() []views.Record { return views.Records(groups.Visible(p.query)) }
	p.setSearch = func(q string) { p.query = q }
	p.load = groups.Load
	p.onOpen = func(r views.Record) tea.Cmd {
		p.openDetail(r.RecordID())
		return nil
	}
	return p
}

func (p *groupsPage) openDetail(id string) {
	grp, ok := p.groups.Find(id)
	if !ok {
		p.detail, p.members = nil, nil
		return
	}
	cursor := 0
	if p.detail != nil && p.detail.id == id {
		cursor = p.detail.cursor
	}
	p.members = p.groups.Members(id)
	list := make([]string, len(p.members))
	for i, m := range p.members {
		list[i] = m.Name
		if m.Company != "" {
			list[i] += " (" + m.Company + ")"
		}
	}
	kind := "Empty"
	if len(grp.Members) > 0 {
		kind = grp.Members[0].Type.Label()
	}
	p.detail = &detailPanel{
		id:      grp.ID,
		title:   "GROUP",
		rows:    []detailRow{{"Name", grp.Name}, {"Type", kind}, {"Members", fmt.Sprint(len(p.members))}},
		heading: "Members",
		list:    list,
		help:    []string{"j/k: Move", "m: Add members", "r: Remove member", "x: Delete group", "esc: Close"},
	}
	p.detail.move(cursor)
}

func (p *groupsPage) Typing() bool {
	return p.detail != nil || p.listPage.Typing()
}

func (p *groupsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case actionMsg:
		cmd := p.listPage.Update(msg)
		if p.detail != nil {
			p.openDetail(p.detail.id)
		}
		return cmd
	case confirmDoneMsg:
		cmd := p.listPage.Update(msg)
		if msg.err == nil {
			if msg.op == pages.ActionDelete {
				p.detail, p.members = nil, nil
			} else if p.detail != nil {
				p.openDetail(p.detail.id)
			}
		}
		return cmd
	case tea.KeyMsg:
		if p.overlay() || p.switcher.Capturing() {
			return p.listPage.Update(msg)
		}
		if p.detail != nil {
			return p.handleDetailKeys(msg)
		}
		if msg.String() == "a" {
			return p.openCreate()
		}
	}
	return p.listPage.Update(msg)
}

func (p *groupsPage) handleDetailKeys(msg tea.KeyMsg) tea.Cmd {
	id := p.detail.id
	grp, _ := p.groups.Find(id)
	switch msg.String() {
	case "esc", "q":
		p.detail, p.members = nil, nil
	case "j", "down":
		p.detail.move(1)
	case "k", "up":
		p.detail.move(-1)
	case "m":
		return p.openAddMembers(grp)
	case "r":
		if len(p.members) == 0 {
			return nil
		}
		member := p.members[p.detail.cursor]
		memberType := memberTypeOf(grp, member.ID)
		p.openConfirm(newConfirm(pages.ActionMembers, "Remove member?", member.Name+" from "+grp.Name, func(ctx context.Context) error {
			return p.groups.RemoveMember(ctx, id, member.ID, memberType)
		}))
	case "x":
		p.openConfirm(newConfirm(pages.ActionDelete, "Delete group?", grp.Name, func(ctx context.Context) error {
			return p.groups.Delete(ctx, id)
		}))
	}
	return nil
}

func memberTypeOf(grp models.Group, memberID string) models.EntityType {
	for _, m := range grp.Members {
		if m.MemberID == memberID {
			return m.Type
		}
	}
	return models.EntityLead
}

func (p *groupsPage) openCreate() tea.Cmd {
	f := newForm("New Group", formField{key: "name", label: "Group name"})
	return p.openForm(pages.ActionAdd, f, func(ctx context.Context, v map[string]string) error {
		_, err := p.groups.Create(ctx, v["name"])
		return err
	})
}

// openAddMembers asks for a member type and comma separated names or ids. A group that
// already has members only takes more of the same type.
func (p *groupsPage) openAddMembers(grp models.Group) tea.Cmd {
	types := []string{string(models.EntityLead), string(models.EntityContact)}
	if len(grp.Members) > 0 {
		types = []string{string(grp.Members[0].Type)}
	}
	f := newForm("Add members to "+grp.Name,
		formField{key: "type", label: "Type", options: types},
		formField{key: "members", label: "Members", placeholder: "Ann Lee, Bo Chen", limit: 1000},
	)
	return p.openForm(pages.ActionMembers, f, func(ctx context.Context, v map[string]string) error {
		t := models.EntityType(v["type"])
		candidates := p.groups.Leads()
		if t == models.EntityContact {
			candidates = p.groups.Contacts()
		}
		ids, missing := resolvePeople(candidates, v["members"])
		if len(missing) > 0 {
			return p.invalid("members", fmt.Errorf("no %s named %s", t, strings.Join(missing, ", ")))
		}
		return p.groups.AddMembers(ctx, grp.ID, t, ids)
	})
}

// resolvePeople maps comma separated names or ids onto ids, reporting the entries that
// match nobody.
func resolvePeople(people []models.Person, input string) (ids, missing []string) {
	for _, ref := range strings.Split(input, ",") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		found := ""
		for _, person := range people {
			if person.ID == ref || strings.EqualFold(person.Name, ref) {
				found = person.ID
				break
			}
		}
		if found == "" {
			missing = append(missing, ref)
			continue
		}
		ids = append(ids, found)
	}
	return ids, missing
}

func (p *groupsPage) View(width, height int) string {
	header := mutedStyle.Render(fmt.Sprintf("%d groups", len(p.groups.Visible(p.query))))
	side := ""
	if p.detail != nil {
		side = p.detail.View(sidePanelWidth, height)
	}
	return p.view(width, height, header, side, []string{"a: New group", "enter: Open"})
}
