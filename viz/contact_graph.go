package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/crmtui/models"
)

// GenerateGroupGraph draws groups and their members. With groupID set only that group is drawn.
// Members whose record no longer exists are skipped.
func (g *GraphGenerator) GenerateGroupGraph(ctx context.Context, groupID string) (string, error) {
	groups := g.snap.Groups
	if groupID != "" {
		groups = nil
		for _, grp := range g.snap.Groups {
			if grp.ID == groupID {
				groups = append(groups, grp)
			}
		}
		if len(groups) == 0 {
			return "", fmt.Errorf("group %s not found", groupID)
		}
	}

	people := make(map[string]models.Person, len(g.snap.Leads)+len(g.snap.Contacts))
	for _, p := range g.snap.Leads {
		people[string(models.EntityLead)+p.ID] = p
	}
	for _, p := range g.snap.Contacts {
		people[string(models.EntityContact)+p.ID] = p
	}

	return g.render(ctx, "Groups", func(graph *cgraph.Graph) error {
		graph.SetLayout("neato")

		nodes := make(map[string]*cgraph.Node)
		for _, grp := range groups {
			gnode, err := graph.CreateNodeByName("group_" + grp.ID)
			if err != nil {
				return fmt.Errorf("failed to create group node: %w", err)
			}
			gnode.SetLabel(grp.Name)
			gnode.SetShape("box")
			gnode.SetStyle("filled")
			gnode.SetFillColor("lightblue")

			for _, m := range grp.Members {
				key := string(m.Type) + m.MemberID
				p, ok := people[key]
				if !ok {
					g.logger.Debug("group member not found", "group", grp.ID, "member", m.MemberID)
					continue
				}
				pnode, ok := nodes[key]
				if !ok {
					pnode, err = graph.CreateNodeByName(key)
					if err != nil {
						return fmt.Errorf("failed to create member node: %w", err)
					}
					pnode.SetLabel(fmt.Sprintf("%s\n%s", p.Name, p.Email))
					pnode.SetShape("ellipse")
					pnode.SetStyle("filled")
					if m.Type == models.EntityLead {
						pnode.SetFillColor("lightyellow")
					} else {
						pnode.SetFillColor("lightgreen")
					}
					nodes[key] = pnode
				}
				edge, err := graph.CreateEdgeByName("member", gnode, pnode)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetDir("none")
			}
		}
		return nil
	})
}
