// ABOUTME: Complete graph generation combining all loaded entities
// ABOUTME: Links tasks to the lead, contact or deal they relate to
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/views"
)

// GenerateCompleteGraph draws leads, contacts, deals and tasks, with an edge from each task
// to its related record. Deals attach to leads or contacts with the same company.
func (g *GraphGenerator) GenerateCompleteGraph(ctx context.Context) (string, error) {
	return g.render(ctx, "Complete CRM Graph", func(graph *cgraph.Graph) error {
		leadNodes := make(map[string]*cgraph.Node)
		contactNodes := make(map[string]*cgraph.Node)
		byCompany := make(map[string]*cgraph.Node)

		addPeople := func(people []models.Person, prefix, color string, into map[string]*cgraph.Node) error {
			for _, p := range people {
				node, err := graph.CreateNodeByName(prefix + p.ID)
				if err != nil {
					return fmt.Errorf("failed to create %s node: %w", prefix, err)
				}
				node.SetLabel(fmt.Sprintf("%s\n%s", p.Name, p.Company))
				node.SetShape("ellipse")
				node.SetStyle("filled")
				node.SetFillColor(color)
				into[p.ID] = node
				if p.Company != "" {
					if _, taken := byCompany[p.Company]; !taken {
						byCompany[p.Company] = node
					}
				}
			}
			return nil
		}
		if err := addPeople(g.snap.Leads, "lead_", "lightyellow", leadNodes); err != nil {
			return err
		}
		if err := addPeople(g.snap.Contacts, "contact_", "lightgreen", contactNodes); err != nil {
			return err
		}

		dealNodes := make(map[string]*cgraph.Node)
		for _, deal := range g.snap.Deals {
			node, err := graph.CreateNodeByName("deal_" + deal.ID)
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s\n(%s)", deal.Name, views.Money(float64(deal.Value)), deal.Stage))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor("lightblue")
			dealNodes[deal.ID] = node

			if owner, ok := byCompany[deal.Company]; ok {
				edge, err := graph.CreateEdgeByName("deal_with", owner, node)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("deal")
			}
		}

		for _, task := range g.snap.Tasks {
			node, err := graph.CreateNodeByName("task_" + task.ID)
			if err != nil {
				return fmt.Errorf("failed to create task node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n(%s)", task.Title, task.Status))
			node.SetShape("note")

			var target *cgraph.Node
			switch task.Related.Kind() {
			case models.RelatedLead:
				target = leadNodes[task.Related.ID()]
			case models.RelatedContact:
				target = contactNodes[task.Related.ID()]
			case models.RelatedDeal:
				target = dealNodes[task.Related.ID()]
			}
			if target == nil {
				continue
			}
			edge, err := graph.CreateEdgeByName("task_for", node, target)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
		return nil
	})
}
