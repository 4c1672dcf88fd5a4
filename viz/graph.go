// ABOUTME: GraphViz generation over a snapshot of loaded CRM collections
// ABOUTME: Renders the pipeline, group membership and complete graphs as DOT or SVG
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

// Snapshot is the data a graph is drawn from. Callers fill it from page controllers.
type Snapshot struct {
	Leads    []models.Person
	Contacts []models.Person
	Deals    []models.Deal
	Tasks    []models.Task
	Groups   []models.Group
}

// Format selects the renderer output.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "dot" and "svg"; anything else is an error.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatDOT:
		return FormatDOT, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unknown format %q (valid formats: dot, svg)", s)
}

func (f Format) graphviz() graphviz.Format {
	if f == FormatSVG {
		return graphviz.SVG
	}
	return graphviz.XDOT
}

type GraphGenerator struct {
	snap   Snapshot
	format Format
	logger *log.Logger
}

func NewGraphGenerator(snap Snapshot, format Format, logger *log.Logger) *GraphGenerator {
	if format == "" {
		format = FormatDOT
	}
	return &GraphGenerator{snap: snap, format: format, logger: logging.OrDiscard(logger)}
}

// render creates a graph, lets build populate it and returns the rendered output.
func (g *GraphGenerator) render(ctx context.Context, label string, build func(graph *cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			g.logger.Warn("closing graphviz", "err", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			g.logger.Warn("closing graph", "err", err)
		}
	}()

	graph.SetLabel(label)
	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, g.format.graphviz(), &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// GeneratePipelineGraph draws each stage as a box in pipeline order with its deals hanging
// off it. Deals in unknown stages are left out and logged.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	return g.render(ctx, "Deal Pipeline", func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)

		stages := make(map[string]*cgraph.Node, len(models.DealStages))
		var prev *cgraph.Node
		for i, stage := range models.DealStages {
			node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", i))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(stage)
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor("lightblue")
			stages[stage] = node

			if prev != nil {
				edge, err := graph.CreateEdgeByName(fmt.Sprintf("next_%d", i), prev, node)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = node
		}

		for _, deal := range g.snap.Deals {
			stage, ok := stages[deal.Stage]
			if !ok {
				g.logger.Debug("deal in unknown stage left out of graph", "id", deal.ID, "stage", deal.Stage)
				continue
			}
			node, err := graph.CreateNodeByName("deal_" + deal.ID)
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s\n%s%%", deal.Name, views.Money(float64(deal.Value)), deal.Probability))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor("lightyellow")

			edge, err := graph.CreateEdgeByName("in_"+deal.ID, stage, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
		return nil
	})
}

// SnapshotOf copies the loaded collections out of a workspace.
func SnapshotOf(w *pages.Workspace) Snapshot {
	return Snapshot{
		Leads:    w.Leads.Items(),
		Contacts: w.Contacts.Items(),
		Deals:    w.Deals.Items(),
		Tasks:    w.Tasks.Items(),
		Groups:   w.Groups.Items(),
	}
}
