// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/crmtui/viz"
)

// VizCommand handles "viz <subcommand>".
func VizCommand(ctx context.Context, env *Env, args []string) error {
	return Dispatch(ctx, env, "viz", map[string]Command{
		"graph":     VizGraphCommand,
		"dashboard": VizDashboardCommand,
	}, args)
}

// VizGraphCommand renders "viz graph <pipeline|groups|complete> [group-id]".
func VizGraphCommand(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("viz graph requires a type (pipeline, groups or complete)")
	}
	graphType := args[0]

	fs := flag.NewFlagSet("viz graph "+graphType, flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	formatName := fs.String("format", "dot", "Output format: dot or svg")
	_ = fs.Parse(args[1:])

	format, err := viz.ParseFormat(*formatName)
	if err != nil {
		return err
	}

	ws := env.Workspace()
	if err := ws.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load CRM data: %w", err)
	}
	generator := viz.NewGraphGenerator(viz.SnapshotOf(ws), format, env.Logger)

	var out string
	switch graphType {
	case "pipeline":
		out, err = generator.GeneratePipelineGraph(ctx)
	case "groups":
		out, err = generator.GenerateGroupGraph(ctx, fs.Arg(0))
	case "complete":
		out, err = generator.GenerateCompleteGraph(ctx)
	default:
		return fmt.Errorf("unknown graph type: %s (valid: pipeline, groups, complete)", graphType)
	}
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Graph written to %s\n", *output)
		return nil
	}

	fmt.Fprintln(env.Out, out)
	return nil
}

// VizDashboardCommand prints the text dashboard.
func VizDashboardCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("viz dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	ws := env.Workspace()
	if err := ws.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load CRM data: %w", err)
	}

	stats := viz.GenerateDashboardStats(viz.DashboardInputOf(ws), time.Now())
	fmt.Fprint(env.Out, viz.RenderDashboard(stats))
	fmt.Fprintln(env.Out)
	fmt.Fprint(env.Out, viz.RenderValues(ws.Leads.ValueSummary()))
	return nil
}
