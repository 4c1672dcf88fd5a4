// ABOUTME: Deal CLI commands
// ABOUTME: Lists the pipeline with stage totals and adds, moves or deletes deals
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

// DealsCommand handles "deals <subcommand>".
func DealsCommand(ctx context.Context, env *Env, args []string) error {
	return Dispatch(ctx, env, "deals", map[string]Command{
		"list":   ListDealsCommand,
		"add":    AddDealCommand,
		"stage":  UpdateDealStageCommand,
		"delete": DeleteDealCommand,
	}, args)
}

// ListDealsCommand lists deals with the per-stage summary.
func ListDealsCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("deals list", flag.ExitOnError)
	query := fs.String("query", "", "Search by deal name or company")
	stage := fs.String("stage", "", "Filter by stage")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if *stage != "" {
		if err := oneOf(models.DealStages, *stage, "stage"); err != nil {
			return err
		}
	}

	deals := env.Workspace().Deals
	if err := deals.Load(ctx); err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}
	deals.SetFilter(pages.DealFilter{Stage: *stage, Search: *query})
	visible := deals.Visible()

	if len(visible) == 0 {
		fmt.Fprintln(env.Out, "No deals found")
		return nil
	}

	w := newTable(env.Out, "NAME", "COMPANY", "STAGE", "VALUE", "PROB", "CLOSE", "ID")
	for _, d := range visible[:min(*limit, len(visible))] {
		closeDate := ""
		if !d.ExpectedCloseDate.IsZero() {
			closeDate = d.ExpectedCloseDate.Local().Format("2006-01-02")
		}
		row(w, d.Name, d.Company, d.Stage, views.Money(float64(d.Value)),
			fmt.Sprintf("%s%%", d.Probability), closeDate, d.ID)
	}
	_ = w.Flush()

	fmt.Fprintln(env.Out)
	w = newTable(env.Out, "STAGE", "DEALS", "TOTAL", "WEIGHTED")
	for _, s := range pages.SummarizeStages(visible) {
		row(w, s.Stage, fmt.Sprint(s.Count), views.Money(s.Total), views.Money(s.Weighted))
	}
	return w.Flush()
}

// AddDealCommand creates a deal.
func AddDealCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("deals add", flag.ExitOnError)
	name := fs.String("name", "", "Deal name (required)")
	company := fs.String("company", "", "Company name (required)")
	stage := fs.String("stage", models.StageLeadIn, "Deal stage")
	value := fs.Float64("value", 0, "Deal value (required)")
	probability := fs.Float64("probability", 0, "Win probability 0-100 (required)")
	closeDate := fs.String("close-date", "", "Expected close date YYYY-MM-DD (required)")
	_ = fs.Parse(args)

	if err := oneOf(models.DealStages, *stage, "stage"); err != nil {
		return err
	}
	expected, err := models.ParseTimestamp(*closeDate)
	if err != nil {
		return fmt.Errorf("invalid --close-date: %w", err)
	}

	created, err := env.Workspace().Deals.Add(ctx, models.Deal{
		Name:              *name,
		Company:           *company,
		Stage:             *stage,
		Value:             models.Number(*value),
		Probability:       models.Number(*probability),
		ExpectedCloseDate: expected,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "%s (ID: %s)\n", created.Name, created.ID)
	fmt.Fprintf(env.Out, "  Stage: %s\n", created.Stage)
	fmt.Fprintf(env.Out, "  Value: %s\n", views.Money(float64(created.Value)))
	return nil
}

// UpdateDealStageCommand moves a deal: "deals stage <id> <stage>".
func UpdateDealStageCommand(ctx context.Context, env *Env, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: deals stage <id> <stage>")
	}
	id, stage := args[0], strings.Join(args[1:], " ")
	if err := oneOf(models.DealStages, stage, "stage"); err != nil {
		return err
	}
	return env.Workspace().Deals.UpdateStage(ctx, id, stage)
}

func DeleteDealCommand(ctx context.Context, env *Env, args []string) error {
	id, err := requireArg(args, "deal ID")
	if err != nil {
		return err
	}
	return env.Workspace().Deals.Delete(ctx, id)
}
