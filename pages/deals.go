// ABOUTME: Pipeline page controller for deals: stage filter, inline stage changes, stage summary
package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/resource"
)

type DealFilter struct {
	Stage  string
	Search string
}

// Deals controls the pipeline page.
type Deals struct {
	coll     *resource.Collection[models.Deal]
	items    *resource.Store[models.Deal]
	notifier api.Notifier
	logger   *log.Logger

	mu     sync.RWMutex
	filter DealFilter
}

func NewDeals(opts Options) *Deals {
	logger := opts.logger().With("page", models.EntityDeal.Path())
	return &Deals{
		coll:     resource.NewCollection[models.Deal](opts.Gateway, models.EntityDeal.Path()),
		items:    resource.NewStore(dealID, logger),
		notifier: opts.notifier(),
		logger:   logger,
		filter:   DealFilter{Stage: models.FilterAll},
	}
}

func (d *Deals) Load(ctx context.Context) error {
	return d.items.Run(ctx, d.notifier, resource.Action{Name: ActionLoad, Failure: "Failed to fetch deals"}, func(ctx context.Context) error {
		return fill(ctx, d.coll, d.items)
	})
}

func (d *Deals) Items() []models.Deal               { return d.items.Items() }
func (d *Deals) Find(id string) (models.Deal, bool) { return d.items.Find(id) }
func (d *Deals) Loading(action string) bool         { return d.items.Loading(action) }

func (d *Deals) Filter() DealFilter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter
}

func (d *Deals) SetFilter(f DealFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
}

func (d *Deals) SetSearch(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter.Search = q
}

// Visible applies the stage filter and the name/company search.
func (d *Deals) Visible() []models.Deal {
	f := d.Filter()
	var out []models.Deal
	for _, deal := range d.items.Items() {
		if matches(f.Search, deal.Name, deal.Company) && statusMatches(f.Stage, deal.Stage) {
			out = append(out, deal)
		}
	}
	return out
}

// Add creates a deal; every field is required.
func (d *Deals) Add(ctx context.Context, deal models.Deal) (models.Deal, error) {
	var created models.Deal
	err := d.items.Run(ctx, d.notifier, resource.Action{
		Name:    ActionAdd,
		Success: "New deal created successfully",
		Failure: "Failed to add deal",
	}, func(ctx context.Context) error {
		if err := models.ValidateNewDeal(deal); err != nil {
			return err
		}
		var err error
		created, err = d.coll.Create(ctx, deal)
		if err != nil {
			return err
		}
		if created.ID == "" {
			return fmt.Errorf("create deal: response has no id")
		}
		d.items.Append(created)
		return nil
	})
	return created, err
}

// Save sends the whole deal from the edit dialog.
func (d *Deals) Save(ctx context.Context, deal models.Deal) (models.Deal, error) {
	saved := deal
	err := d.items.Run(ctx, d.notifier, resource.Action{
		Name:    ActionSave,
		Success: "Deal updated successfully!",
		Failure: "Failed to update deal",
	}, func(ctx context.Context) error {
		out, err := d.coll.Update(ctx, deal.ID, deal)
		if err != nil {
			return err
		}
		if out.ID != "" {
			saved = out
		}
		d.items.Replace(saved)
		return nil
	})
	return saved, err
}

// UpdateStage persists an inline stage change.
func (d *Deals) UpdateStage(ctx context.Context, id, stage string) error {
	return d.items.Run(ctx, d.notifier, resource.Action{
		Name:    ActionStatus,
		Success: fmt.Sprintf("Deal moved to %s", stage),
		Failure: "Failed to update stage",
	}, func(ctx context.Context) error {
		if !models.InVocabulary(models.DealStages, stage) {
			return &models.ValidationError{Field: "stage", Message: fmt.Sprintf("unknown stage %q", stage)}
		}
		if err := d.coll.Patch(ctx, id, map[string]string{"stage": stage}); err != nil {
			return err
		}
		d.items.Modify(id, func(deal *models.Deal) { deal.Stage = stage })
		return nil
	})
}

func (d *Deals) Delete(ctx context.Context, id string) error {
	return d.items.Run(ctx, d.notifier, resource.Action{
		Name:    ActionDelete,
		Success: "Deal removed successfully!",
		Failure: "Failed to delete deal",
	}, func(ctx context.Context) error {
		if err := d.coll.Delete(ctx, id); err != nil {
			return err
		}
		d.items.Remove(id)
		return nil
	})
}

// Summary aggregates the loaded deals by stage.
func (d *Deals) Summary() []StageSummary {
	return SummarizeStages(d.items.Items())
}
