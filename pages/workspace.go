// ABOUTME: Workspace bundles one controller per page over a shared gateway
// ABOUTME: Used by the TUI shell, the CLI and the MCP tools alike
package pages

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Workspace struct {
	Leads    *People
	Contacts *People
	Deals    *Deals
	Tasks    *Tasks
	Groups   *Groups
	Meetings *Meetings
}

func NewWorkspace(opts Options) *Workspace {
	return &Workspace{
		Leads:    NewLeads(opts),
		Contacts: NewContacts(opts),
		Deals:    NewDeals(opts),
		Tasks:    NewTasks(opts),
		Groups:   NewGroups(opts),
		Meetings: NewMeetings(opts),
	}
}

// LoadAll refreshes every collection. Each controller reports its own failure, so one bad
// endpoint does not cancel the others; the first error is returned.
func (w *Workspace) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	for _, load := range []func(context.Context) error{
		w.Leads.Load, w.Contacts.Load, w.Deals.Load, w.Tasks.Load, w.Meetings.Load, w.Groups.Load,
	} {
		g.Go(func() error { return load(ctx) })
	}
	return g.Wait()
}

// Totals counts the loaded collections.
func (w *Workspace) Totals() Totals {
	return ComputeTotals(w.Leads.Items(), w.Contacts.Items(), w.Deals.Items(), w.Tasks.Items(), w.Meetings.Items())
}
