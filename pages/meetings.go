// ABOUTME: Meetings page controller: booking with vocabulary checks, type filter and search
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

type MeetingFilter struct {
	Type   string
	Search string
}

// Meetings controls the meetings page.
type Meetings struct {
	coll     *resource.Collection[models.Meeting]
	items    *resource.Store[models.Meeting]
	notifier api.Notifier
	logger   *log.Logger

	mu     sync.RWMutex
	filter MeetingFilter
}

func NewMeetings(opts Options) *Meetings {
	logger := opts.logger().With("page", models.EntityMeeting.Path())
	return &Meetings{
		coll:     resource.NewCollection[models.Meeting](opts.Gateway, models.EntityMeeting.Path()),
		items:    resource.NewStore(meetingID, logger),
		notifier: opts.notifier(),
		logger:   logger,
		filter:   MeetingFilter{Type: models.FilterAll},
	}
}

func (m *Meetings) Load(ctx context.Context) error {
	return m.items.Run(ctx, m.notifier, resource.Action{Name: ActionLoad, Failure: "Failed to fetch meetings"}, func(ctx context.Context) error {
		return fill(ctx, m.coll, m.items)
	})
}

func (m *Meetings) Items() []models.Meeting               { return m.items.Items() }
func (m *Meetings) Find(id string) (models.Meeting, bool) { return m.items.Find(id) }
func (m *Meetings) Loading(action string) bool            { return m.items.Loading(action) }

func (m *Meetings) Filter() MeetingFilter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

func (m *Meetings) SetFilter(f MeetingFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
}

func (m *Meetings) SetSearch(q string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter.Search = q
}

// Visible applies the type filter and the contact/company search.
func (m *Meetings) Visible() []models.Meeting {
	f := m.Filter()
	var out []models.Meeting
	for _, mt := range m.items.Items() {
		if matches(f.Search, mt.ContactName, mt.Company) && statusMatches(f.Type, mt.Type) {
			out = append(out, mt)
		}
	}
	return out
}

// Add books a meeting. New meetings are Pending and default to a 15 minute scheduled slot.
// The booked meeting goes to the front of the list.
func (m *Meetings) Add(ctx context.Context, mt models.Meeting) (models.Meeting, error) {
	if mt.Duration == "" {
		mt.Duration = models.MeetingDurations[0]
	}
	if mt.Type == "" {
		mt.Type = models.MeetingScheduled
	}
	mt.Status = models.MeetingPending

	var created models.Meeting
	err := m.items.Run(ctx, m.notifier, resource.Action{
		Name:    ActionAdd,
		Success: "Your meeting has been scheduled successfully",
		Failure: "Failed to schedule meeting",
	}, func(ctx context.Context) error {
		if err := models.ValidateNewMeeting(mt); err != nil {
			return err
		}
		var err error
		created, err = m.coll.Create(ctx, mt)
		if err != nil {
			return err
		}
		if created.ID == "" {
			return fmt.Errorf("create meeting: response has no id")
		}
		m.items.Prepend(created)
		return nil
	})
	return created, err
}

func (m *Meetings) Delete(ctx context.Context, id string) error {
	return m.items.Run(ctx, m.notifier, resource.Action{
		Name:    ActionDelete,
		Success: "Meeting cancelled.",
		Failure: "Failed to delete meeting",
	}, func(ctx context.Context) error {
		if err := m.coll.Delete(ctx, id); err != nil {
			return err
		}
		m.items.Remove(id)
		return nil
	})
}
