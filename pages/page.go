// ABOUTME: Shared pieces of the page controllers: filters, search matching and action names
// ABOUTME: Every controller holds resource.Stores and routes mutations through Store.Run
package pages

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/resource"
)

// GroupAll is the group filter value that shows the whole collection.
const GroupAll = "all"

// Loading flag names shared by the controllers.
const (
	ActionLoad      = "load"
	ActionAdd       = "add"
	ActionSave      = "save"
	ActionDelete    = "delete"
	ActionDeleteAll = "delete-all"
	ActionStatus    = "status"
	ActionImport    = "import"
	ActionToggle    = "toggle"
	ActionMembers   = "members"
)

// Options are shared by every controller constructor.
type Options struct {
	Gateway resource.Gateway
	Logger  *log.Logger
}

func (o Options) logger() *log.Logger {
	return logging.OrDiscard(o.Logger)
}

func (o Options) notifier() api.Notifier {
	if n := o.Gateway.Notifier(); n != nil {
		return n
	}
	return api.NotifierFunc(func(api.Notice) {})
}

// matches reports whether any value contains query, ignoring case. An empty query matches.
func matches(query string, values ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

// statusMatches treats "" and FilterAll as no filter.
func statusMatches(filter, status string) bool {
	return filter == "" || filter == models.FilterAll || filter == status
}

func personID(p models.Person) string   { return p.ID }
func groupID(g models.Group) string     { return g.ID }
func userID(u models.User) string       { return u.ID }
func dealID(d models.Deal) string       { return d.ID }
func taskID(t models.Task) string       { return t.ID }
func meetingID(m models.Meeting) string { return m.ID }

// resolveMembers maps member ids through find in group order, dropping ids that no longer
// resolve. Each dropped id is logged.
func resolveMembers[T any](g models.Group, find func(id string) (T, bool), logger *log.Logger) []T {
	out := make([]T, 0, len(g.Members))
	for _, m := range g.Members {
		item, ok := find(m.MemberID)
		if !ok {
			logger.Debug("dropping stale group member", "group", g.ID, "member", m.MemberID, "type", m.Type)
			continue
		}
		out = append(out, item)
	}
	return out
}
