// ABOUTME: Authoritative in-memory copy of one collection plus per-action loading flags
// ABOUTME: Run wraps every mutating action: set loading, call, notify, always clear loading
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
)

// MessageMissingFields is shown for client-side validation failures.
const MessageMissingFields = "Please fill in all required fields"

// Store holds records of type T keyed by id. It is safe for concurrent use.
type Store[T any] struct {
	mu      sync.RWMutex
	items   []T
	id      func(T) string
	loading map[string]bool
	loaded  bool
	logger  *log.Logger
}

// NewStore returns an empty store. id extracts a record's identity.
func NewStore[T any](id func(T) string, logger *log.Logger) *Store[T] {
	return &Store[T]{
		items:   []T{},
		id:      id,
		loading: make(map[string]bool),
		logger:  logging.OrDiscard(logger),
	}
}

// Items returns a copy of the records in their current order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loaded reports whether Set has been called at least once.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Set replaces every record.
func (s *Store[T]) Set(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T(nil), items...)
	s.loaded = true
}

// Append adds records at the end.
func (s *Store[T]) Append(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Prepend adds records at the front.
func (s *Store[T]) Prepend(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(append([]T(nil), items...), s.items...)
}

// Find returns the record with id.
func (s *Store[T]) Find(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if s.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether a record with id is held.
func (s *Store[T]) Has(id string) bool {
	_, ok := s.Find(id)
	return ok
}

// Replace swaps in item for the record with the same id. It reports false when absent.
func (s *Store[T]) Replace(item T) bool {
	return s.Modify(s.id(item), func(cur *T) { *cur = item })
}

// Modify applies fn to the record with id in place. It reports false when absent.
func (s *Store[T]) Modify(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.id(s.items[i]) == id {
			fn(&s.items[i])
			return true
		}
	}
	return false
}

// Remove drops the record with id. It reports false when absent.
func (s *Store[T]) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.id(s.items[i]) == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every record.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []T{}
}

// Loading reports whether the named action is in flight.
func (s *Store[T]) Loading(action string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[action]
}

// Busy reports whether any action is in flight.
func (s *Store[T]) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, on := range s.loading {
		if on {
			return true
		}
	}
	return false
}

func (s *Store[T]) setLoading(action string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.loading[action] = true
		return
	}
	delete(s.loading, action)
}

// Action names a mutating operation and the notices it raises.
type Action struct {
	Name    string // loading flag key, e.g. "delete-all"
	Success string // success notice; empty means none
	Failure string // failure notice; empty means the generic load failure message
}

// Run executes fn as action: the loading flag is set for its duration, fn gets a quiet
// context so the gateway does not add its own generic notice, and exactly one success or
// failure notice is raised. Session expiry is left to the gateway's own notice.
func (s *Store[T]) Run(ctx context.Context, n api.Notifier, a Action, fn func(ctx context.Context) error) error {
	s.setLoading(a.Name, true)
	defer s.setLoading(a.Name, false)

	err := fn(api.Quiet(ctx))
	if err == nil {
		if a.Success != "" {
			n.Notify(api.Notice{Kind: api.NoticeSuccess, Message: a.Success})
		}
		return nil
	}

	s.logger.Warn("action failed", "action", a.Name, "err", err)

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		n.Notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: MessageMissingFields + ": " + verr.Error()})
	case api.IsUnauthorized(err):
		// the gateway already raised the session-expired notice
	default:
		n.Notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: FailureMessage(a, err)})
	}
	return err
}

// FailureMessage names the attempted action and appends the backend's reason when present.
func FailureMessage(a Action, err error) string {
	msg := a.Failure
	if msg == "" {
		msg = api.MessageLoadFailed
	}
	if reason := api.Message(err); reason != "" {
		return fmt.Sprintf("%s: %s", msg, reason)
	}
	return msg
}
