// ABOUTME: Process-wide UI preferences store that components subscribe to
// ABOUTME: Writes persist to a key-value backend and then fan out to every subscriber
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
)

// Key is where the preferences document lives in the backend.
var Key = []byte("crmtui:prefs")

// View names accepted for DefaultView and per-page views.
var Views = []string{"table", "kanban", "calendar", "board"}

// Prefs is the persisted preference document.
type Prefs struct {
	Layout      string            `json:"layout"`
	DefaultView string            `json:"defaultView"`
	PageViews   map[string]string `json:"pageViews,omitempty"`
}

// Defaults returns the preferences used before anything is saved.
func Defaults() Prefs {
	return Prefs{Layout: models.LayoutDefault, DefaultView: "table"}
}

func (p Prefs) clone() Prefs {
	c := p
	if p.PageViews != nil {
		c.PageViews = make(map[string]string, len(p.PageViews))
		for k, v := range p.PageViews {
			c.PageViews[k] = v
		}
	}
	return c
}

// View returns the remembered view for page, falling back to DefaultView.
func (p Prefs) View(page string) string {
	if v, ok := p.PageViews[page]; ok && v != "" {
		return v
	}
	return p.DefaultView
}

// Backend persists raw values. Get returns badger.ErrKeyNotFound for missing keys; both the
// local badger backend and charm kv do.
type Backend interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// Store holds the current preferences. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	prefs   Prefs
	subs    map[int]func(Prefs)
	nextID  int
	logger  *log.Logger
}

// Open loads preferences from backend. A nil backend keeps preferences in memory only.
func Open(backend Backend, logger *log.Logger) (*Store, error) {
	s := &Store{
		backend: backend,
		prefs:   Defaults(),
		subs:    make(map[int]func(Prefs)),
		logger:  logging.OrDiscard(logger),
	}
	if backend == nil {
		return s, nil
	}

	data, err := backend.Get(Key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	loaded := Defaults()
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("ignoring unreadable preferences", "err", err)
		return s, nil
	}
	s.prefs = normalize(loaded)
	return s, nil
}

func normalize(p Prefs) Prefs {
	d := Defaults()
	if !models.InVocabulary(models.Layouts, p.Layout) {
		p.Layout = d.Layout
	}
	if !models.InVocabulary(Views, p.DefaultView) {
		p.DefaultView = d.DefaultView
	}
	for page, v := range p.PageViews {
		if !models.InVocabulary(Views, v) {
			delete(p.PageViews, page)
		}
	}
	return p
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.clone()
}

func (s *Store) Layout() string {
	return s.Get().Layout
}

// SetLayout changes the sidebar layout preference.
func (s *Store) SetLayout(layout string) error {
	if !models.InVocabulary(models.Layouts, layout) {
		return &models.ValidationError{Field: "layout", Message: fmt.Sprintf("unknown layout %q", layout)}
	}
	return s.Update(func(p *Prefs) { p.Layout = layout })
}

// SetDefaultView changes the view pages open with.
func (s *Store) SetDefaultView(view string) error {
	if !models.InVocabulary(Views, view) {
		return &models.ValidationError{Field: "defaultView", Message: fmt.Sprintf("unknown view %q", view)}
	}
	return s.Update(func(p *Prefs) { p.DefaultView = view })
}

// SetPageView remembers the active view for one page.
func (s *Store) SetPageView(page, view string) error {
	if !models.InVocabulary(Views, view) {
		return &models.ValidationError{Field: "view", Message: fmt.Sprintf("unknown view %q", view)}
	}
	return s.Update(func(p *Prefs) {
		if p.PageViews == nil {
			p.PageViews = make(map[string]string)
		}
		p.PageViews[page] = view
	})
}

// Update applies fn, persists the result and notifies subscribers. When persisting fails the
// in-memory value still changes so the running UI stays consistent; the error is returned.
func (s *Store) Update(fn func(*Prefs)) error {
	s.mu.Lock()
	next := s.prefs.clone()
	fn(&next)
	next = normalize(next)
	s.prefs = next

	var persistErr error
	if s.backend != nil {
		data, err := json.Marshal(next)
		if err == nil {
			err = s.backend.Set(Key, data)
		}
		if err != nil {
			persistErr = fmt.Errorf("failed to save preferences: %w", err)
			s.logger.Warn("preferences not persisted", "err", err)
		}
	}

	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Prefs), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.clone())
	}
	return persistErr
}

// Subscribe registers fn for every change, in subscription order. Call the returned func to
// stop receiving changes.
func (s *Store) Subscribe(fn func(Prefs)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Watch delivers changes on a channel until ctx is done. Only the latest pending value is
// kept when the reader falls behind.
func (s *Store) Watch(ctx context.Context) <-chan Prefs {
	ch := make(chan Prefs, 1)
	var mu sync.Mutex
	closed := false

	unsubscribe := s.Subscribe(func(p Prefs) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		ch <- p
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}
