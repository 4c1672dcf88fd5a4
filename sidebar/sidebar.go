// ABOUTME: Detail panel state machine for one lead or contact: viewing, editing, confirming delete
// ABOUTME: Save, status, assign, note and reminder each persist with one update request
package sidebar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
)

// State is the panel's user-visible mode.
type State int

const (
	StateViewing State = iota
	StateEditing
	StateConfirmDelete
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	case StateConfirmDelete:
		return "confirm-delete"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	// ErrNotEditing is returned by draft operations outside edit mode.
	ErrNotEditing = errors.New("not editing")
	// ErrAssignDisabled is returned when the selected assignee is empty or unchanged.
	ErrAssignDisabled = errors.New("assignee unchanged")
	// ErrLeadOnly is returned for status, note and reminder actions on other entity types.
	ErrLeadOnly = errors.New("only available for leads")
	// ErrClosed is returned once the record has been deleted.
	ErrClosed = errors.New("panel closed")
)

// Persister writes the panel's record back. The page controller implements it and replaces
// or drops its own copy on success.
type Persister interface {
	Save(ctx context.Context, p models.Person) (models.Person, error)
	Delete(ctx context.Context, id string) error
}

// Sidebar holds one record. Methods are safe to call from tea.Cmd goroutines; the lock is
// released while a request is in flight.
type Sidebar struct {
	mu sync.Mutex

	entity  models.EntityType
	record  models.Person
	draft   *models.Person
	state   State
	before  State
	persist Persister
	users   []models.User
	pick    models.Ref
	busy    bool
	logger  *log.Logger
}

// New opens the panel in viewing state.
func New(entity models.EntityType, record models.Person, persist Persister, users []models.User, logger *log.Logger) *Sidebar {
	return &Sidebar{
		entity:  entity,
		record:  record.Clone(),
		state:   StateViewing,
		persist: persist,
		users:   append([]models.User(nil), users...),
		pick:    record.Assignee,
		logger:  logging.OrDiscard(logger),
	}
}

func (s *Sidebar) Entity() models.EntityType { return s.entity }

func (s *Sidebar) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Record returns the last persisted copy.
func (s *Sidebar) Record() models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Draft returns the working copy while editing.
func (s *Sidebar) Draft() (models.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return models.Person{}, false
	}
	return s.draft.Clone(), true
}

// Busy reports whether a request is in flight.
func (s *Sidebar) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Fields returns the rows for this entity type.
func (s *Sidebar) Fields() []models.Field {
	return models.FieldsFor(s.entity)
}

// LeadSections reports whether notes, reminders and status controls are shown.
func (s *Sidebar) LeadSections() bool {
	return s.entity == models.EntityLead
}

func (s *Sidebar) Users() []models.User {
	return append([]models.User(nil), s.users...)
}

// AssigneeName resolves the persisted assignee to a display name.
func (s *Sidebar) AssigneeName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.UserName(s.users, s.record.Assignee)
}

// BeginEdit clones the persisted record into a working copy.
func (s *Sidebar) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return ErrClosed
	case StateEditing:
		return nil
	}
	d := s.record.Clone()
	s.draft = &d
	s.state = StateEditing
	return nil
}

// CancelEdit discards the working copy.
func (s *Sidebar) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return
	}
	s.draft = nil
	s.state = StateViewing
}

// SetDraftField edits one field of the working copy.
func (s *Sidebar) SetDraftField(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNotEditing
	}
	return s.draft.SetField(key, value)
}

// Save sends the whole working copy. On failure the draft and edit state are kept.
func (s *Sidebar) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return ErrNotEditing
	}
	body := s.draft.Clone()
	s.busy = true
	s.mu.Unlock()

	saved, err := s.persist.Save(ctx, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.logger.Warn("save failed; keeping draft", "id", body.ID, "err", err)
		return err
	}
	s.record = saved.Clone()
	s.draft = nil
	if s.state == StateEditing {
		s.state = StateViewing
	}
	return nil
}

// commit persists a change built from the persisted record and applies the response.
// An open draft gets the same change so a later save does not undo it.
func (s *Sidebar) commit(ctx context.Context, change func(*models.Person)) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	body := s.record.Clone()
	change(&body)
	s.busy = true
	s.mu.Unlock()

	saved, err := s.persist.Save(ctx, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return err
	}
	s.record = saved.Clone()
	if s.draft != nil {
		change(s.draft)
	}
	return nil
}

// ChangeStatus persists a new lead status immediately, in any state.
func (s *Sidebar) ChangeStatus(ctx context.Context, status string) error {
	if !s.LeadSections() {
		return ErrLeadOnly
	}
	if !models.InVocabulary(models.LeadStatuses, status) {
		return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return s.commit(ctx, func(p *models.Person) { p.Status = status })
}

// SelectAssignee sets the picker selection without persisting.
func (s *Sidebar) SelectAssignee(id models.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pick = id
}

// CycleAssignee moves the picker through the user list.
func (s *Sidebar) CycleAssignee(step int) models.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.users))
	for i, u := range s.users {
		ids[i] = u.ID
	}
	s.pick = models.Ref(models.Cycle(ids, string(s.pick), step))
	return s.pick
}

// Selection returns the picker's current user.
func (s *Sidebar) Selection() models.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pick
}

// CanAssign reports whether Assign would issue a request.
func (s *Sidebar) CanAssign() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canAssignLocked()
}

func (s *Sidebar) canAssignLocked() bool {
	return s.state != StateClosed && !s.busy && s.pick != "" && s.pick != s.record.Assignee
}

// Assign persists the picker selection. It is disabled while the selection matches.
func (s *Sidebar) Assign(ctx context.Context) error {
	s.mu.Lock()
	if !s.canAssignLocked() {
		s.mu.Unlock()
		return ErrAssignDisabled
	}
	pick := s.pick
	s.mu.Unlock()
	return s.commit(ctx, func(p *models.Person) { p.Assignee = pick })
}

// AddNote appends a non-empty note.
func (s *Sidebar) AddNote(ctx context.Context, text string) error {
	if !s.LeadSections() {
		return ErrLeadOnly
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &models.ValidationError{Field: "note", Message: "is required"}
	}
	return s.commit(ctx, func(p *models.Person) { p.Notes = append(p.Notes, text) })
}

// AddReminder appends a reminder; both text and date are required.
func (s *Sidebar) AddReminder(ctx context.Context, text string, at time.Time) error {
	if !s.LeadSections() {
		return ErrLeadOnly
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &models.ValidationError{Field: "reminder", Message: "is required"}
	}
	if at.IsZero() {
		return &models.ValidationError{Field: "date", Message: "is required"}
	}
	r := models.Reminder{Text: text, Date: models.NewTimestamp(at)}
	return s.commit(ctx, func(p *models.Person) { p.Reminders = append(p.Reminders, r) })
}

// RequestDelete opens the confirmation step.
func (s *Sidebar) RequestDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConfirmDelete || s.state == StateClosed {
		return
	}
	s.before = s.state
	s.state = StateConfirmDelete
}

// CancelDelete dismisses the confirmation and returns to the previous state.
func (s *Sidebar) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConfirmDelete {
		s.state = s.before
	}
}

// ConfirmDelete issues the delete. Success closes the panel; failure dismisses the
// confirmation and keeps whatever state came before it.
func (s *Sidebar) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConfirmDelete {
		s.mu.Unlock()
		return errors.New("delete not confirmed")
	}
	id := s.record.ID
	s.busy = true
	s.mu.Unlock()

	err := s.persist.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.state = s.before
		return err
	}
	s.state = StateClosed
	s.draft = nil
	return nil
}
