// ABOUTME: Tagged RelatedEntity variant for task links to leads, contacts and deals
// ABOUTME: Encodes to and from the backend's relatedTo/relatedModel field pair
package models

import (
	"encoding/json"
	"fmt"
)

// RelatedKind tags a RelatedEntity. The zero value means no relation.
type RelatedKind int

const (
	RelatedNone RelatedKind = iota
	RelatedLead
	RelatedContact
	RelatedDeal
)

var relatedModels = map[RelatedKind]string{
	RelatedLead:    "Lead",
	RelatedContact: "Contact",
	RelatedDeal:    "Deal",
}

// RelatedEntity is Lead(id) | Contact(id) | Deal(id) | None.
type RelatedEntity struct {
	kind RelatedKind
	id   string
}

func RelatedToLead(id string) RelatedEntity    { return RelatedEntity{kind: RelatedLead, id: id} }
func RelatedToContact(id string) RelatedEntity { return RelatedEntity{kind: RelatedContact, id: id} }
func RelatedToDeal(id string) RelatedEntity    { return RelatedEntity{kind: RelatedDeal, id: id} }

func (r RelatedEntity) Kind() RelatedKind { return r.kind }
func (r RelatedEntity) ID() string        { return r.id }
func (r RelatedEntity) IsNone() bool      { return r.kind == RelatedNone }

// Model returns the backend model name ("Lead", "Contact", "Deal") or "" for None.
func (r RelatedEntity) Model() string {
	return relatedModels[r.kind]
}

func (r RelatedEntity) String() string {
	if r.IsNone() {
		return "None"
	}
	return fmt.Sprintf("%s(%s)", r.Model(), r.id)
}

// ParseRelated builds a RelatedEntity from the wire pair. An empty model or id yields None.
func ParseRelated(model, id string) (RelatedEntity, error) {
	if model == "" || id == "" {
		return RelatedEntity{}, nil
	}
	for kind, name := range relatedModels {
		if name == model {
			return RelatedEntity{kind: kind, id: id}, nil
		}
	}
	return RelatedEntity{}, &ValidationError{Field: "relatedModel", Message: fmt.Sprintf("unknown related model %q", model)}
}

// RelatedIndex answers whether an id exists for each related kind.
type RelatedIndex interface {
	HasLead(id string) bool
	HasContact(id string) bool
	HasDeal(id string) bool
}

// Validate checks that a non-None relation points at a loaded record.
func (r RelatedEntity) Validate(idx RelatedIndex) error {
	var ok bool
	switch r.kind {
	case RelatedNone:
		return nil
	case RelatedLead:
		ok = idx.HasLead(r.id)
	case RelatedContact:
		ok = idx.HasContact(r.id)
	case RelatedDeal:
		ok = idx.HasDeal(r.id)
	}
	if !ok {
		return &ValidationError{Field: "relatedTo", Message: fmt.Sprintf("%s %s not found", r.Model(), r.id)}
	}
	return nil
}

// Ref is an id reference that may arrive as a bare id, a populated object or null.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = Ref(obj.ID)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Ref(s)
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

type taskWire struct {
	ID           string    `json:"_id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	DueDate      Timestamp `json:"dueDate,omitzero"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	RelatedTo    Ref       `json:"relatedTo"`
	RelatedModel string    `json:"relatedModel,omitempty"`
	AssignedTo   Ref       `json:"assignedTo"`
	CreatedAt    Timestamp `json:"createdAt,omitzero"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	w := taskWire{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
	}
	if !t.Related.IsNone() {
		w.RelatedTo = Ref(t.Related.ID())
		w.RelatedModel = t.Related.Model()
	}
	return json.Marshal(w)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	related, err := ParseRelated(w.RelatedModel, string(w.RelatedTo))
	if err != nil {
		// Unknown models decode as None so a bad record never breaks the whole list.
		related = RelatedEntity{}
	}
	*t = Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		DueDate:     w.DueDate,
		Priority:    w.Priority,
		Status:      w.Status,
		Related:     related,
		AssignedTo:  w.AssignedTo,
		CreatedAt:   w.CreatedAt,
	}
	return nil
}
