// ABOUTME: Client-side validation run before any create request is sent
// ABOUTME: Returns ValidationError values naming the first missing or invalid field
package models

import (
	"fmt"
	"strings"
)

// ValidationError is a client-side rejection; no request was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// Field describes one sidebar row. Custom rows are drawn by the sidebar itself.
type Field struct {
	Key    string
	Label  string
	Custom bool
}

var leadFields = []Field{
	{Key: "name", Label: "Name"},
	{Key: "company", Label: "Company"},
	{Key: "email", Label: "Email"},
	{Key: "phone", Label: "Phone"},
	{Key: "address", Label: "Address"},
	{Key: "website", Label: "Website"},
	{Key: "description", Label: "Description"},
	{Key: "channel", Label: "Channel"},
	{Key: "companySize", Label: "Company Size"},
	{Key: "niche", Label: "Niche"},
	{Key: "value", Label: "Value"},
	{Key: "assignee", Label: "Assignee", Custom: true},
}

var contactFields = []Field{
	{Key: "name", Label: "Name"},
	{Key: "company", Label: "Company"},
	{Key: "email", Label: "Email"},
	{Key: "phone", Label: "Phone"},
	{Key: "status", Label: "Status"},
}

// FieldsFor returns the sidebar field list for an entity type.
func FieldsFor(t EntityType) []Field {
	switch t {
	case EntityLead:
		return leadFields
	case EntityContact:
		return contactFields
	}
	return nil
}

// ValidateNewPerson checks the fields the Add dialog requires for leads and contacts.
func ValidateNewPerson(p Person) error {
	for _, f := range []struct{ name, value string }{
		{"name", p.Name},
		{"company", p.Company},
		{"email", p.Email},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if p.Status != "" && !InVocabulary(LeadStatuses, p.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", p.Status)}
	}
	return nil
}

// ValidateNewDeal requires every field.
func ValidateNewDeal(d Deal) error {
	if err := required("name", d.Name); err != nil {
		return err
	}
	if err := required("company", d.Company); err != nil {
		return err
	}
	if !InVocabulary(DealStages, d.Stage) {
		return &ValidationError{Field: "stage", Message: "is required"}
	}
	if d.Value <= 0 {
		return &ValidationError{Field: "value", Message: "is required"}
	}
	if d.Probability <= 0 || d.Probability > 100 {
		return &ValidationError{Field: "probability", Message: "must be between 1 and 100"}
	}
	if d.ExpectedCloseDate.IsZero() {
		return &ValidationError{Field: "expectedCloseDate", Message: "is required"}
	}
	return nil
}

// ValidateNewTask checks the title, vocabularies and the related entity.
func ValidateNewTask(t Task, idx RelatedIndex) error {
	if err := required("title", t.Title); err != nil {
		return err
	}
	if t.Priority != "" && !InVocabulary(Priorities, t.Priority) {
		return &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", t.Priority)}
	}
	if t.Status != "" && !InVocabulary(TaskStatuses, t.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", t.Status)}
	}
	if idx != nil {
		return t.Related.Validate(idx)
	}
	return nil
}

// ValidateNewMeeting checks the booking form.
func ValidateNewMeeting(m Meeting) error {
	if err := required("contactName", m.ContactName); err != nil {
		return err
	}
	if err := required("date", m.Date); err != nil {
		return err
	}
	if err := required("time", m.Time); err != nil {
		return err
	}
	if _, ok := m.Start(); !ok {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("unrecognized date %q", m.Date)}
	}
	if m.Duration != "" && !InVocabulary(MeetingDurations, m.Duration) {
		return &ValidationError{Field: "duration", Message: fmt.Sprintf("unknown duration %q", m.Duration)}
	}
	if m.Type != "" && !InVocabulary(MeetingTypes, m.Type) {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown meeting type %q", m.Type)}
	}
	return nil
}
