// ABOUTME: Display accessors shared by every renderer and the detail sidebar
// ABOUTME: Each entity exposes id, title, subtitle, status, named fields and its timestamps
package models

import (
	"fmt"
	"strings"
	"time"
)

func formatDate(t Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatNumber(n Number) string {
	if n == 0 {
		return ""
	}
	return n.String()
}

func (p Person) RecordID() string       { return p.ID }
func (p Person) RecordTitle() string    { return p.Name }
func (p Person) RecordStatus() string   { return p.Status }
func (p Person) RecordSubtitle() string { return firstNonEmpty(p.Company, p.Description) }

func (p Person) RecordCreated() (time.Time, bool) {
	return p.CreatedAt.Time, !p.CreatedAt.IsZero()
}

// FirstReminder returns the date of the first reminder in list order.
func (p Person) FirstReminder() (time.Time, bool) {
	for _, r := range p.Reminders {
		if !r.Date.IsZero() {
			return r.Date.Time, true
		}
	}
	return time.Time{}, false
}

// RecordField returns the display value for a column or sidebar key.
func (p Person) RecordField(key string) string {
	switch key {
	case "name":
		return p.Name
	case "company":
		return p.Company
	case "email":
		return p.Email
	case "phone":
		return p.Phone
	case "address":
		return p.Address
	case "website":
		return p.Website
	case "description":
		return p.Description
	case "channel":
		return p.Channel
	case "companySize":
		return p.CompanySize
	case "niche":
		return p.Niche
	case "status":
		return p.Status
	case "value":
		return formatNumber(p.Value)
	case "assignee":
		return string(p.Assignee)
	case "createdAt":
		return formatDate(p.CreatedAt)
	}
	return ""
}

// SetField assigns a user-entered value by key.
func (p *Person) SetField(key, value string) error {
	switch key {
	case "name":
		p.Name = value
	case "company":
		p.Company = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "address":
		p.Address = value
	case "website":
		p.Website = value
	case "description":
		p.Description = value
	case "channel":
		p.Channel = value
	case "companySize":
		p.CompanySize = value
	case "niche":
		p.Niche = value
	case "status":
		if value != "" && !InVocabulary(LeadStatuses, value) {
			return &ValidationError{Field: key, Message: fmt.Sprintf("unknown status %q", value)}
		}
		p.Status = value
	case "value":
		n, err := ParseNumber(value)
		if err != nil {
			return &ValidationError{Field: key, Message: err.Error()}
		}
		p.Value = n
	case "assignee":
		p.Assignee = Ref(value)
	default:
		return &ValidationError{Field: key, Message: "field is not editable"}
	}
	return nil
}

// Clone returns a deep copy, so edits to the copy never touch the original slices.
func (p Person) Clone() Person {
	c := p
	c.Notes = append([]string(nil), p.Notes...)
	c.Reminders = append([]Reminder(nil), p.Reminders...)
	return c
}

func (d Deal) RecordID() string       { return d.ID }
func (d Deal) RecordTitle() string    { return d.Name }
func (d Deal) RecordSubtitle() string { return d.Company }
func (d Deal) RecordStatus() string   { return d.Stage }

func (d Deal) RecordCreated() (time.Time, bool) {
	return d.CreatedAt.Time, !d.CreatedAt.IsZero()
}

func (d Deal) DueAt() (time.Time, bool) {
	return d.ExpectedCloseDate.Time, !d.ExpectedCloseDate.IsZero()
}

func (d Deal) RecordField(key string) string {
	switch key {
	case "name":
		return d.Name
	case "company":
		return d.Company
	case "stage":
		return d.Stage
	case "value":
		return formatNumber(d.Value)
	case "probability":
		if d.Probability == 0 {
			return ""
		}
		return d.Probability.String() + "%"
	case "expectedCloseDate":
		return formatDate(d.ExpectedCloseDate)
	case "createdAt":
		return formatDate(d.CreatedAt)
	}
	return ""
}

func (t Task) RecordID() string       { return t.ID }
func (t Task) RecordTitle() string    { return t.Title }
func (t Task) RecordSubtitle() string { return t.Description }
func (t Task) RecordStatus() string   { return t.Status }

func (t Task) RecordCreated() (time.Time, bool) {
	return t.CreatedAt.Time, !t.CreatedAt.IsZero()
}

func (t Task) DueAt() (time.Time, bool) {
	return t.DueDate.Time, !t.DueDate.IsZero()
}

func (t Task) RecordField(key string) string {
	switch key {
	case "title":
		return t.Title
	case "description":
		return t.Description
	case "dueDate":
		return formatDate(t.DueDate)
	case "priority":
		return t.Priority
	case "status":
		return t.Status
	case "relatedTo":
		if t.Related.IsNone() {
			return ""
		}
		return t.Related.String()
	case "assignedTo":
		return string(t.AssignedTo)
	case "createdAt":
		return formatDate(t.CreatedAt)
	}
	return ""
}

func (m Meeting) RecordID() string       { return m.ID }
func (m Meeting) RecordTitle() string    { return m.ContactName }
func (m Meeting) RecordSubtitle() string { return firstNonEmpty(m.Company, m.Notes) }
func (m Meeting) RecordStatus() string   { return m.Status }

func (m Meeting) RecordCreated() (time.Time, bool) {
	return m.CreatedAt.Time, !m.CreatedAt.IsZero()
}

func (m Meeting) DueAt() (time.Time, bool) {
	return m.Start()
}

func (m Meeting) RecordField(key string) string {
	switch key {
	case "contactName":
		return m.ContactName
	case "company":
		return m.Company
	case "date":
		return m.Date
	case "time":
		return m.Time
	case "duration":
		return m.Duration
	case "type":
		return m.Type
	case "notes":
		return m.Notes
	case "status":
		return m.Status
	}
	return ""
}

func (g Group) RecordID() string     { return g.ID }
func (g Group) RecordTitle() string  { return g.Name }
func (g Group) RecordStatus() string { return "" }

func (g Group) RecordSubtitle() string {
	if len(g.Members) == 1 {
		return "1 member"
	}
	return fmt.Sprintf("%d members", len(g.Members))
}

func (g Group) RecordCreated() (time.Time, bool) {
	return g.CreatedAt.Time, !g.CreatedAt.IsZero()
}

func (g Group) RecordField(key string) string {
	switch key {
	case "name":
		return g.Name
	case "members":
		return g.RecordSubtitle()
	case "type":
		if len(g.Members) == 0 {
			return ""
		}
		return string(g.Members[0].Type)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
