// ABOUTME: Data models for CRM entities owned by the remote backend
// ABOUTME: Defines Lead, Contact, Deal, Task, Group, Meeting, User and supporting records
package models

import (
	"strings"
	"time"
)

// EntityType discriminates backend resources. Its value is the singular path segment.
type EntityType string

const (
	EntityLead    EntityType = "lead"
	EntityContact EntityType = "contact"
	EntityDeal    EntityType = "deal"
	EntityTask    EntityType = "task"
	EntityGroup   EntityType = "group"
	EntityMeeting EntityType = "meeting"
	EntityUser    EntityType = "user"
)

// Path returns the collection path for the entity type, e.g. /api/leads.
func (t EntityType) Path() string {
	return "/api/" + string(t) + "s"
}

// Label returns a capitalized display name.
func (t EntityType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

type Reminder struct {
	Text string    `json:"text"`
	Date Timestamp `json:"date"`
}

// Person holds the fields shared by leads and contacts.
type Person struct {
	ID          string     `json:"_id,omitempty"`
	Name        string     `json:"name"`
	Company     string     `json:"company"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Website     string     `json:"website,omitempty"`
	Description string     `json:"description,omitempty"`
	Channel     string     `json:"channel,omitempty"`
	CompanySize string     `json:"companySize,omitempty"`
	Niche       string     `json:"niche,omitempty"`
	Status      string     `json:"status,omitempty"`
	Value       Number     `json:"value"`
	Assignee    Ref        `json:"assignee"`
	Notes       []string   `json:"notes,omitempty"`
	Reminders   []Reminder `json:"reminders,omitempty"`
	CreatedAt   Timestamp  `json:"createdAt,omitzero"`
}

type Lead struct {
	Person
}

type Contact struct {
	Person
}

type Deal struct {
	ID                string    `json:"_id,omitempty"`
	Name              string    `json:"name"`
	Company           string    `json:"company"`
	Stage             string    `json:"stage"`
	Value             Number    `json:"value"`
	Probability       Number    `json:"probability"`
	ExpectedCloseDate Timestamp `json:"expectedCloseDate,omitzero"`
	CreatedAt         Timestamp `json:"createdAt,omitzero"`
}

type Task struct {
	ID          string        `json:"_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	DueDate     Timestamp     `json:"dueDate,omitzero"`
	Priority    string        `json:"priority"`
	Status      string        `json:"status"`
	Related     RelatedEntity `json:"-"`
	AssignedTo  Ref           `json:"assignedTo"`
	CreatedAt   Timestamp     `json:"createdAt,omitzero"`
}

type GroupMember struct {
	MemberID string     `json:"memberId"`
	Type     EntityType `json:"type"`
}

type Group struct {
	ID        string        `json:"_id,omitempty"`
	Name      string        `json:"name"`
	Members   []GroupMember `json:"members"`
	CreatedAt Timestamp     `json:"createdAt,omitzero"`
}

// MemberIDs returns the member ids in group order.
func (g Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.MemberID)
	}
	return ids
}

// HasOnly reports whether every member has the given type. Empty groups qualify.
func (g Group) HasOnly(t EntityType) bool {
	for _, m := range g.Members {
		if m.Type != t {
			return false
		}
	}
	return true
}

type Meeting struct {
	ID          string    `json:"_id,omitempty"`
	ContactName string    `json:"contactName"`
	Company     string    `json:"company,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Duration    string    `json:"duration"`
	Type        string    `json:"type"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   Timestamp `json:"createdAt,omitzero"`
}

// Start combines Date and Time in the local zone. It reports false when the date does not parse.
func (m Meeting) Start() (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", m.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	if m.Time == "" {
		return day, true
	}
	clock, err := time.Parse("15:04", m.Time)
	if err != nil {
		return day, true
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), true
}

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UserName resolves a user id to a display name.
func UserName(users []User, id Ref) string {
	if id == "" {
		return "Unassigned"
	}
	for _, u := range users {
		if u.ID == string(id) {
			return u.Name
		}
	}
	return "Unassigned"
}

type Notification struct {
	ID        string    `json:"_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ItemID    string    `json:"itemId,omitempty"`
	CreatedAt Timestamp `json:"createdAt,omitzero"`
}

// Title mirrors the heading the web client shows for each notification type.
func (n Notification) Title() string {
	if n.Type == "task" {
		return "New Task Assigned"
	}
	return "New Lead Assigned"
}

type InboxEmail struct {
	MessageID string    `json:"messageId,omitempty"`
	From      string    `json:"from"`
	To        string    `json:"to,omitempty"`
	Subject   string    `json:"subject"`
	Snippet   string    `json:"snippet,omitempty"`
	Date      Timestamp `json:"date,omitzero"`
}

type Inbox struct {
	Emails         []InboxEmail `json:"emails"`
	NewEmailsCount int          `json:"newEmailsCount"`
}

type NotificationSettings struct {
	EmailAlerts         bool `json:"emailAlerts"`
	TaskReminders       bool `json:"taskReminders"`
	LeadAssignments     bool `json:"leadAssignments"`
	SystemAnnouncements bool `json:"systemAnnouncements"`
}

type ThemeSettings struct {
	DarkMode      bool   `json:"darkMode"`
	SidebarLayout string `json:"sidebarLayout"`
	DashboardView string `json:"dashboardView"`
}

type Settings struct {
	Notifications NotificationSettings `json:"notifications"`
	Theme         ThemeSettings        `json:"theme"`
}

// DefaultSettings matches the values a fresh account starts with.
func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{
			EmailAlerts:     true,
			TaskReminders:   true,
			LeadAssignments: true,
		},
		Theme: ThemeSettings{
			SidebarLayout: LayoutDefault,
			DashboardView: "grid",
		},
	}
}
