// ABOUTME: Tests for CRM data models
// ABOUTME: Validates lenient decoding, the RelatedEntity variant, vocabularies and field editing
package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadDecodesBackendPayload(t *testing.T) {
	payload := `{
		"_id": "l1",
		"name": "Ann",
		"company": "Acme",
		"email": "ann@acme.test",
		"status": "Qualified",
		"value": "1500",
		"assignee": {"_id": "u1", "name": "Sam"},
		"notes": ["called"],
		"reminders": [{"text": "follow up", "date": "2024-05-01T10:00:00.000Z"}],
		"createdAt": "2024-04-01T08:00:00Z"
	}`

	var lead Lead
	require.NoError(t, json.Unmarshal([]byte(payload), &lead))

	assert.Equal(t, "l1", lead.RecordID())
	assert.Equal(t, Number(1500), lead.Value)
	assert.Equal(t, Ref("u1"), lead.Assignee)
	assert.Equal(t, []string{"called"}, lead.Notes)

	first, ok := lead.FirstReminder()
	require.True(t, ok)
	assert.Equal(t, 2024, first.Year())

	created, ok := lead.RecordCreated()
	require.True(t, ok)
	assert.Equal(t, time.April, created.Month())
}

func TestTimestampAcceptsDateOnlyAndNull(t *testing.T) {
	var deal Deal
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","expectedCloseDate":"2024-06-30","createdAt":null}`), &deal))

	assert.Equal(t, "2024-06-30", deal.RecordField("expectedCloseDate"))
	_, ok := deal.RecordCreated()
	assert.False(t, ok)

	out, err := json.Marshal(deal)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "createdAt")
}

func TestTaskRelatedEntityWire(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Call","relatedTo":"d9","relatedModel":"Deal","status":"To Do"}`), &task))
	assert.Equal(t, RelatedDeal, task.Related.Kind())
	assert.Equal(t, "d9", task.Related.ID())

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"relatedTo":"d9"`)
	assert.Contains(t, string(out), `"relatedModel":"Deal"`)

	none := Task{Title: "Solo"}
	out, err = json.Marshal(none)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"relatedTo":null`)
	assert.NotContains(t, string(out), "relatedModel")
}

func TestTaskUnknownRelatedModelDecodesAsNone(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Odd","relatedTo":"x","relatedModel":"Invoice"}`), &task))
	assert.True(t, task.Related.IsNone())
}

type fakeIndex struct {
	leads map[string]bool
}

func (f fakeIndex) HasLead(id string) bool    { return f.leads[id] }
func (f fakeIndex) HasContact(id string) bool { return false }
func (f fakeIndex) HasDeal(id string) bool    { return false }

func TestRelatedEntityValidate(t *testing.T) {
	idx := fakeIndex{leads: map[string]bool{"l1": true}}

	assert.NoError(t, RelatedEntity{}.Validate(idx))
	assert.NoError(t, RelatedToLead("l1").Validate(idx))

	err := RelatedToContact("c1").Validate(idx)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "relatedTo", verr.Field)

	_, err = ParseRelated("Invoice", "x")
	assert.Error(t, err)
}

func TestNextTaskStatusCycles(t *testing.T) {
	assert.Equal(t, TaskInProgress, NextTaskStatus(TaskToDo))
	assert.Equal(t, TaskCompleted, NextTaskStatus(TaskInProgress))
	assert.Equal(t, TaskToDo, NextTaskStatus(TaskCompleted))
	assert.Equal(t, TaskToDo, NextTaskStatus("Blocked"))
}

func TestCycleWraps(t *testing.T) {
	assert.Equal(t, StatusNew, Cycle(LeadStatuses, StatusWon, 1))
	assert.Equal(t, StatusWon, Cycle(LeadStatuses, StatusNew, -1))
	assert.Equal(t, StatusNew, Cycle(LeadStatuses, "weird", 1))
}

func TestGroupHasOnly(t *testing.T) {
	g := Group{Members: []GroupMember{{MemberID: "a", Type: EntityLead}, {MemberID: "b", Type: EntityLead}}}
	assert.True(t, g.HasOnly(EntityLead))
	assert.False(t, g.HasOnly(EntityContact))

	g.Members = append(g.Members, GroupMember{MemberID: "c", Type: EntityContact})
	assert.False(t, g.HasOnly(EntityLead))
	assert.True(t, Group{}.HasOnly(EntityContact))
}

func TestPersonCloneIsDeep(t *testing.T) {
	p := Person{Name: "Ann", Notes: []string{"one"}}
	c := p.Clone()
	c.Notes[0] = "changed"
	c.Notes = append(c.Notes, "two")

	assert.Equal(t, []string{"one"}, p.Notes)
}

func TestPersonSetField(t *testing.T) {
	var p Person
	require.NoError(t, p.SetField("value", "$12,500"))
	assert.Equal(t, Number(12500), p.Value)

	require.NoError(t, p.SetField("status", StatusWon))
	assert.Error(t, p.SetField("status", "Lost"))
	assert.Equal(t, StatusWon, p.Status)

	assert.Error(t, p.SetField("createdAt", "2024-01-01"))
}

func TestValidateNewPersonRequiresNameCompanyEmail(t *testing.T) {
	err := ValidateNewPerson(Person{Name: "Ann", Company: "Acme"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "email"))

	assert.NoError(t, ValidateNewPerson(Person{Name: "Ann", Company: "Acme", Email: "a@acme.test"}))
}

func TestValidateNewDealRequiresEveryField(t *testing.T) {
	deal := Deal{
		Name:              "Renewal",
		Company:           "Acme",
		Stage:             StageProposal,
		Value:             1000,
		Probability:       40,
		ExpectedCloseDate: NewTimestamp(time.Now()),
	}
	assert.NoError(t, ValidateNewDeal(deal))

	deal.Stage = "Closed Lost"
	assert.Error(t, ValidateNewDeal(deal))
}

func TestValidateNewMeeting(t *testing.T) {
	m := Meeting{ContactName: "Ann", Date: "2024-05-02", Time: "14:30", Duration: "30 min", Type: MeetingVirtual}
	require.NoError(t, ValidateNewMeeting(m))

	start, ok := m.Start()
	require.True(t, ok)
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, 30, start.Minute())

	m.Duration = "90 min"
	assert.Error(t, ValidateNewMeeting(m))
}

func TestUserName(t *testing.T) {
	users := []User{{ID: "u1", Name: "Sam"}}
	assert.Equal(t, "Sam", UserName(users, "u1"))
	assert.Equal(t, "Unassigned", UserName(users, "u2"))
	assert.Equal(t, "Unassigned", UserName(users, ""))
}
