// ABOUTME: Fixed vocabularies for statuses, stages, priorities and meeting options
// ABOUTME: Rendering and filtering always go through these ordered lists
package models

import "slices"

// Lead and contact statuses, in pipeline order.
const (
	StatusNew         = "New"
	StatusContacted   = "Contacted"
	StatusQualified   = "Qualified"
	StatusProposal    = "Proposal"
	StatusNegotiation = "Negotiation"
	StatusWon         = "Won"
)

var LeadStatuses = []string{StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusNegotiation, StatusWon}

// Deal stages.
const (
	StageLeadIn        = "Lead In"
	StageQualification = "Qualification"
	StageProposal      = "Proposal"
	StageNegotiation   = "Negotiation"
	StageClosedWon     = "Closed Won"
)

var DealStages = []string{StageLeadIn, StageQualification, StageProposal, StageNegotiation, StageClosedWon}

// Task statuses, in toggle order.
const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

var TaskStatuses = []string{TaskToDo, TaskInProgress, TaskCompleted}

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

var MeetingDurations = []string{"15 min", "30 min", "45 min", "60 min"}

const (
	MeetingScheduled = "Scheduled"
	MeetingInPerson  = "In-person"
	MeetingVirtual   = "Virtual"
)

var MeetingTypes = []string{MeetingScheduled, MeetingInPerson, MeetingVirtual}

// MeetingPending is the status assigned to newly booked meetings.
const MeetingPending = "Pending"

// Sidebar layout preferences.
const (
	LayoutDefault   = "default"
	LayoutCollapsed = "collapsed"
	LayoutHidden    = "hidden"
)

var Layouts = []string{LayoutDefault, LayoutCollapsed, LayoutHidden}

// FilterAll is the sentinel for "no filter" in status, stage and type pickers.
const FilterAll = "All"

// InVocabulary reports whether v is one of vocab.
func InVocabulary(vocab []string, v string) bool {
	return slices.Contains(vocab, v)
}

// NextTaskStatus advances a task status one step, wrapping Completed back to To Do.
// Unknown statuses restart the cycle.
func NextTaskStatus(current string) string {
	i := slices.Index(TaskStatuses, current)
	if i < 0 {
		return TaskToDo
	}
	return TaskStatuses[(i+1)%len(TaskStatuses)]
}

// Cycle returns the element after current in vocab, wrapping. Used by pickers.
func Cycle(vocab []string, current string, step int) string {
	if len(vocab) == 0 {
		return current
	}
	i := slices.Index(vocab, current)
	if i < 0 {
		if step < 0 {
			return vocab[len(vocab)-1]
		}
		return vocab[0]
	}
	n := len(vocab)
	return vocab[((i+step)%n+n)%n]
}
