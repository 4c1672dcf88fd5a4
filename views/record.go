// ABOUTME: The record interface every renderer draws, plus recency ordering
// ABOUTME: Missing timestamps sort as "now" and each defaulted record is logged
package views

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// Record is what renderers need from an entity. models.Lead, Contact, Deal, Task, Group and
// Meeting all satisfy it.
type Record interface {
	RecordID() string
	RecordTitle() string
	RecordSubtitle() string
	RecordStatus() string
	RecordField(key string) string
	RecordCreated() (time.Time, bool)
}

type reminderer interface {
	FirstReminder() (time.Time, bool)
}

type dueDater interface {
	DueAt() (time.Time, bool)
}

// Records converts a typed slice for the renderers.
func Records[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// SortByRecency returns a copy ordered newest first. A record with no creation time sorts
// as now, so it floats to the top; that defaulting is logged at debug level.
func SortByRecency(records []Record, now time.Time, logger *log.Logger) []Record {
	type keyed struct {
		r  Record
		at time.Time
	}
	ks := make([]keyed, len(records))
	for i, r := range records {
		at, ok := r.RecordCreated()
		if !ok {
			if logger != nil {
				logger.Debug("record has no createdAt; sorting as now", "id", r.RecordID())
			}
			at = now
		}
		ks[i] = keyed{r: r, at: at}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		return ks[i].at.After(ks[j].at)
	})

	out := make([]Record, len(ks))
	for i, k := range ks {
		out[i] = k.r
	}
	return out
}

// PopupDate is the best-effort date shown for a record: first reminder, then due date, then
// creation time, then now.
func PopupDate(r Record, now time.Time) time.Time {
	if rm, ok := r.(reminderer); ok {
		if at, ok := rm.FirstReminder(); ok {
			return at
		}
	}
	if d, ok := r.(dueDater); ok {
		if at, ok := d.DueAt(); ok {
			return at
		}
	}
	if at, ok := r.RecordCreated(); ok {
		return at
	}
	return now
}
