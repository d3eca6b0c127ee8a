// ABOUTME: Merge engine combining scraped records into the snapshot
// ABOUTME: Last write wins per ID; every mutation stamps LastSync
package merge

import (
	"time"

	"github.com/harperreed/closex/models"
)

// Apply returns a copy of existing with every record inserted or replaced by
// ID, in order, then LastSync stamped once. existing is never modified.
func Apply(existing *models.Snapshot, contacts []models.Contact, opps []models.Opportunity, tasks []models.Task, now time.Time) *models.Snapshot {
	out := existing.Clone()

	for _, c := range contacts {
		if c.ID == "" {
			continue
		}
		c.Emails = append([]string(nil), c.Emails...)
		c.Phones = append([]string(nil), c.Phones...)
		out.Contacts[c.ID] = c
	}
	for _, o := range opps {
		if o.ID != "" {
			out.Opportunities[o.ID] = o
		}
	}
	for _, t := range tasks {
		if t.ID != "" {
			out.Tasks[t.ID] = t
		}
	}

	out.LastSync = stamp(out.LastSync, now)
	return out
}

// Delete returns a copy of existing without the record kind/id and reports
// whether it was present. LastSync is stamped either way.
func Delete(existing *models.Snapshot, kind models.Kind, id string, now time.Time) (*models.Snapshot, bool) {
	out := existing.Clone()

	var removed bool
	switch kind {
	case models.KindContacts:
		_, removed = out.Contacts[id]
		delete(out.Contacts, id)
	case models.KindOpportunities:
		_, removed = out.Opportunities[id]
		delete(out.Opportunities, id)
	case models.KindTasks:
		_, removed = out.Tasks[id]
		delete(out.Tasks, id)
	}

	out.LastSync = stamp(out.LastSync, now)
	return out, removed
}

// stamp keeps LastSync non-decreasing even if the clock steps back.
func stamp(prev int64, now time.Time) int64 {
	if ms := now.UnixMilli(); ms > prev {
		return ms
	}
	return prev
}
