// ABOUTME: Data models for scraped CRM records
// ABOUTME: Defines Contact, Opportunity, Task and the persisted Snapshot aggregate
package models

import (
	"fmt"
	"sort"
	"strings"
)

type Contact struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Lead   string   `json:"lead"`
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// Opportunity values are display strings ("$1,200.50"); numeric work goes
// through viz.ParseNumeric.
type Opportunity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Status    string `json:"status"`
	CloseDate string `json:"closeDate"`
}

type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Assignee    string `json:"assignee"`
	IsComplete  bool   `json:"isComplete"`
}

// Snapshot is the single persisted aggregate. It is always read and written
// whole. LastSync is Unix milliseconds.
type Snapshot struct {
	Contacts      map[string]Contact     `json:"contacts"`
	Opportunities map[string]Opportunity `json:"opportunities"`
	Tasks         map[string]Task        `json:"tasks"`
	LastSync      int64                  `json:"lastSync"`
}

// NewSnapshot returns the default empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Contacts:      make(map[string]Contact),
		Opportunities: make(map[string]Opportunity),
		Tasks:         make(map[string]Task),
		LastSync:      0,
	}
}

// Clone returns a deep copy so callers never mutate a shared snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	if s == nil {
		return out
	}
	for id, c := range s.Contacts {
		c.Emails = append([]string(nil), c.Emails...)
		c.Phones = append([]string(nil), c.Phones...)
		out.Contacts[id] = c
	}
	for id, o := range s.Opportunities {
		out.Opportunities[id] = o
	}
	for id, t := range s.Tasks {
		out.Tasks[id] = t
	}
	out.LastSync = s.LastSync
	return out
}

// Normalize re-keys every map by the record's own ID, dropping records
// without one.
func (s *Snapshot) Normalize() {
	if s.Contacts == nil {
		s.Contacts = make(map[string]Contact)
	}
	if s.Opportunities == nil {
		s.Opportunities = make(map[string]Opportunity)
	}
	if s.Tasks == nil {
		s.Tasks = make(map[string]Task)
	}

	contacts := make(map[string]Contact, len(s.Contacts))
	for _, c := range s.Contacts {
		if c.ID != "" {
			contacts[c.ID] = c
		}
	}
	opps := make(map[string]Opportunity, len(s.Opportunities))
	for _, o := range s.Opportunities {
		if o.ID != "" {
			opps[o.ID] = o
		}
	}
	tasks := make(map[string]Task, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID != "" {
			tasks[t.ID] = t
		}
	}
	s.Contacts, s.Opportunities, s.Tasks = contacts, opps, tasks
}

// Len reports the number of records of a kind.
func (s *Snapshot) Len(kind Kind) int {
	switch kind {
	case KindContacts:
		return len(s.Contacts)
	case KindOpportunities:
		return len(s.Opportunities)
	case KindTasks:
		return len(s.Tasks)
	}
	return 0
}

// ContactList returns contacts sorted by name, then ID.
func (s *Snapshot) ContactList() []Contact {
	out := make([]Contact, 0, len(s.Contacts))
	for _, c := range s.Contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// OpportunityList returns opportunities sorted by name, then ID.
func (s *Snapshot) OpportunityList() []Opportunity {
	out := make([]Opportunity, 0, len(s.Opportunities))
	for _, o := range s.Opportunities {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TaskList returns tasks sorted by description, then ID.
func (s *Snapshot) TaskList() []Task {
	out := make([]Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Description), strings.ToLower(out[j].Description)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Kind names one of the three record collections.
type Kind string

const (
	KindContacts      Kind = "contacts"
	KindOpportunities Kind = "opportunities"
	KindTasks         Kind = "tasks"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindContacts, KindOpportunities, KindTasks}

// ParseKind accepts the plural name or its singular form.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contacts", "contact":
		return KindContacts, nil
	case "opportunities", "opportunity", "opps", "opp", "pipeline":
		return KindOpportunities, nil
	case "tasks", "task":
		return KindTasks, nil
	}
	return "", fmt.Errorf("unknown record kind %q (want contacts, opportunities or tasks)", s)
}

func (k Kind) String() string {
	return string(k)
}
