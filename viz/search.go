// ABOUTME: Case-insensitive substring search over snapshot records
// ABOUTME: Backs the search box on every record tab
package viz

import (
	"sort"
	"strings"

	"github.com/harperreed/closex/models"
)

func matches(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// FilterContacts keeps contacts whose name or lead contains query.
func FilterContacts(items []models.Contact, query string) []models.Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Contact, 0, len(items))
	for _, c := range items {
		if q == "" || matches(q, c.Name, c.Lead) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// FilterOpportunities keeps opportunities whose name contains query.
func FilterOpportunities(items []models.Opportunity, query string) []models.Opportunity {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Opportunity, 0, len(items))
	for _, o := range items {
		if q == "" || matches(q, o.Name) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// FilterTasks keeps tasks whose description contains query.
func FilterTasks(items []models.Task, query string) []models.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Task, 0, len(items))
	for _, t := range items {
		if q == "" || matches(q, t.Description) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Description) < strings.ToLower(out[j].Description)
	})
	return out
}
