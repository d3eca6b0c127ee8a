// ABOUTME: Task extraction from inbox and task tables
// ABOUTME: Tables with a due column yield one task per described row
package scraper

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/harperreed/closex/models"
)

var dueHeaders = []string{"due", "due date"}

func isTaskTable(cols columns) bool {
	return cols.has(dueHeaders...)
}

func (s *Scraper) scrapeTasks(table *goquery.Selection) []models.Task {
	cols := readColumns(table)
	descCol := cols.index(0, "task", "description", "name")
	dueCol := cols.index(-1, dueHeaders...)
	assigneeCol := cols.index(-1, "assignee", "assigned to", "owner")
	statusCol := cols.index(-1, "status")

	tasks := make([]models.Task, 0)
	dataRows(table).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		desc := linkOrText(cells, descCol)
		if desc == "" {
			return
		}
		due := cellText(cells, dueCol)
		assignee := cellText(cells, assigneeCol)
		tasks = append(tasks, models.Task{
			ID:          taskID(desc, due, assignee),
			Description: desc,
			DueDate:     due,
			Assignee:    assignee,
			IsComplete:  taskComplete(row, cellText(cells, statusCol)),
		})
	})
	s.logger.Debug("scanned task table", "tasks", len(tasks))
	return tasks
}

// Status words that mark a task as still open, checked before any
// completion word so "Not completed" stays open.
var openWords = map[string]bool{
	"not": true, "incomplete": true, "uncompleted": true, "undone": true,
	"pending": true, "open": true, "todo": true,
}

var doneWords = map[string]bool{
	"done": true, "complete": true, "completed": true, "finished": true,
}

func taskComplete(row *goquery.Selection, status string) bool {
	if row.Find(`input[type="checkbox"][checked]`).Length() > 0 {
		return true
	}
	words := strings.FieldsFunc(strings.ToLower(status), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if openWords[w] {
			return false
		}
	}
	for _, w := range words {
		if doneWords[w] {
			return true
		}
	}
	return false
}
