// ABOUTME: Page classification and record extraction entry point
// ABOUTME: Never panics or errors; failures become a zero-record result
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/models"
	"golang.org/x/net/html"
)

// PageKind is the scraper selection derived from a page URL.
type PageKind string

const (
	PageLeads         PageKind = "leads"
	PageOpportunities PageKind = "opportunities"
	PageTasks         PageKind = "tasks"
	PageGeneric       PageKind = "generic"
)

// Classify picks which scrapers run for url.
func Classify(url string) PageKind {
	switch {
	case strings.Contains(url, "/leads") || strings.Contains(url, "search"):
		return PageLeads
	case strings.Contains(url, "/opportunities") || strings.Contains(url, "pipeline"):
		return PageOpportunities
	case strings.Contains(url, "/tasks") || strings.Contains(url, "inbox"):
		return PageTasks
	default:
		return PageGeneric
	}
}

// Result is the outcome of scraping one page.
type Result struct {
	Kind          PageKind
	Contacts      []models.Contact
	Opportunities []models.Opportunity
	Tasks         []models.Task
	Message       string
	Failed        bool
}

// Count is the total number of records extracted.
func (r Result) Count() int {
	return len(r.Contacts) + len(r.Opportunities) + len(r.Tasks)
}

// Scraper extracts records from rendered CRM pages.
type Scraper struct {
	logger *log.Logger
	// visit, when set, sees each table before it is scraped.
	visit func(table *goquery.Selection)
}

// New returns a scraper logging through logger (charm log default when nil).
func New(logger *log.Logger) *Scraper {
	if logger == nil {
		logger = log.Default()
	}
	return &Scraper{logger: logger}
}

// Extract scrapes page according to its URL.
func (s *Scraper) Extract(page *models.Page) (result Result) {
	kind := PageGeneric
	if page != nil {
		kind = Classify(page.URL)
	}
	result.Kind = kind

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scraper panic", "err", r)
			result = failed(kind)
		}
	}()

	if page == nil {
		return failed(kind)
	}

	root, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		s.logger.Error("failed to parse page", "url", page.URL, "err", err)
		return failed(kind)
	}
	doc := goquery.NewDocumentFromNode(root)

	for _, table := range tables(doc) {
		if s.visit != nil {
			s.visit(table)
		}
		cols := readColumns(table)
		switch kind {
		case PageLeads:
			result.Contacts = append(result.Contacts, s.scrapeContacts(table)...)
		case PageOpportunities:
			if isOpportunityTable(cols) {
				result.Opportunities = append(result.Opportunities, s.scrapeOpportunities(table)...)
			}
		case PageTasks:
			if isTaskTable(cols) {
				result.Tasks = append(result.Tasks, s.scrapeTasks(table)...)
			}
		default:
			switch {
			case isOpportunityTable(cols):
				result.Opportunities = append(result.Opportunities, s.scrapeOpportunities(table)...)
			case isTaskTable(cols):
				result.Tasks = append(result.Tasks, s.scrapeTasks(table)...)
			default:
				result.Contacts = append(result.Contacts, s.scrapeContacts(table)...)
			}
		}
	}

	result.Message = message(kind, result)
	s.logger.Info("extracted", "url", page.URL, "kind", kind, "count", result.Count())
	return result
}

func tables(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		out = append(out, t)
	})
	return out
}

func failed(kind PageKind) Result {
	return Result{Kind: kind, Message: models.StatusExtractionError, Failed: true}
}

func message(kind PageKind, r Result) string {
	switch kind {
	case PageLeads:
		return fmt.Sprintf("Extracted %d contacts.", len(r.Contacts))
	case PageOpportunities:
		return fmt.Sprintf("Extracted %d opportunities.", len(r.Opportunities))
	case PageTasks:
		return fmt.Sprintf("Extracted %d tasks.", len(r.Tasks))
	default:
		return fmt.Sprintf("Extracted %d items (Generic).", r.Count())
	}
}
