// ABOUTME: Opportunity extraction from pipeline tables
// ABOUTME: Tables with a value column yield one opportunity per named row
package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/harperreed/closex/models"
)

var valueHeaders = []string{"value", "amount", "deal value"}

func isOpportunityTable(cols columns) bool {
	return cols.has(valueHeaders...)
}

func (s *Scraper) scrapeOpportunities(table *goquery.Selection) []models.Opportunity {
	cols := readColumns(table)
	nameCol := cols.index(0, "name", "opportunity", "lead", "lead name")
	valueCol := cols.index(-1, valueHeaders...)
	statusCol := cols.index(-1, "status", "stage")
	dateCol := cols.index(-1, "close date", "expected close", "date", "closes")

	opps := make([]models.Opportunity, 0)
	dataRows(table).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		name := linkOrText(cells, nameCol)
		if name == "" {
			return
		}
		closeDate := cellText(cells, dateCol)
		opps = append(opps, models.Opportunity{
			ID:        opportunityID(name, closeDate),
			Name:      name,
			Value:     cellText(cells, valueCol),
			Status:    cellText(cells, statusCol),
			CloseDate: closeDate,
		})
	})
	s.logger.Debug("scanned pipeline table", "opportunities", len(opps))
	return opps
}
