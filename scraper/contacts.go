// ABOUTME: Contact extraction from lead tables
// ABOUTME: One contact per row with a recognizable lead or contact name
package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/harperreed/closex/models"
)

const (
	unknownLead    = "Unknown Lead"
	unknownContact = "Unknown Contact"

	defaultLeadColumn    = 0
	defaultContactColumn = 3
	minContactCells      = 3
)

func (s *Scraper) scrapeContacts(table *goquery.Selection) []models.Contact {
	cols := readColumns(table)
	leadCol := cols.index(defaultLeadColumn, "name", "lead name", "lead")
	contactCol := cols.index(defaultContactColumn, "contacts", "contact", "contact name")
	statusCol := cols.index(-1, "status")

	rows := dataRows(table)
	s.logger.Debug("scanning lead table", "rows", rows.Length(), "lead_col", leadCol, "contact_col", contactCol)

	contacts := make([]models.Contact, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minContactCells {
			return
		}

		lead := linkOrText(cells, leadCol)
		if lead == "" {
			lead = unknownLead
		}
		name := cellText(cells, contactCol)
		if name == "" {
			name = unknownContact
		}
		if lead == unknownLead && name == unknownContact {
			return
		}

		emails := hrefValues(row, "mailto:")
		phones := hrefValues(row, "tel:")
		c := models.Contact{
			ID:     contactID(lead, name, emails, phones),
			Name:   name,
			Lead:   lead,
			Emails: emails,
			Phones: phones,
		}
		if statusCol >= 0 {
			s.logger.Debug("contact row", "id", c.ID, "status", cellText(cells, statusCol))
		}
		contacts = append(contacts, c)
	})
	return contacts
}
