// ABOUTME: Header-based column detection for DataTable markup
// ABOUTME: Maps trimmed, lowercased header text to cell indices
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// columns maps a normalized header label to its index. When a label repeats,
// the last occurrence wins.
type columns map[string]int

func readColumns(table *goquery.Selection) columns {
	cols := make(columns)
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		cols[normalizeHeader(th.Text())] = i
	})
	return cols
}

// index returns the highest-positioned header matching any label, or def.
func (c columns) index(def int, labels ...string) int {
	found := -1
	for _, label := range labels {
		if i, ok := c[label]; ok && i > found {
			found = i
		}
	}
	if found < 0 {
		return def
	}
	return found
}

func (c columns) has(labels ...string) bool {
	return c.index(-1, labels...) >= 0
}

func normalizeHeader(s string) string {
	return strings.ToLower(cleanText(s))
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dataRows returns the DataTable rows of a table, or every body row when the
// table carries no DataTable classes.
func dataRows(table *goquery.Selection) *goquery.Selection {
	rows := table.Find(`tbody tr[class*="DataTable_row_"]`)
	if rows.Length() == 0 {
		rows = table.Find("tbody tr")
	}
	return rows
}

// cellText returns the trimmed text of cell i, or "" when the row is short.
func cellText(cells *goquery.Selection, i int) string {
	if i < 0 || i >= cells.Length() {
		return ""
	}
	return cleanText(cells.Eq(i).Text())
}

// linkOrText prefers the text of the first link in cell i.
func linkOrText(cells *goquery.Selection, i int) string {
	if i < 0 || i >= cells.Length() {
		return ""
	}
	cell := cells.Eq(i)
	if text := cleanText(cell.Find("a").First().Text()); text != "" {
		return text
	}
	return cleanText(cell.Text())
}

// hrefValues collects hrefs starting with prefix, prefix removed.
func hrefValues(row *goquery.Selection, prefix string) []string {
	values := make([]string, 0)
	row.Find(`a[href^="` + prefix + `"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		v := strings.TrimSpace(strings.TrimPrefix(href, prefix))
		if v != "" {
			values = append(values, v)
		}
	})
	return values
}
