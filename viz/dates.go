// ABOUTME: Close date parsing for the revenue trend
// ABOUTME: Accepts ISO-8601 forms first, then day/month/year
package viz

import (
	"strconv"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// Long-form dates as the CRM renders them in some views.
var textLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"Mon, Jan 2, 2006",
	"2006/1/2",
}

// ParseCloseDate reads a close date in loc. A slashed date led by a four-digit
// year is year/month/day. Other three-part dates split on "/" or "-" are
// day/month/year; two-digit years are in the 2000s. Out-of-range
// days and months roll over the way time.Date does.
func ParseCloseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range textLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 || strings.Count(s, "/")+strings.Count(s, "-") != 2 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, ok := leadingInt(p)
		if !ok {
			return time.Time{}, false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// leadingInt parses the digits at the start of s, ignoring what follows.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
