// ABOUTME: Derived pipeline metrics computed from a snapshot
// ABOUTME: Pure functions over opportunity display strings; nothing here panics
package viz

import (
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/closex/models"
)

// TrendWeeks is the number of rolling weeks in the revenue trend.
const TrendWeeks = 5

// Stage labels in display order.
const (
	StageProspect    = "Prospect"
	StageQualified   = "Qualified"
	StageNegotiating = "Negotiating"
	StageWon         = "Won"
)

var stageKeys = []struct {
	key   string
	label string
}{
	{"prospect", StageProspect},
	{"qualified", StageQualified},
	{"negotiating", StageNegotiating},
	{"won", StageWon},
}

type WeekBucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Value float64   `json:"value"`
}

type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Metrics is everything the overview screens show.
type Metrics struct {
	TotalContacts      int                    `json:"totalContacts"`
	TotalOpportunities int                    `json:"totalOpportunities"`
	TotalTasks         int                    `json:"totalTasks"`
	OpenTasks          int                    `json:"openTasks"`
	PipelineValue      float64                `json:"pipelineValue"`
	ConversionRate     float64                `json:"conversionRate"`
	RevenueTrend       [TrendWeeks]WeekBucket `json:"revenueTrend"`
	Stages             []StageCount           `json:"stages"`
	LastSync           int64                  `json:"lastSync"`
	GeneratedAt        time.Time              `json:"generatedAt"`
}

// Compute derives metrics for snapshot as of now.
func Compute(snapshot *models.Snapshot, now time.Time) Metrics {
	if snapshot == nil {
		snapshot = models.NewSnapshot()
	}
	opps := snapshot.OpportunityList()

	m := Metrics{
		TotalContacts:      len(snapshot.Contacts),
		TotalOpportunities: len(opps),
		TotalTasks:         len(snapshot.Tasks),
		PipelineValue:      TotalPipelineValue(opps),
		ConversionRate:     ConversionRate(opps),
		RevenueTrend:       RevenueTrend(opps, now),
		Stages:             StageDistribution(opps),
		LastSync:           snapshot.LastSync,
		GeneratedAt:        now,
	}
	for _, t := range snapshot.Tasks {
		if !t.IsComplete {
			m.OpenTasks++
		}
	}
	return m
}

// ParseNumeric strips everything except digits, dots and minus signs, then
// reads the longest leading decimal number. Anything unreadable is 0.
func ParseNumeric(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	i := 0
	if i < len(cleaned) && cleaned[i] == '-' {
		i++
	}
	digits := 0
	for i < len(cleaned) && isDigit(cleaned[i]) {
		i++
		digits++
	}
	if i < len(cleaned) && cleaned[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(cleaned) && isDigit(cleaned[j]) {
			j++
			frac++
		}
		if frac > 0 || digits > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(cleaned[:i], "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// TotalPipelineValue sums the numeric value of every opportunity.
func TotalPipelineValue(opps []models.Opportunity) float64 {
	var total float64
	for _, o := range opps {
		total += ParseNumeric(o.Value)
	}
	return total
}

// ConversionRate is the share of opportunities whose status mentions "won".
func ConversionRate(opps []models.Opportunity) float64 {
	if len(opps) == 0 {
		return 0
	}
	won := 0
	for _, o := range opps {
		if strings.Contains(strings.ToLower(o.Status), "won") {
			won++
		}
	}
	return float64(won) / float64(len(opps))
}

// RevenueTrend sums opportunity values into five rolling weeks ending at now,
// oldest first. Opportunities without a parseable close date are skipped.
func RevenueTrend(opps []models.Opportunity, now time.Time) [TrendWeeks]WeekBucket {
	var buckets [TrendWeeks]WeekBucket
	loc := now.Location()

	for n := 0; n < TrendWeeks; n++ {
		i := TrendWeeks - 1 - n
		day := now.AddDate(0, 0, -7*i)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		buckets[n] = WeekBucket{
			Label: "W" + strconv.Itoa(TrendWeeks-i),
			Start: start,
			End:   start.AddDate(0, 0, 7),
		}
	}

	for _, o := range opps {
		closed, ok := ParseCloseDate(o.CloseDate, loc)
		if !ok {
			continue
		}
		value := ParseNumeric(o.Value)
		for n := range buckets {
			if !closed.Before(buckets[n].Start) && closed.Before(buckets[n].End) {
				buckets[n].Value += value
			}
		}
	}
	return buckets
}

// StageDistribution counts opportunities per fixed stage. The first stage key
// found in the status wins; statuses matching none count as Prospect.
func StageDistribution(opps []models.Opportunity) []StageCount {
	counts := make([]StageCount, len(stageKeys))
	for i, s := range stageKeys {
		counts[i].Stage = s.label
	}
	for _, o := range opps {
		counts[stageIndex(o.Status)].Count++
	}
	return counts
}

// StageOf returns the stage label an opportunity status buckets into.
func StageOf(status string) string {
	return stageKeys[stageIndex(status)].label
}

func stageIndex(status string) int {
	status = strings.ToLower(status)
	for i, s := range stageKeys {
		if strings.Contains(status, s.key) {
			return i
		}
	}
	return 0
}

// RecentLead is one row of the overview's recent leads table.
type RecentLead struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Lead  string `json:"lead"`
	Email string `json:"email"`
	Stage string `json:"stage"`
	Value string `json:"value"`
}

// RecentLeads returns the first n contacts joined to their opportunity, if any.
func RecentLeads(snapshot *models.Snapshot, n int) []RecentLead {
	if snapshot == nil || n <= 0 {
		return nil
	}
	contacts := snapshot.ContactList()
	if len(contacts) > n {
		contacts = contacts[:n]
	}
	opps := snapshot.OpportunityList()

	rows := make([]RecentLead, 0, len(contacts))
	for _, c := range contacts {
		row := RecentLead{
			ID:    c.ID,
			Title: firstNonEmpty(c.Name, c.Lead, "Unknown"),
			Lead:  c.Lead,
			Email: "No Email",
			Stage: StageProspect,
			Value: "--",
		}
		if len(c.Emails) > 0 {
			row.Email = c.Emails[0]
		}
		for _, o := range opps {
			if o.ID == c.ID || (o.Name != "" && c.Lead != "" && strings.EqualFold(o.Name, c.Lead)) {
				row.Stage = firstNonEmpty(o.Status, StageProspect)
				row.Value = firstNonEmpty(o.Value, "--")
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
