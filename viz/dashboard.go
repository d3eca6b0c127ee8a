// ABOUTME: Terminal dashboard rendering and number formatting
// ABOUTME: Provides the ASCII overview printed by the dashboard command
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders v as whole US dollars with thousands separators.
func FormatCurrency(v float64) string {
	v = math.Round(v)
	if v < 0 {
		return "-$" + printer.Sprintf("%.0f", -v)
	}
	return "$" + printer.Sprintf("%.0f", v)
}

// FormatPercent renders a 0..1 rate with one decimal.
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// FormatLastSync renders a Unix-millisecond sync stamp, or "never".
func FormatLastSync(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

func RenderDashboard(m Metrics) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  CLOSEX DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  💼 %d opportunities  ✅ %d tasks (%d open)\n",
		m.TotalContacts, m.TotalOpportunities, m.TotalTasks, m.OpenTasks))
	out.WriteString(fmt.Sprintf("  💰 %s pipeline  📈 %s conversion\n\n",
		FormatCurrency(m.PipelineValue), FormatPercent(m.ConversionRate)))

	out.WriteString("LEADS BY STAGE\n")
	renderStages(&out, m.Stages)
	out.WriteString("\n")

	out.WriteString("REVENUE TREND\n")
	renderTrend(&out, m.RevenueTrend)
	out.WriteString("\n")

	out.WriteString(fmt.Sprintf("Last sync: %s\n", FormatLastSync(m.LastSync)))
	return out.String()
}

func renderStages(out *strings.Builder, stages []StageCount) {
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		out.WriteString(fmt.Sprintf("  %-12s %s  %2d\n", s.Stage, bar(s.Count*10/maxCount), s.Count))
	}
}

func renderTrend(out *strings.Builder, weeks [TrendWeeks]WeekBucket) {
	maxValue := 0.0
	for _, w := range weeks {
		maxValue = math.Max(maxValue, w.Value)
	}

	for _, w := range weeks {
		length := 0
		if maxValue > 0 && w.Value > 0 {
			length = int(w.Value * 10 / maxValue)
		}
		out.WriteString(fmt.Sprintf("  %-3s %s  %-6s %s\n",
			w.Label, bar(length), w.Start.Format("Jan 02"), FormatCurrency(w.Value)))
	}
}

// bar draws a 10-cell bar with length cells filled.
func bar(length int) string {
	length = max(0, min(10, length))
	return strings.Repeat("█", length) + strings.Repeat("░", 10-length)
}
