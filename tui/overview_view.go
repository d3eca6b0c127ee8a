// ABOUTME: Overview tab for TUI
// ABOUTME: Stat cards, a weekly revenue line chart and stage bars from ntcharts
package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/closex/viz"
)

const chartHeight = 10

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(18)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	stageColors = []lipgloss.Color{"12", "11", "13", "10", "8"}
)

func (m Model) renderOverview() string {
	metrics := m.state.Metrics

	var s strings.Builder
	s.WriteString(renderCards(metrics))
	s.WriteString("\n\n")

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left,
			sectionStyle.Render("Revenue trend"),
			renderTrendChart(metrics.RevenueTrend, m.chartWidth()),
		),
		"    ",
		lipgloss.JoinVertical(lipgloss.Left,
			sectionStyle.Render("Leads by stage"),
			renderStageChart(metrics.Stages),
		),
	)
	s.WriteString(charts)
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Last sync: " + viz.FormatLastSync(metrics.LastSync)))
	return s.String()
}

func (m Model) chartWidth() int {
	w := m.width/2 - 4
	if w < 24 {
		w = 24
	}
	return w
}

func renderCards(metrics viz.Metrics) string {
	card := func(label, value string) string {
		return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Contacts", fmt.Sprint(metrics.TotalContacts)),
		card("Opportunities", fmt.Sprint(metrics.TotalOpportunities)),
		card("Pipeline", viz.FormatCurrency(metrics.PipelineValue)),
		card("Conversion", viz.FormatPercent(metrics.ConversionRate)),
		card("Open tasks", fmt.Sprintf("%d/%d", metrics.OpenTasks, metrics.TotalTasks)),
	)
}

func renderTrendChart(weeks [viz.TrendWeeks]viz.WeekBucket, width int) string {
	if !weeks[len(weeks)-1].Start.After(weeks[0].Start) {
		return helpStyle.Render("No trend yet")
	}

	maxVal := 0.0
	for _, w := range weeks {
		if w.Value > maxVal {
			maxVal = w.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	chart := tslc.New(width, chartHeight)
	chart.SetStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("170")))
	chart.AxisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	chart.LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	chart.SetTimeRange(weeks[0].Start, weeks[len(weeks)-1].Start)
	chart.SetViewTimeRange(weeks[0].Start, weeks[len(weeks)-1].Start)
	chart.SetYRange(0, maxVal)
	chart.SetViewYRange(0, maxVal)

	for _, w := range weeks {
		chart.Push(tslc.TimePoint{Time: w.Start, Value: w.Value})
	}
	chart.DrawBraille()
	return chart.View()
}

func renderStageChart(stages []viz.StageCount) string {
	data := make([]barchart.BarData, 0, len(stages))
	for i, st := range stages {
		data = append(data, barchart.BarData{
			Label: abbreviate(st.Stage),
			Values: []barchart.BarValue{{
				Name:  st.Stage,
				Value: float64(st.Count),
				Style: lipgloss.NewStyle().Foreground(stageColors[i%len(stageColors)]),
			}},
		})
	}

	bc := barchart.New(len(data)*5+1, chartHeight)
	bc.PushAll(data)
	bc.Draw()
	return bc.View()
}

func abbreviate(stage string) string {
	if len(stage) <= 4 {
		return stage
	}
	return stage[:4]
}
