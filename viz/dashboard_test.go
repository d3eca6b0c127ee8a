// ABOUTME: Tests for dashboard rendering and graph output
package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/harperreed/closex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0", FormatCurrency(0))
	assert.Equal(t, "$1,201", FormatCurrency(1200.6))
	assert.Equal(t, "$3,000,000", FormatCurrency(3e6))
	assert.Equal(t, "-$250", FormatCurrency(-250))
}

func TestFormatPercentAndLastSync(t *testing.T) {
	assert.Equal(t, "12.5%", FormatPercent(0.125))
	assert.Equal(t, "never", FormatLastSync(0))
	assert.NotEqual(t, "never", FormatLastSync(time.Now().UnixMilli()))
}

func TestRenderDashboard(t *testing.T) {
	s := models.NewSnapshot()
	s.Contacts["c"] = models.Contact{ID: "c", Name: "Ann"}
	s.Opportunities["o"] = models.Opportunity{ID: "o", Name: "Acme", Value: "$1,500", Status: "Won"}

	out := RenderDashboard(Compute(s, time.Now()))

	assert.Contains(t, out, "CLOSEX DASHBOARD")
	assert.Contains(t, out, "1 contacts")
	assert.Contains(t, out, "$1,500 pipeline")
	assert.Contains(t, out, "100.0% conversion")
	assert.Contains(t, out, "Last sync: never")
	for _, label := range []string{"Prospect", "Qualified", "Negotiating", "Won", "W1", "W5"} {
		assert.Contains(t, out, label)
	}
	assert.Equal(t, 1, strings.Count(out, "██████████"))
}

func TestBarClamps(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), bar(-3))
	assert.Equal(t, strings.Repeat("█", 10), bar(30))
}

func TestGeneratePipelineGraph(t *testing.T) {
	s := models.NewSnapshot()
	s.Contacts["ann@acme.com"] = models.Contact{ID: "ann@acme.com", Name: "Ann", Lead: "Acme", Emails: []string{"ann@acme.com"}}
	s.Opportunities["o1"] = models.Opportunity{ID: "o1", Name: "Acme", Value: "$1,000", Status: "Won"}

	gen := NewGraphGenerator(s)

	dot, err := gen.GeneratePipelineGraph()
	require.NoError(t, err)
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "opp_o1")
	assert.NotContains(t, dot, "contact_")

	dot, err = gen.GenerateCompleteGraph()
	require.NoError(t, err)
	assert.Contains(t, dot, "contact_ann@acme.com")
}
