// ABOUTME: Graphviz DOT generation for the opportunity pipeline
// ABOUTME: Stages link to opportunities; the full graph adds contacts by lead
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/closex/models"
)

type GraphGenerator struct {
	snapshot *models.Snapshot
}

func NewGraphGenerator(snapshot *models.Snapshot) *GraphGenerator {
	if snapshot == nil {
		snapshot = models.NewSnapshot()
	}
	return &GraphGenerator{snapshot: snapshot}
}

// GeneratePipelineGraph renders stage -> opportunity edges as DOT.
func (g *GraphGenerator) GeneratePipelineGraph() (string, error) {
	return g.render("Pipeline", false)
}

// GenerateCompleteGraph adds contacts, linked to opportunities for their lead.
func (g *GraphGenerator) GenerateCompleteGraph() (string, error) {
	return g.render("Complete CRM Graph", true)
}

func (g *GraphGenerator) render(label string, withContacts bool) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)

	stageNodes := make(map[string]*cgraph.Node)
	for i, s := range StageDistribution(g.snapshot.OpportunityList()) {
		node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", i))
		if err != nil {
			return "", fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%d)", s.Stage, s.Count))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		stageNodes[s.Stage] = node
	}

	oppsByName := make(map[string][]*cgraph.Node)
	for _, o := range g.snapshot.OpportunityList() {
		node, err := graph.CreateNodeByName("opp_" + o.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create opportunity node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s\n(%s)", o.Name, FormatCurrency(ParseNumeric(o.Value)), firstNonEmpty(o.Status, "no status")))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")

		if _, err := graph.CreateEdgeByName("stage_"+o.ID, stageNodes[StageOf(o.Status)], node); err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		key := strings.ToLower(o.Name)
		oppsByName[key] = append(oppsByName[key], node)
	}

	if withContacts {
		for _, c := range g.snapshot.ContactList() {
			node, err := graph.CreateNodeByName("contact_" + c.ID)
			if err != nil {
				return "", fmt.Errorf("failed to create contact node: %w", err)
			}
			email := ""
			if len(c.Emails) > 0 {
				email = c.Emails[0]
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", c.Name, email))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor("lightgreen")

			for _, opp := range oppsByName[strings.ToLower(c.Lead)] {
				edge, err := graph.CreateEdgeByName("contact_for_"+c.ID, node, opp)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("contact")
				edge.SetStyle("dashed")
			}
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}
