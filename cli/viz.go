// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the terminal dashboard and graph generation commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
)

// VizGraphCommand generates a pipeline graph or a graph of every record.
func VizGraphCommand(ctx context.Context, svc *service.Service, graphType string, args []string) error {
	fs := flag.NewFlagSet("viz graph "+graphType, flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	state := svc.Refresh(ctx)
	if state.Err != nil {
		return fmt.Errorf("%s: %w", state.Status, state.Err)
	}

	generator := viz.NewGraphGenerator(state.Snapshot)
	var dot string
	var err error
	switch graphType {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph()
	case "all":
		dot, err = generator.GenerateCompleteGraph()
	default:
		return fmt.Errorf("unknown graph type: %s (want pipeline or all)", graphType)
	}
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	_, _ = fmt.Fprintln(stdout, dot)
	return nil
}

// DashboardCommand prints the terminal dashboard.
func DashboardCommand(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	state := svc.Refresh(ctx)
	if state.Err != nil {
		return fmt.Errorf("failed to load snapshot: %w", state.Err)
	}

	_, _ = fmt.Fprint(stdout, viz.RenderDashboard(state.Metrics))
	return nil
}
