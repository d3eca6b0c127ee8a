// ABOUTME: Snapshot CLI commands
// ABOUTME: Human-friendly commands for listing, deleting and clearing scraped records
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
)

// StatusCommand prints record counts and the last sync time.
func StatusCommand(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)

	state := svc.Refresh(ctx)
	if state.Err != nil {
		return fmt.Errorf("%s: %w", state.Status, state.Err)
	}

	s := state.Snapshot
	_, _ = fmt.Fprintf(stdout, "Contacts:      %d\n", len(s.Contacts))
	_, _ = fmt.Fprintf(stdout, "Opportunities: %d\n", len(s.Opportunities))
	_, _ = fmt.Fprintf(stdout, "Tasks:         %d\n", len(s.Tasks))
	_, _ = fmt.Fprintf(stdout, "Last sync:     %s\n", viz.FormatLastSync(s.LastSync))
	return nil
}

// ListCommand lists one kind of record, optionally filtered.
func ListCommand(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Case-insensitive search")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("record kind required (contacts, opportunities or tasks)")
	}
	kind, err := models.ParseKind(fs.Arg(0))
	if err != nil {
		return err
	}

	state := svc.Refresh(ctx)
	if state.Err != nil {
		return fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	s := state.Snapshot

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	rows := 0
	switch kind {
	case models.KindContacts:
		_, _ = fmt.Fprintln(w, "NAME\tLEAD\tEMAILS\tPHONES\tID")
		_, _ = fmt.Fprintln(w, "----\t----\t------\t------\t--")
		for _, c := range viz.FilterContacts(s.ContactList(), *query) {
			if rows == *limit {
				break
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				c.Name, dash(c.Lead), dash(strings.Join(c.Emails, ", ")), dash(strings.Join(c.Phones, ", ")), c.ID)
			rows++
		}
	case models.KindOpportunities:
		_, _ = fmt.Fprintln(w, "NAME\tVALUE\tSTATUS\tCLOSE DATE\tID")
		_, _ = fmt.Fprintln(w, "----\t-----\t------\t----------\t--")
		for _, o := range viz.FilterOpportunities(s.OpportunityList(), *query) {
			if rows == *limit {
				break
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.Name, dash(o.Value), dash(o.Status), dash(o.CloseDate), o.ID)
			rows++
		}
	case models.KindTasks:
		_, _ = fmt.Fprintln(w, "DONE\tDESCRIPTION\tDUE\tASSIGNEE\tID")
		_, _ = fmt.Fprintln(w, "----\t-----------\t---\t--------\t--")
		for _, t := range viz.FilterTasks(s.TaskList(), *query) {
			if rows == *limit {
				break
			}
			done := " "
			if t.IsComplete {
				done = "✓"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", done, t.Description, dash(t.DueDate), dash(t.Assignee), t.ID)
			rows++
		}
	}

	if rows == 0 {
		_, _ = fmt.Fprintf(stdout, "No %s found\n", kind)
		return nil
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(stdout, "\nShowing %d of %d %s\n", rows, s.Len(kind), kind)
	return nil
}

// DeleteCommand deletes one record by kind and ID.
func DeleteCommand(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: closex delete <kind> <id>")
	}
	kind, err := models.ParseKind(fs.Arg(0))
	if err != nil {
		return err
	}

	state := svc.Delete(ctx, kind, fs.Arg(1))
	if state.Err != nil {
		return fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ %s\n", state.Status)
	return nil
}

// ClearCommand wipes the stored snapshot. Requires --confirm.
func ClearCommand(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		_, _ = fmt.Fprintln(stdout, "WARNING: This will delete ALL scraped records!")
		_, _ = fmt.Fprintln(stdout)
		_, _ = fmt.Fprintln(stdout, "To confirm, run:")
		_, _ = fmt.Fprintln(stdout, "  closex clear --confirm")
		return nil
	}

	state := svc.Clear(ctx)
	if state.Err != nil {
		return fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ %s\n", state.Status)
	return nil
}
