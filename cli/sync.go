// ABOUTME: Charm sync CLI command router
// ABOUTME: Dispatches link, status, now and wipe to the charm package
package cli

import (
	"fmt"

	"github.com/harperreed/closex/charm"
)

// SyncCommand routes "closex sync <subcommand>".
func SyncCommand(client *charm.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("sync requires a subcommand (link, status, now, wipe)")
	}

	switch args[0] {
	case "link":
		return charm.SyncLinkCommand(client, args[1:])
	case "status":
		return charm.SyncStatusCommand(client, args[1:])
	case "now":
		return charm.SyncNowCommand(client, args[1:])
	case "wipe":
		return charm.SyncWipeCommand(client, args[1:])
	default:
		return fmt.Errorf("unknown sync command: %s", args[0])
	}
}
