// ABOUTME: Config CLI command
// ABOUTME: Writes the effective settings to the config file and reports its location
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/closex/config"
)

// ConfigCommand handles "config init" and "config path".
func ConfigCommand(cfg config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: closex config <init|path>")
	}

	switch args[0] {
	case "path":
		_, _ = fmt.Fprintln(stdout, config.Path())
		return nil
	case "init":
		fs := flag.NewFlagSet("config init", flag.ExitOnError)
		force := fs.Bool("force", false, "Overwrite an existing config file")
		_ = fs.Parse(args[1:])

		path := config.Path()
		if _, err := os.Stat(path); err == nil && !*force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}

		if err := config.Save(cfg); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}
