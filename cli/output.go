// ABOUTME: Shared output helpers for CLI commands
// ABOUTME: Commands write to stdout, which tests swap for a buffer
package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

var stdout io.Writer = os.Stdout

// interactive reports whether stdout is a terminal.
func interactive() bool {
	f, ok := stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
