// ABOUTME: Extraction CLI commands
// ABOUTME: Scrapes a live page, a saved file or stdin and merges the result
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/harperreed/closex/config"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/service"
)

// BrowserSourceFactory builds Chrome-backed sources from the browser config.
func BrowserSourceFactory(cfg config.BrowserConfig) func(url string) models.PageSource {
	return func(url string) models.PageSource {
		return scraper.BrowserSource{
			URL:          url,
			Headless:     cfg.Headless,
			Timeout:      cfg.Timeout,
			WaitSelector: cfg.WaitSelector,
			UserDataDir:  cfg.UserDataDir,
		}
	}
}

// ExtractCommand scrapes one page and merges it into the snapshot.
func ExtractCommand(ctx context.Context, svc *service.Service, cfg config.BrowserConfig, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	url := fs.String("url", "", "Page URL to render in Chrome (default: browser.url)")
	file := fs.String("file", "", "Saved HTML page to scrape")
	waitSelector := fs.String("wait-selector", cfg.WaitSelector, "CSS selector to wait for before reading the page")
	headful := fs.Bool("headful", false, "Show the browser window")
	_ = fs.Parse(args)

	if *headful {
		cfg.Headless = false
	}
	cfg.WaitSelector = *waitSelector

	var source models.PageSource
	switch {
	case fs.NArg() > 0 && fs.Arg(0) == "-":
		source = scraper.ReaderSource{Reader: os.Stdin, URL: *url, Name: "stdin"}
	case *file != "":
		source = scraper.FileSource{Path: *file}
	default:
		target := *url
		if target == "" {
			target = cfg.URL
		}
		source = BrowserSourceFactory(cfg)(target)
	}

	resp, state := runExtract(ctx, svc, source)
	if !resp.Success {
		if state.Err != nil {
			return fmt.Errorf("%s: %w", state.Status, state.Err)
		}
		return fmt.Errorf("%s", state.Status)
	}

	_, _ = fmt.Fprintf(stdout, "✓ %s\n", resp.Message)
	_, _ = fmt.Fprintf(stdout, "  Contacts:      %d\n", len(state.Snapshot.Contacts))
	_, _ = fmt.Fprintf(stdout, "  Opportunities: %d\n", len(state.Snapshot.Opportunities))
	_, _ = fmt.Fprintf(stdout, "  Tasks:         %d\n", len(state.Snapshot.Tasks))
	return nil
}

func runExtract(ctx context.Context, svc *service.Service, source models.PageSource) (models.ExtractResponse, service.State) {
	req := models.ExtractRequest{Type: models.ExtractMessageType, Source: source}
	if !interactive() {
		return svc.Extract(ctx, req)
	}

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" %s %s", models.StatusRequesting, source.Describe())
	s.Start()
	defer s.Stop()
	return svc.Extract(ctx, req)
}
