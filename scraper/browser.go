// ABOUTME: Headless Chrome page source
// ABOUTME: Renders a live CRM page with chromedp and returns its outer HTML
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/harperreed/closex/models"
)

const defaultBrowserTimeout = 30 * time.Second

// BrowserSource renders URL in Chrome so client-side tables are populated.
type BrowserSource struct {
	URL          string
	Headless     bool
	Timeout      time.Duration
	WaitSelector string
	// UserDataDir reuses a Chrome profile so an existing CRM login applies.
	UserDataDir string
}

func (b BrowserSource) Fetch(ctx context.Context) (*models.Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if !b.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if b.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(b.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultBrowserTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	tasks := []chromedp.Action{
		chromedp.Navigate(b.URL),
		chromedp.WaitReady("body"),
	}
	if b.WaitSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(b.WaitSelector))
	}

	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, fmt.Errorf("%w: navigation failed: %v", ErrNotReachable, err)
	}

	var location, pageHTML string
	if err := chromedp.Run(timeoutCtx, chromedp.Location(&location)); err != nil {
		location = b.URL
	}
	if err := chromedp.Run(timeoutCtx, chromedp.OuterHTML("html", &pageHTML)); err != nil {
		return nil, fmt.Errorf("%w: reading html: %v", ErrNotReachable, err)
	}
	return &models.Page{URL: location, HTML: pageHTML}, nil
}

func (b BrowserSource) Describe() string {
	return b.URL
}
