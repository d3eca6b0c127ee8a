// ABOUTME: Watch CLI command
// ABOUTME: Re-extracts saved HTML pages whenever they change on disk
package cli

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/service"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher debounces change events per file and extracts each settled page.
type Watcher struct {
	svc      *service.Service
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	// pending counts scheduled and running extractions.
	pending sync.WaitGroup
	// done receives each path after its extraction finishes.
	done chan string
}

func NewWatcher(svc *service.Service, debounce time.Duration, logger *log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		svc:      svc,
		debounce: debounce,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		done:     make(chan string, 16),
	}
}

// Done reports paths as their extractions complete.
func (w *Watcher) Done() <-chan string {
	return w.done
}

// Trigger schedules an extraction of path, restarting its debounce timer.
// It does nothing once the watcher is stopped.
func (w *Watcher) Trigger(ctx context.Context, path string) {
	if !isHTML(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()

		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		w.extract(ctx, path)
	})
	w.timers[path] = timer
}

func (w *Watcher) extract(ctx context.Context, path string) {
	resp, state := w.svc.Extract(ctx, models.ExtractRequest{
		Type:   models.ExtractMessageType,
		Source: scraper.FileSource{Path: path},
	})
	if resp.Success {
		w.logger.Info("extracted", "file", filepath.Base(path), "message", resp.Message)
	} else {
		w.logger.Warn("extraction failed", "file", filepath.Base(path), "status", state.Status, "err", state.Err)
	}
	select {
	case w.done <- path:
	default:
	}
}

// Stop cancels pending extractions and waits for running ones to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.pending.Wait()
}

// Run watches dir until ctx is cancelled. The watcher is stopped on return.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	defer w.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.Trigger(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

func isHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// WatchCommand watches a directory of saved pages.
func WatchCommand(ctx context.Context, svc *service.Service, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	debounce := fs.Duration("debounce", defaultDebounce, "Quiet period before re-extracting a changed file")
	_ = fs.Parse(args)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	_, _ = fmt.Fprintf(stdout, "Watching %s for saved pages (debounce: %s)\n", dir, *debounce)
	_, _ = fmt.Fprintln(stdout, "Press Ctrl+C to stop")

	return NewWatcher(svc, *debounce, logger).Run(ctx, dir)
}
