// ABOUTME: Application service behind every presentation surface
// ABOUTME: Serializes read-modify-write cycles and re-reads the gateway after each mutation
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/merge"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/store"
	"github.com/harperreed/closex/viz"
	"github.com/oklog/ulid/v2"
)

// State is what a surface renders after an action.
type State struct {
	Snapshot *models.Snapshot `json:"snapshot"`
	Metrics  viz.Metrics      `json:"metrics"`
	Status   string           `json:"status"`
	Err      error            `json:"-"`
}

// Service owns the gateway and scraper. All methods are safe for concurrent use.
type Service struct {
	mu      sync.Mutex
	gateway *store.Gateway
	scraper *scraper.Scraper
	logger  *log.Logger
	now     func() time.Time
	last    *models.Snapshot
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithScraper replaces the default scraper.
func WithScraper(sc *scraper.Scraper) Option {
	return func(s *Service) { s.scraper = sc }
}

func New(gateway *store.Gateway, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
		last:    models.NewSnapshot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scraper == nil {
		s.scraper = scraper.New(logger)
	}
	return s
}

// Close releases the gateway.
func (s *Service) Close() error {
	return s.gateway.Close()
}

// Refresh re-reads the snapshot.
func (s *Service) Refresh(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reread(ctx, models.StatusIdle)
}

// Extract fetches the request's page, scrapes it and merges the records.
func (s *Service) Extract(ctx context.Context, req models.ExtractRequest) (models.ExtractResponse, State) {
	if req.RequestID == "" {
		req.RequestID = ulid.Make().String()
	}
	logger := s.logger.With("request_id", req.RequestID)

	if err := req.Validate(); err != nil {
		logger.Warn("rejected extraction request", "type", req.Type)
		return s.failExtract(models.StatusNoResponse, err)
	}
	if req.Source == nil {
		return s.failExtract(models.StatusNotReachable, scraper.ErrNotReachable)
	}

	logger.Debug("fetching page", "source", req.Source.Describe())
	page, err := req.Source.Fetch(ctx)
	if err != nil {
		logger.Warn("page fetch failed", "source", req.Source.Describe(), "err", err)
		if errors.Is(err, scraper.ErrNotReachable) {
			return s.failExtract(models.StatusNotReachable, err)
		}
		return s.failExtract(models.StatusNoResponse, err)
	}

	result := s.scraper.Extract(page)
	if result.Failed {
		return s.failExtract(models.StatusExtractionError, errors.New(result.Message))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.gateway.Read(ctx)
	if err != nil {
		return s.storageFailure(err)
	}
	merged := merge.Apply(current, result.Contacts, result.Opportunities, result.Tasks, s.now())
	if err := s.gateway.Write(ctx, merged); err != nil {
		return s.storageFailure(err)
	}
	logger.Info("merged extraction", "url", page.URL, "kind", result.Kind, "count", result.Count())

	resp := models.ExtractResponse{Success: true, Message: result.Message, Count: result.Count()}
	return resp, s.reread(ctx, result.Message)
}

// Delete removes one record. A missing id still stamps the sync time.
func (s *Service) Delete(ctx context.Context, kind models.Kind, id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.gateway.Read(ctx)
	if err != nil {
		return s.failed(err)
	}
	updated, removed := merge.Delete(current, kind, id, s.now())
	if err := s.gateway.Write(ctx, updated); err != nil {
		return s.failed(err)
	}

	status := fmt.Sprintf("Deleted %s %s.", singular(kind), id)
	if !removed {
		status = fmt.Sprintf("No %s with id %s.", singular(kind), id)
	}
	s.logger.Info("delete", "kind", kind, "id", id, "removed", removed)
	return s.reread(ctx, status)
}

// Clear removes the stored snapshot entirely.
func (s *Service) Clear(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gateway.Clear(ctx); err != nil {
		return s.failed(err)
	}
	s.logger.Info("storage wiped")
	return s.reread(ctx, models.StatusWiped)
}

// reread loads the snapshot and metrics; callers hold mu.
func (s *Service) reread(ctx context.Context, status string) State {
	snapshot, err := s.gateway.Read(ctx)
	if err != nil {
		return s.failed(err)
	}
	s.last = snapshot
	return State{
		Snapshot: snapshot.Clone(),
		Metrics:  viz.Compute(snapshot, s.now()),
		Status:   status,
	}
}

// failed keeps the last good snapshot in view.
func (s *Service) failed(err error) State {
	s.logger.Error("storage operation failed", "err", err)
	return State{
		Snapshot: s.last.Clone(),
		Metrics:  viz.Compute(s.last, s.now()),
		Status:   models.StatusStorageError,
		Err:      err,
	}
}

func (s *Service) storageFailure(err error) (models.ExtractResponse, State) {
	state := s.failed(err)
	return models.ExtractResponse{Success: false, Message: state.Status}, state
}

func (s *Service) failExtract(status string, err error) (models.ExtractResponse, State) {
	s.mu.Lock()
	last := s.last.Clone()
	s.mu.Unlock()

	return models.ExtractResponse{Success: false, Message: status}, State{
		Snapshot: last,
		Metrics:  viz.Compute(last, s.now()),
		Status:   status,
		Err:      err,
	}
}

func singular(kind models.Kind) string {
	switch kind {
	case models.KindContacts:
		return "contact"
	case models.KindOpportunities:
		return "opportunity"
	case models.KindTasks:
		return "task"
	}
	return string(kind)
}
