// ABOUTME: Persistence gateway for the whole-document snapshot
// ABOUTME: Validates on read, re-keys on write, and wraps every failure in ErrStorage
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/models"
)

// DefaultKey is the name of the single stored snapshot entry.
const DefaultKey = "close_data"

// Gateway reads and writes the snapshot as one value in a Backend.
type Gateway struct {
	backend Backend
	key     string
	logger  *log.Logger
}

// NewGateway wraps backend. An empty key selects DefaultKey; a nil logger
// uses the charm log default.
func NewGateway(backend Backend, key string, logger *log.Logger) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{backend: backend, key: key, logger: logger}
}

// Key returns the snapshot entry name.
func (g *Gateway) Key() string {
	return g.key
}

// Read returns the stored snapshot, or an empty one when nothing valid is stored.
func (g *Gateway) Read(ctx context.Context) (*models.Snapshot, error) {
	data, err := g.backend.Get(ctx, g.key)
	if errors.Is(err, ErrNotFound) {
		return models.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, g.key, err)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		g.logger.Warn("stored snapshot is invalid, using empty snapshot", "key", g.key, "err", err)
		return models.NewSnapshot(), nil
	}
	return snapshot, nil
}

// Write replaces the stored snapshot.
func (g *Gateway) Write(ctx context.Context, snapshot *models.Snapshot) error {
	out := snapshot.Clone()
	out.Normalize()

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrStorage, err)
	}
	if err := g.backend.Set(ctx, g.key, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, g.key, err)
	}
	g.logger.Debug("snapshot written", "key", g.key, "bytes", len(data))
	return nil
}

// Clear removes the stored snapshot. Clearing an absent snapshot succeeds.
func (g *Gateway) Clear(ctx context.Context) error {
	if err := g.backend.Delete(ctx, g.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: clear %s: %v", ErrStorage, g.key, err)
	}
	return nil
}

// Close releases the backend.
func (g *Gateway) Close() error {
	return g.backend.Close()
}

func decodeSnapshot(data []byte) (*models.Snapshot, error) {
	schema, err := snapshotValidator()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("not json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	snapshot.Normalize()
	return &snapshot, nil
}
