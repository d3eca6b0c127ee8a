// ABOUTME: Migration utility for moving the snapshot between storage backends.
// ABOUTME: Provides dry-run, key renaming and overwrite protection.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/logging"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/store"
)

func main() {
	from := flag.String("from", "", "Source storage DSN (required)")
	to := flag.String("to", "", "Destination storage DSN (required)")
	fromKey := flag.String("from-key", store.DefaultKey, "Key of the snapshot in the source")
	toKey := flag.String("to-key", store.DefaultKey, "Key of the snapshot in the destination")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	force := flag.Bool("force", false, "Overwrite a non-empty destination snapshot")
	flag.Parse()

	logger := logging.New("info", os.Stderr)

	if *from == "" || *to == "" {
		logger.Fatal("Error: -from and -to flags are required")
	}

	if err := migrate(context.Background(), logger, *from, *to, *fromKey, *toKey, *dryRun, *force); err != nil {
		logger.Fatal("Migration failed", "err", err)
	}

	logger.Info("Migration completed successfully")
}

func migrate(ctx context.Context, logger *log.Logger, fromDSN, toDSN, fromKey, toKey string, dryRun, force bool) error {
	src, err := openGateway(fromDSN, fromKey, logger)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := openGateway(toDSN, toKey, logger)
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	defer func() { _ = dst.Close() }()

	snapshot, err := src.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read source snapshot: %w", err)
	}
	logger.Info("Source snapshot", summary(snapshot)...)

	existing, err := dst.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read destination snapshot: %w", err)
	}
	if !isEmpty(existing) {
		logger.Warn("Destination already holds a snapshot", summary(existing)...)
		if !force {
			return fmt.Errorf("destination is not empty; use -force to overwrite")
		}
	}

	if dryRun {
		logger.Info("[DRY RUN] Would copy snapshot", "from", fromDSN, "to", toDSN, "key", toKey)
		return nil
	}

	if err := dst.Write(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to write destination snapshot: %w", err)
	}

	copied, err := dst.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify destination snapshot: %w", err)
	}
	if len(copied.Contacts) != len(snapshot.Contacts) ||
		len(copied.Opportunities) != len(snapshot.Opportunities) ||
		len(copied.Tasks) != len(snapshot.Tasks) {
		return fmt.Errorf("verification failed: destination counts differ from source")
	}
	logger.Info("Destination snapshot", summary(copied)...)
	return nil
}

func openGateway(dsn, key string, logger *log.Logger) (*store.Gateway, error) {
	backend, err := store.Open(dsn, store.Options{})
	if err != nil {
		return nil, err
	}
	return store.NewGateway(backend, key, logger), nil
}

func isEmpty(s *models.Snapshot) bool {
	return len(s.Contacts) == 0 && len(s.Opportunities) == 0 && len(s.Tasks) == 0 && s.LastSync == 0
}

func summary(s *models.Snapshot) []interface{} {
	return []interface{}{
		"contacts", len(s.Contacts),
		"opportunities", len(s.Opportunities),
		"tasks", len(s.Tasks),
		"lastSync", s.LastSync,
	}
}
