// ABOUTME: Backend selection from a storage DSN
// ABOUTME: Maps sqlite, badger, charm, postgres, redis and memory schemes to backends
package store

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/harperreed/closex/charm"
	"github.com/harperreed/closex/db"
)

// ErrInvalidDSN is returned when a DSN names no usable location.
var ErrInvalidDSN = errors.New("invalid storage dsn")

// Options carries the settings some backends need beyond the DSN.
type Options struct {
	// DefaultPath is the SQLite file used for an empty DSN.
	DefaultPath string
	Charm       *charm.Config
}

// Open builds the backend named by dsn.
func Open(dsn string, opts Options) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		if opts.DefaultPath == "" {
			return nil, ErrInvalidDSN
		}
		return openSQLite(opts.DefaultPath)
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "", "file", "sqlite", "sqlite3":
		path, err := dsnPath(parsed, dsn)
		if err != nil {
			return nil, err
		}
		return openSQLite(path)
	case "badger":
		dir, err := dsnPath(parsed, dsn)
		if err != nil {
			return nil, err
		}
		return OpenBadgerBackend(dir)
	case "charm":
		cfg := charm.DefaultConfig()
		if opts.Charm != nil {
			*cfg = *opts.Charm
		}
		if parsed.Host != "" {
			cfg.Host = parsed.Host
		}
		client, err := charm.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewCharmBackend(client), nil
	case "postgres", "postgresql":
		database, err := db.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(database), nil
	case "redis", "rediss":
		return NewRedisBackend(dsn)
	case "memory", "mem":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", parsed.Scheme)
	}
}

func openSQLite(path string) (Backend, error) {
	database, err := db.OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteBackend(database), nil
}

// dsnPath pulls a filesystem path out of sqlite://rel.db, sqlite:///abs.db,
// sqlite:rel.db or a bare path.
func dsnPath(parsed *url.URL, raw string) (string, error) {
	if parsed.Scheme == "" {
		return raw, nil
	}
	path := parsed.Host + parsed.Path
	if path == "" {
		path = parsed.Opaque
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidDSN, raw)
	}
	return path, nil
}
