// Package storage provides the key-value store that stands in for browser
// local storage. Values are opaque byte slices under flat string keys, and
// every backend enforces a total size quota.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// System defines the key-value operations shared by all backends.
type System interface {
	// Store saves data at the specified key, overwriting any existing value.
	// Returns ErrInvalidKey if the key is empty or contains path traversal.
	// Returns ErrQuotaExceeded if the write would exceed the size quota.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete deletes the data at the specified key.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Validate reports whether a key exists and is accessible.
	Validate(ctx context.Context, key string) (bool, error)
}

// Open creates the backend selected by cfg.Backend. The postgres backend
// requires db; the others ignore it.
func Open(ctx context.Context, cfg *Config, db *sql.DB, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendFilesystem:
		return New(cfg, logger)
	case BackendMemory:
		return NewMemory(cfg.MaxSizeBytes()), nil
	case BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires a database connection")
		}
		return NewPostgres(ctx, db, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
