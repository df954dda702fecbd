// Package infrastructure provides core service initialization for application startup.
// It assembles the common dependencies (logging, database, storage) the API module requires.
package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/pkg/database"
	"github.com/JaimeStill/pdf-annotator/pkg/logging"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Infrastructure holds the core systems shared by the service.
// Database is nil unless the storage backend is postgres.
type Infrastructure struct {
	Logger   *slog.Logger
	Database *sql.DB
	Storage  storage.System
}

// New creates an Infrastructure from the application configuration.
// The database connection is opened and migrated only when the storage
// backend needs it.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	logger := logging.New(&cfg.Logging)

	var db *sql.DB
	if cfg.UsesDatabase() {
		conn, err := database.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		db = conn
		logger.Info("database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)
	}

	store, err := storage.Open(ctx, &cfg.Storage, db, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	logger.Info("storage ready", "backend", cfg.Storage.Backend)

	return &Infrastructure{
		Logger:   logger,
		Database: db,
		Storage:  store,
	}, nil
}

// Close releases the database connection, if one was opened.
func (i *Infrastructure) Close() error {
	if i.Database == nil {
		return nil
	}
	if err := i.Database.Close(); err != nil {
		return fmt.Errorf("database close failed: %w", err)
	}
	return nil
}
