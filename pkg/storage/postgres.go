package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrations embed.FS

type postgres struct {
	db      *sql.DB
	maxSize int64
	logger  *slog.Logger
}

// NewPostgres creates a store backed by the kv_store table, applying any
// pending schema migrations first.
func NewPostgres(ctx context.Context, db *sql.DB, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "backend", "postgres")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("storage initialized", "max_size", cfg.MaxSize)
	return &postgres{
		db:      db,
		maxSize: cfg.MaxSizeBytes(),
		logger:  logger,
	}, nil
}

// Migrate applies the embedded kv_store migrations to db.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (p *postgres) Store(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if p.maxSize > 0 {
		var used int64
		q := `SELECT COALESCE(SUM(octet_length(value)), 0) FROM kv_store WHERE key <> $1`
		if err := tx.QueryRowContext(ctx, q, key).Scan(&used); err != nil {
			return fmt.Errorf("measure usage: %w", err)
		}
		if used+int64(len(data)) > p.maxSize {
			return fmt.Errorf("%w: %d of %d bytes used, write needs %d", ErrQuotaExceeded, used, p.maxSize, len(data))
		}
	}

	q := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := tx.ExecContext(ctx, q, key, data); err != nil {
		return mapError("store value", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (p *postgres) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	var data []byte
	err := p.db.
		QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).
		Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError("retrieve value", err)
	}
	return data, nil
}

func (p *postgres) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return mapError("delete value", err)
	}
	return nil
}

func (p *postgres) Validate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}

	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM kv_store WHERE key = $1)`
	if err := p.db.QueryRowContext(ctx, q, key).Scan(&exists); err != nil {
		return false, mapError("validate key", err)
	}
	return exists, nil
}

func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "53100", "54000":
			return fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
		case "42501":
			return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
