package storage_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newFilesystem(t *testing.T, maxSize string) storage.System {
	t.Helper()
	cfg := &storage.Config{Backend: storage.BackendFilesystem, BasePath: t.TempDir(), MaxSize: maxSize}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	sys, err := storage.New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return sys
}

func backends(t *testing.T) map[string]storage.System {
	return map[string]storage.System{
		"filesystem": newFilesystem(t, "1MB"),
		"memory":     storage.NewMemory(0),
	}
}

func TestNew_EmptyBasePath(t *testing.T) {
	cfg := &storage.Config{BasePath: ""}

	if _, err := storage.New(cfg, testLogger()); err == nil {
		t.Fatal("New() succeeded with empty BasePath, want error")
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "store")
	cfg := &storage.Config{BasePath: target}

	if _, err := storage.New(cfg, testLogger()); err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := os.Stat(target); os.IsNotExist(err) {
		t.Error("New() did not create storage directory")
	}
}

func TestStore_Retrieve_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := sys.Store(ctx, "pdf-editor-versions", []byte("hello world")); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			got, err := sys.Retrieve(ctx, "pdf-editor-versions")
			if err != nil {
				t.Fatalf("Retrieve() failed: %v", err)
			}
			if string(got) != "hello world" {
				t.Errorf("Retrieved data = %q, want %q", got, "hello world")
			}

			if err := sys.Store(ctx, "pdf-editor-versions", []byte("updated")); err != nil {
				t.Fatalf("Store() overwrite failed: %v", err)
			}
			got, _ = sys.Retrieve(ctx, "pdf-editor-versions")
			if string(got) != "updated" {
				t.Errorf("Retrieved = %q after overwrite, want %q", got, "updated")
			}
		})
	}
}

func TestRetrieve_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := sys.Retrieve(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Retrieve() error = %v, want %v", err, storage.ErrNotFound)
			}
		})
	}
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sys.Store(ctx, "key", []byte("delete me"))

			if err := sys.Delete(ctx, "key"); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if err := sys.Delete(ctx, "key"); err != nil {
				t.Errorf("Delete() on missing key returned error: %v", err)
			}

			exists, err := sys.Validate(ctx, "key")
			if err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			if exists {
				t.Error("Validate() = true after Delete, want false")
			}
		})
	}
}

func TestInvalidKey(t *testing.T) {
	ctx := context.Background()
	sys := newFilesystem(t, "1MB")

	keys := []string{
		"",
		"../escape.txt",
		"foo/../../escape.txt",
		"/absolute/path.txt",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			if err := sys.Store(ctx, key, []byte("malicious")); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Store(%q) error = %v, want %v", key, err, storage.ErrInvalidKey)
			}
		})
	}

	if err := storage.NewMemory(0).Store(ctx, "", nil); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("memory Store('') error = %v, want %v", err, storage.ErrInvalidKey)
	}
}

func TestStore_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	systems := map[string]storage.System{
		"filesystem": newFilesystem(t, "16B"),
		"memory":     storage.NewMemory(16),
	}

	for name, sys := range systems {
		t.Run(name, func(t *testing.T) {
			if err := sys.Store(ctx, "a", []byte("0123456789")); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			err := sys.Store(ctx, "b", []byte("0123456789"))
			if !errors.Is(err, storage.ErrQuotaExceeded) {
				t.Fatalf("Store() error = %v, want %v", err, storage.ErrQuotaExceeded)
			}

			if err := sys.Store(ctx, "a", []byte("0123456789abcdef")); err != nil {
				t.Errorf("Store() replacing a value within quota failed: %v", err)
			}
		})
	}
}

func TestConfig_Finalize(t *testing.T) {
	cfg := &storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Backend != storage.BackendFilesystem {
		t.Errorf("Backend = %q, want %q", cfg.Backend, storage.BackendFilesystem)
	}
	if cfg.MaxSizeBytes() != 5_000_000 {
		t.Errorf("MaxSizeBytes() = %d, want %d", cfg.MaxSizeBytes(), 5_000_000)
	}
	if cfg.MaxUploadSizeBytes() != 50_000_000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", cfg.MaxUploadSizeBytes(), 50_000_000)
	}
}

func TestConfig_Env(t *testing.T) {
	t.Setenv("TEST_STORAGE_BACKEND", "memory")
	t.Setenv("TEST_STORAGE_MAX_SIZE", "10MB")

	cfg := &storage.Config{}
	env := &storage.Env{Backend: "TEST_STORAGE_BACKEND", MaxSize: "TEST_STORAGE_MAX_SIZE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Backend != storage.BackendMemory {
		t.Errorf("Backend = %q, want %q", cfg.Backend, storage.BackendMemory)
	}
	if cfg.MaxSizeBytes() != 10_000_000 {
		t.Errorf("MaxSizeBytes() = %d, want %d", cfg.MaxSizeBytes(), 10_000_000)
	}
}

func TestConfig_InvalidBackend(t *testing.T) {
	cfg := &storage.Config{Backend: "s3"}
	if err := cfg.Finalize(nil); err == nil {
		t.Fatal("Finalize() succeeded with invalid backend, want error")
	}
}

func TestOpen_PostgresRequiresDB(t *testing.T) {
	cfg := &storage.Config{Backend: storage.BackendPostgres}
	if _, err := storage.Open(context.Background(), cfg, nil, testLogger()); err == nil {
		t.Fatal("Open() succeeded without database, want error")
	}
}
