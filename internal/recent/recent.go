// Package recent keeps the most-recently-used image and signature sources
// that populate quick-insert menus. The lists live under their own storage
// keys and never share a record with version data.
package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Kind selects one recent list.
type Kind string

const (
	Images     Kind = "images"
	Signatures Kind = "signatures"
)

// DefaultLimit is the number of entries kept per list.
const DefaultLimit = 5

// ErrUnknownKind is returned for a list name other than images or signatures.
var ErrUnknownKind = errors.New("recent: unknown list")

// ParseKind resolves a list name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Images, Signatures:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Key returns the storage key of the list.
func (k Kind) Key() string {
	switch k {
	case Signatures:
		return "pdf-editor-recent-signatures"
	default:
		return "pdf-editor-recent-images"
	}
}

// Store reads and writes the recent lists.
type Store struct {
	storage storage.System
	limit   int
	logger  *slog.Logger
}

// New creates a recent store keeping at most limit entries per list.
func New(sys storage.System, limit int, logger *slog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		storage: sys,
		limit:   limit,
		logger:  logger.With("system", "recent"),
	}
}

// List returns the entries of k, most recent first.
func (s *Store) List(ctx context.Context, k Kind) ([]string, error) {
	data, err := s.storage.Retrieve(ctx, k.Key())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", k, err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", k, err)
	}
	return list, nil
}

// Add moves src to the front of k, dropping any earlier copy and trimming the
// list to the limit.
func (s *Store) Add(ctx context.Context, k Kind, src string) error {
	if src == "" {
		return nil
	}

	list, err := s.List(ctx, k)
	if err != nil {
		s.logger.Warn("recent list unreadable, starting over", "list", k, "error", err)
		list = nil
	}

	list = slices.DeleteFunc(list, func(v string) bool { return v == src })
	list = append([]string{src}, list...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if err := s.storage.Store(ctx, k.Key(), data); err != nil {
		return fmt.Errorf("write %s: %w", k, err)
	}
	return nil
}
