// Package versions persists named whole-document snapshots of page state.
// All documents share one record under StorageKey, mapping each document ID
// to its versions newest first.
package versions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/pdf-annotator/pkg/storage"
	"github.com/google/uuid"
)

// StorageKey is the storage key of the versions record.
const StorageKey = "pdf-editor-versions"

// DefaultMax is the number of versions kept per document.
const DefaultMax = 10

// Version is a named snapshot of every page's state.
type Version struct {
	ID            string            `json:"id"`
	VersionNumber int               `json:"versionNumber"`
	Timestamp     int64             `json:"timestamp"`
	Label         string            `json:"label"`
	Data          map[string]string `json:"data"`
	Preview       string            `json:"preview,omitempty"`
}

// Time returns the creation time.
func (v *Version) Time() time.Time {
	return time.UnixMilli(v.Timestamp)
}

// stored is the persisted form. Records written before explicit numbering
// carry no versionNumber.
type stored struct {
	ID            string            `json:"id"`
	VersionNumber *int              `json:"versionNumber,omitempty"`
	Timestamp     int64             `json:"timestamp"`
	Label         string            `json:"label"`
	Data          map[string]string `json:"data"`
	Preview       string            `json:"preview,omitempty"`
}

type record map[string][]stored

// Store reads and writes versions through a storage system.
type Store struct {
	storage storage.System
	max     int
	logger  *slog.Logger
}

// New creates a version store keeping at most limit versions per document.
func New(sys storage.System, limit int, logger *slog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultMax
	}
	return &Store{
		storage: sys,
		max:     limit,
		logger:  logger.With("system", "versions"),
	}
}

// List returns the versions of docID newest first. Versions without a number
// are numbered by position, the oldest being 1. Read failures are logged and
// yield an empty list.
func (s *Store) List(ctx context.Context, docID string) []Version {
	rec, err := s.read(ctx)
	if err != nil {
		s.logger.Error("load versions failed", "doc", docID, "error", err)
		return []Version{}
	}
	return numbered(rec[docID])
}

// Save prepends a snapshot of data as the next version of docID and trims the
// list to the configured maximum. An empty label becomes "Version N". Save
// failures are logged and return nil.
func (s *Store) Save(ctx context.Context, docID string, data map[string]string, label, preview string) *Version {
	v, err := s.save(ctx, docID, data, label, preview)
	if err != nil {
		s.logger.Error("save version failed", "doc", docID, "error", err)
		if errors.Is(err, storage.ErrQuotaExceeded) {
			s.logger.Error("storage quota exceeded, consider clearing old versions", "doc", docID)
		}
		return nil
	}
	s.logger.Info("version saved", "doc", docID, "version", v.VersionNumber, "label", v.Label)
	return v
}

func (s *Store) save(ctx context.Context, docID string, data map[string]string, label, preview string) (*Version, error) {
	rec, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	existing := rec[docID]
	number := 1
	if len(existing) > 0 {
		highest := 0
		for _, v := range existing {
			if v.VersionNumber != nil {
				highest = max(highest, *v.VersionNumber)
			}
		}
		number = highest + 1
	}

	if label == "" {
		label = fmt.Sprintf("Version %d", number)
	}

	entry := stored{
		ID:            uuid.NewString(),
		VersionNumber: &number,
		Timestamp:     time.Now().UnixMilli(),
		Label:         label,
		Data:          data,
		Preview:       preview,
	}

	list := append([]stored{entry}, existing...)
	if len(list) > s.max {
		list = list[:s.max]
	}
	rec[docID] = list

	if err := s.write(ctx, rec); err != nil {
		return nil, err
	}

	v := toVersion(entry, number)
	return &v, nil
}

// Get returns the version of docID with the given ID.
func (s *Store) Get(ctx context.Context, docID, versionID string) (*Version, bool) {
	list := s.List(ctx, docID)
	i := slices.IndexFunc(list, func(v Version) bool { return v.ID == versionID })
	if i < 0 {
		return nil, false
	}
	return &list[i], true
}

// Latest returns the version of docID with the highest number.
func (s *Store) Latest(ctx context.Context, docID string) (*Version, bool) {
	list := s.List(ctx, docID)
	if len(list) == 0 {
		return nil, false
	}
	latest := slices.MaxFunc(list, func(a, b Version) int { return a.VersionNumber - b.VersionNumber })
	return &latest, true
}

// Clear removes every version of docID.
func (s *Store) Clear(ctx context.Context, docID string) error {
	rec, err := s.read(ctx)
	if err != nil {
		s.logger.Error("clear versions failed", "doc", docID, "error", err)
		return err
	}
	delete(rec, docID)
	if err := s.write(ctx, rec); err != nil {
		s.logger.Error("clear versions failed", "doc", docID, "error", err)
		return err
	}
	return nil
}

func (s *Store) read(ctx context.Context) (record, error) {
	data, err := s.storage.Retrieve(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return record{}, nil
		}
		return nil, fmt.Errorf("read versions: %w", err)
	}

	rec := record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse versions: %w", err)
	}
	return rec, nil
}

func (s *Store) write(ctx context.Context, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode versions: %w", err)
	}
	if err := s.storage.Store(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("write versions: %w", err)
	}
	return nil
}

func numbered(list []stored) []Version {
	out := make([]Version, len(list))
	for i, v := range list {
		n := len(list) - i
		if v.VersionNumber != nil {
			n = *v.VersionNumber
		}
		out[i] = toVersion(v, n)
	}
	return out
}

func toVersion(v stored, number int) Version {
	return Version{
		ID:            v.ID,
		VersionNumber: number,
		Timestamp:     v.Timestamp,
		Label:         v.Label,
		Data:          v.Data,
		Preview:       v.Preview,
	}
}
