package session

import (
	"context"
	"fmt"

	"github.com/JaimeStill/pdf-annotator/internal/versions"
)

// SaveVersion commits the active page and stores every page's state as a
// new version. An empty label becomes "Version N".
func (s *Session) SaveVersion(ctx context.Context, label string) (*versions.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.deps.Versions == nil {
		return nil, ErrVersionNotSaved
	}

	s.flush()
	v := s.deps.Versions.Save(ctx, s.docID, s.store.Snapshot(), label, "")
	if v == nil {
		s.notify(LevelError, "Failed to save version")
		return nil, ErrVersionNotSaved
	}
	s.notify(LevelInfo, fmt.Sprintf("Saved %s", v.Label))
	return v, nil
}

// Versions lists the versions of the open document, newest first.
func (s *Session) Versions(ctx context.Context) ([]versions.Version, error) {
	s.mu.Lock()
	docID := s.docID
	open := !s.closed && s.reader != nil
	s.mu.Unlock()

	if !open {
		return nil, ErrNotOpen
	}
	if s.deps.Versions == nil {
		return []versions.Version{}, nil
	}
	return s.deps.Versions.List(ctx, docID), nil
}

// RestoreVersion replaces every page's state with a version's and reloads
// the active page. Undo history is left as is.
func (s *Session) RestoreVersion(ctx context.Context, versionID string) (*versions.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.deps.Versions == nil {
		return nil, ErrVersionNotFound
	}

	v, ok := s.deps.Versions.Get(ctx, s.docID, versionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, versionID)
	}

	s.store.CancelPendingCommit()
	s.store.Replace(v.Data)
	s.materialize()

	s.logger.Info("version restored", "doc", s.docID, "version", v.VersionNumber)
	s.notify(LevelInfo, fmt.Sprintf("Restored %s", v.Label))
	return v, nil
}
