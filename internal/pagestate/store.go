// Package pagestate holds the serialized annotation state of every page,
// keyed by page ID, and the debounced commit that keeps it current.
package pagestate

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/pkg/debounce"
)

// Committer writes the live canvas back into the store. The store calls it
// when a scheduled commit settles or is flushed.
type Committer interface {
	CommitPending()
}

// Store maps page IDs to serialized page state. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	states    map[string]string
	logger    *slog.Logger
	autosave  *debounce.Debouncer
	committer Committer
}

// New creates an empty store whose scheduled commits settle after delay.
func New(delay time.Duration, logger *slog.Logger) *Store {
	return &Store{
		states:   make(map[string]string),
		logger:   logger.With("system", "pagestate"),
		autosave: debounce.New(delay),
	}
}

// Attach sets the committer invoked by scheduled commits.
func (s *Store) Attach(c Committer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committer = c
}

// Commit serializes objs as the state of pageID. It returns ("", false)
// without writing when pageID is empty or hasCanvas is false. Hitboxes are
// never written.
func (s *Store) Commit(pageID string, objs []*annotation.Object, hasCanvas bool) (string, bool) {
	if pageID == "" || !hasCanvas {
		return "", false
	}

	data, err := annotation.Encode(objs)
	if err != nil {
		s.logger.Error("commit failed", "page", pageID, "error", err)
		return "", false
	}
	state := string(data)

	s.mu.Lock()
	s.states[pageID] = state
	s.mu.Unlock()

	return state, true
}

// Load returns the stored state of pageID.
func (s *Store) Load(pageID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[pageID]
	return state, ok
}

// Set stores state for pageID verbatim.
func (s *Store) Set(pageID, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[pageID] = state
}

// Delete removes the state of pageID.
func (s *Store) Delete(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, pageID)
}

// Copy duplicates the state of from onto to. It reports false when from has
// no state, in which case to is left untouched.
func (s *Store) Copy(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[from]
	if !ok {
		return false
	}
	s.states[to] = state
	return true
}

// Snapshot returns a copy of every page's state.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.states)
}

// Replace discards all state and installs a copy of states.
func (s *Store) Replace(states map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]string, len(states))
	maps.Copy(s.states, states)
}

// Len returns the number of pages with stored state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Materialize decodes the stored state of pageID into fresh objects. Missing
// state yields an empty page. State that fails strict decoding is retried
// leniently; state that cannot be decoded at all is logged and treated as
// empty.
func (s *Store) Materialize(pageID string) []*annotation.Object {
	state, ok := s.Load(pageID)
	if !ok || state == "" {
		return nil
	}
	return s.decode(pageID, state)
}

// MaterializeState decodes state that has not been stored, such as a history
// entry, with the same fallback rules as Materialize.
func (s *Store) MaterializeState(pageID, state string) []*annotation.Object {
	if state == "" {
		return nil
	}
	return s.decode(pageID, state)
}

func (s *Store) decode(pageID, state string) []*annotation.Object {
	objs, err := annotation.Decode([]byte(state))
	if err == nil {
		return objs
	}

	objs, skipped, lerr := annotation.DecodeLenient([]byte(state))
	if lerr != nil {
		s.logger.Warn("page state unreadable, loading empty page", "page", pageID, "error", err)
		return nil
	}
	s.logger.Warn("page state partially recovered", "page", pageID, "skipped", skipped, "error", err)
	return objs
}

// ScheduleCommit restarts the autosave window. When it settles the attached
// committer runs.
func (s *Store) ScheduleCommit() {
	s.autosave.Schedule(s.commitPending)
}

// FlushPendingCommit runs a scheduled commit synchronously and reports
// whether one was pending. Callers must not hold locks the committer takes.
func (s *Store) FlushPendingCommit() bool {
	return s.autosave.Flush()
}

// CancelPendingCommit drops a scheduled commit without running it.
func (s *Store) CancelPendingCommit() bool {
	return s.autosave.Cancel()
}

// CommitPending reports whether a commit is scheduled.
func (s *Store) CommitPending() bool {
	return s.autosave.Pending()
}

func (s *Store) commitPending() {
	s.mu.RLock()
	c := s.committer
	s.mu.RUnlock()
	if c != nil {
		c.CommitPending()
	}
}
