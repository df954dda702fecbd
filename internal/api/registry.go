package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/pkg/pagination"
	"github.com/JaimeStill/pdf-annotator/pkg/query"
)

// Summary describes an open session in listings.
type Summary struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name,omitempty"`
	Pages      int       `json:"pages"`
	Opened     time.Time `json:"opened"`
}

var summarySort = query.Comparators[Summary]{
	"name":   query.Compare(func(s Summary) string { return strings.ToLower(s.Name) }),
	"pages":  query.Compare(func(s Summary) int { return s.Pages }),
	"opened": query.Compare(func(s Summary) int64 { return s.Opened.UnixNano() }),
}

type entry struct {
	session *session.Session
	opened  time.Time
}

// Registry holds the open editing sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	max      int
	cfg      *session.Config
	deps     session.Deps
	logger   *slog.Logger
}

// NewRegistry creates a registry that opens at most max sessions, each
// built from cfg and deps.
func NewRegistry(cfg *session.Config, deps session.Deps, max int, logger *slog.Logger) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*entry),
		max:      max,
		cfg:      cfg,
		deps:     deps,
		logger:   logger.With("system", "registry"),
	}
}

// Open creates a session and opens src in it. A session that fails to open
// is discarded.
func (r *Registry) Open(ctx context.Context, src session.Source) (*session.Session, error) {
	r.mu.RLock()
	full := len(r.sessions) >= r.max
	r.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	s := session.New(r.cfg, r.deps)
	if err := s.Open(ctx, src); err != nil {
		s.Close()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.max {
		s.Close()
		return nil, ErrTooManySessions
	}
	r.sessions[s.ID()] = &entry{session: s, opened: r.deps.Now()}

	r.logger.Info("session opened", "session", s.ID(), "open", len(r.sessions))
	return s, nil
}

// Get returns the open session with the given ID.
func (r *Registry) Get(id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e.session, nil
}

// Delete closes and removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.session.Close()
	r.logger.Info("session closed", "session", id)
	return nil
}

// List returns a page of session summaries. Search matches the document
// name; sort accepts name, pages and opened, defaulting to opened.
func (r *Registry) List(page pagination.PageRequest) pagination.PageResult[Summary] {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	items := make([]Summary, 0, len(entries))
	for _, e := range entries {
		st := e.session.Status()
		items = append(items, Summary{
			ID:         st.ID,
			DocumentID: st.DocumentID,
			Name:       st.Name,
			Pages:      len(st.Pages),
			Opened:     e.opened,
		})
	}
	items = pagination.Filter(items, func(s Summary) bool { return page.Matches(s.Name) })

	query.Sort(items, page.Sort, summarySort, "opened")
	return pagination.Slice(items, page)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Full reports whether the session cap has been reached.
func (r *Registry) Full() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions) >= r.max
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.session.Close()
	}
	r.logger.Info("registry closed", "sessions", len(entries))
}
