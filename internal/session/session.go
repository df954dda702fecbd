// Package session composes the page annotation engine into an editing
// session over one open document: the live canvas of the active page, the
// page state store, shared undo history, page navigation, page operations,
// versions and export.
//
// A Session serializes every operation behind one mutex. Debounced timers
// re-acquire it when they fire.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/canvas"
	"github.com/JaimeStill/pdf-annotator/internal/document"
	"github.com/JaimeStill/pdf-annotator/internal/export"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/history"
	"github.com/JaimeStill/pdf-annotator/internal/pagestate"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/versions"
	"github.com/JaimeStill/pdf-annotator/pkg/debounce"
)

// Deps are the collaborators a session uses.
type Deps struct {
	Versions   *versions.Store
	Recent     *recent.Store
	Compositor *export.Compositor
	Renderer   export.Renderer
	Client     *http.Client
	Logger     *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Source identifies the document to open. Data takes precedence; otherwise
// the PDF is fetched from URL.
type Source struct {
	Data []byte
	URL  string
	Name string
}

// Session is one editing session.
type Session struct {
	mu     sync.Mutex
	id     string
	cfg    Config
	deps   Deps
	logger *slog.Logger

	canvas  *canvas.Canvas
	store   *pagestate.Store
	history *history.History
	pages   *document.Pages
	reader  *pdf.Reader
	src     []byte
	docID   string
	name    string

	state      state
	active     int
	lastLoaded string
	tool       Tool
	zoom       float64
	overlayW   float64
	runs       map[int][]annotation.TextRun
	pageOps    []pageSnapshot
	closed     bool

	load    *debounce.Debouncer
	release *debounce.Debouncer
	saving  *debounce.Debouncer
	notes   chan Notification
}

// New creates a session with no open document. cfg must be finalized.
func New(cfg *Config, deps Deps) *Session {
	if deps.Client == nil {
		deps.Client = http.DefaultClient
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	id := uuid.NewString()
	logger := deps.Logger.With("system", "session", "session", id)

	s := &Session{
		id:       id,
		cfg:      *cfg,
		deps:     deps,
		logger:   logger,
		canvas:   canvas.New(geometry.Size{}),
		store:    pagestate.New(cfg.AutosaveDuration(), deps.Logger),
		history:  history.New(),
		pages:    document.NewPages(0),
		state:    newState(),
		tool:     ToolSelect,
		zoom:     100,
		overlayW: cfg.OverlayWidth,
		runs:     make(map[int][]annotation.TextRun),
		load:     debounce.New(cfg.LoadDuration()),
		release:  debounce.New(cfg.ReleaseDuration()),
		saving:   debounce.New(cfg.SavingDuration()),
		notes:    make(chan Notification, cfg.NotificationBuffer),
	}
	s.store.Attach(s)
	s.canvas.On(s.onCanvasEvent)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Open loads a document, replacing any open one. The first page is loaded
// synchronously and an "Initial import" version is recorded. On failure
// the open document, if any, is left untouched and a notification is emitted.
func (s *Session) Open(ctx context.Context, src Source) error {
	data := src.Data
	if len(data) == 0 {
		if src.URL == "" {
			return fmt.Errorf("open: %w", pdf.ErrInvalidPDF)
		}
		fetched, err := document.Fetch(ctx, s.deps.Client, src.URL)
		if err != nil {
			s.notifyAsync(LevelError, "Failed to load PDF from URL")
			return fmt.Errorf("open: %w", err)
		}
		data = fetched
	}

	reader, err := pdf.NewReader(data)
	if err == nil && reader.PageCount() == 0 {
		err = fmt.Errorf("%w: document has no pages", pdf.ErrInvalidPDF)
	}
	if err != nil {
		s.notifyAsync(LevelError, "Failed to load PDF")
		return fmt.Errorf("open: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrNotOpen
	}
	if s.state.busy() {
		return ErrBusy
	}

	s.store.CancelPendingCommit()
	s.store.Replace(nil)
	s.history.Clear()

	s.reader = reader
	s.src = data
	s.docID = document.ID(src.URL)
	s.name = src.Name
	s.pages = document.NewPages(reader.PageCount())
	s.runs = make(map[int][]annotation.TextRun)
	s.pageOps = nil
	s.active = 1

	s.materialize()

	if s.deps.Versions != nil {
		if v := s.deps.Versions.Save(ctx, s.docID, s.store.Snapshot(), "Initial import", ""); v == nil {
			s.notify(LevelWarn, "Initial version could not be saved")
		}
	}

	s.logger.Info("document opened", "doc", s.docID, "pages", s.pages.Len(), "bytes", len(data))
	return nil
}

// Close commits the canvas synchronously and disposes it. The commit is not
// held back by the saving flag.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.store.CancelPendingCommit()
	s.commit(false)

	s.closed = true
	s.load.Cancel()
	s.release.Cancel()
	s.saving.Cancel()
	s.canvas.Dispose()
	close(s.notes)
	s.logger.Info("session closed")
}

// Wait blocks until navigation is idle.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.state.done()
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status describes the session.
type Status struct {
	ID           string          `json:"id"`
	DocumentID   string          `json:"document_id"`
	Name         string          `json:"name,omitempty"`
	Pages        []document.Page `json:"pages"`
	Active       int             `json:"active"`
	ActivePageID string          `json:"active_page_id"`
	Phase        string          `json:"phase"`
	Saving       bool            `json:"saving"`
	Tool         Tool            `json:"tool"`
	Undo         int             `json:"undo"`
	Redo         int             `json:"redo"`
	PageUndo     int             `json:"page_undo"`
	Zoom         float64         `json:"zoom"`
	Overlay      geometry.Size   `json:"overlay"`
	Objects      int             `json:"objects"`
	Hitboxes     int             `json:"hitboxes"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	undo, redo := s.history.Len()
	st := Status{
		ID:         s.id,
		DocumentID: s.docID,
		Name:       s.name,
		Pages:      s.pages.List(),
		Active:     s.active,
		Phase:      s.state.phase.String(),
		Saving:     s.state.saving,
		Tool:       s.tool,
		Undo:       undo,
		Redo:       redo,
		PageUndo:   len(s.pageOps),
		Zoom:       s.zoom,
		Overlay:    s.canvas.Size(),
	}
	if page, ok := s.pages.At(s.active); ok {
		st.ActivePageID = page.ID
	}
	if !s.canvas.Disposed() {
		hitboxes := len(s.canvas.Hitboxes())
		st.Hitboxes = hitboxes
		st.Objects = s.canvas.Len() - hitboxes
	}
	return st
}

// Objects returns copies of the user objects on the active page.
func (s *Session) Objects() []*annotation.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return annotation.CloneAll(s.canvas.UserObjects())
}

// Runs returns the text runs of the active page in overlay space. Run
// operations address them by index.
func (s *Session) Runs() []annotation.TextRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	hitboxes := s.canvas.Hitboxes()
	out := make([]annotation.TextRun, 0, len(hitboxes))
	for _, hb := range hitboxes {
		if hb.Meta.Run != nil {
			out = append(out, *hb.Meta.Run)
		}
	}
	return out
}

// CommitPending writes the canvas back into the page state store when a
// scheduled autosave settles. Autosave is suppressed while navigating and is
// rescheduled while the saving flag is set.
func (s *Session) CommitPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.navigating {
		return
	}
	if s.state.saving {
		s.store.ScheduleCommit()
		return
	}
	s.commit(false)
}

// commit serializes the canvas as the active page's state. It refuses while
// navigating unless forced, and whenever the canvas does not hold the active
// page.
func (s *Session) commit(force bool) (string, bool) {
	if s.state.navigating && !force {
		return "", false
	}
	page, ok := s.pages.At(s.active)
	if !ok || page.ID != s.lastLoaded {
		return "", false
	}

	state, ok := s.store.Commit(page.ID, s.canvas.UserObjects(), !s.canvas.Disposed())
	if !ok {
		return "", false
	}

	s.state.saving = true
	s.saving.Schedule(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state.saving = false
	})
	return state, true
}

// flush replaces a scheduled autosave with an immediate commit.
func (s *Session) flush() {
	s.store.CancelPendingCommit()
	s.commit(false)
}

// materialize loads the active page onto the canvas without emitting events
// and captures the history start state.
func (s *Session) materialize() {
	page, ok := s.pages.At(s.active)
	if !ok {
		return
	}

	s.canvas.SetSize(s.overlaySize(page))
	objs := s.store.Materialize(page.ID)
	s.canvas.Load(objs, s.hitboxes(page))
	s.lastLoaded = page.ID
	s.history.CaptureStart(s.current())
}

// current serializes the user objects on the canvas.
func (s *Session) current() string {
	data, err := annotation.Encode(s.canvas.UserObjects())
	if err != nil {
		s.logger.Error("serialize canvas failed", "error", err)
		return ""
	}
	return string(data)
}

func (s *Session) overlaySize(page document.Page) geometry.Size {
	size, err := s.reader.PageSize(page.SourcePageNumber)
	if err != nil || size.Width <= 0 {
		return geometry.Size{Width: s.overlayW, Height: s.overlayW}
	}
	return geometry.Size{Width: s.overlayW, Height: s.overlayW * size.Height / size.Width}
}

// hitboxes builds the hitboxes of a page from its text runs, caching the
// runs per source page at the current overlay width.
func (s *Session) hitboxes(page document.Page) []*annotation.Object {
	runs, ok := s.runs[page.SourcePageNumber]
	if !ok {
		size, err := s.reader.PageSize(page.SourcePageNumber)
		if err != nil {
			s.logger.Warn("page size unavailable", "page", page.SourcePageNumber, "error", err)
			return nil
		}
		raw, err := s.reader.TextRuns(page.SourcePageNumber)
		if err != nil {
			s.logger.Warn("text extraction failed", "page", page.SourcePageNumber, "error", err)
			raw = nil
		}
		scale := geometry.ScaleFactor(size.Width, s.overlayW)
		runs = pdf.OverlayRuns(raw, scale, size.Height)
		s.runs[page.SourcePageNumber] = runs
	}
	return annotation.Hitboxes(runs)
}

// ready reports ErrNotOpen or ErrBusy when the session cannot be mutated.
func (s *Session) ready() error {
	if s.closed || s.reader == nil {
		return ErrNotOpen
	}
	if s.state.busy() {
		return ErrBusy
	}
	return nil
}

func (s *Session) activePage() document.Page {
	page, _ := s.pages.At(s.active)
	return page
}
