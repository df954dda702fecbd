package session

import (
	"context"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/history"
)

// Navigate switches the active page to the 1-based index. The outgoing page
// is force-committed, then after the settle delay the active index changes
// and the incoming page loads once the navigation lock is released.
//
// Requests for the current page, an out-of-range index, or while another
// navigation is in flight are ignored.
func (s *Session) Navigate(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.closed || s.reader == nil {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if index == s.active || index < 1 || index > s.pages.Len() || !s.state.begin() {
		s.mu.Unlock()
		return nil
	}

	s.store.CancelPendingCommit()
	s.commit(true)
	from := s.active
	s.mu.Unlock()

	timer := time.NewTimer(s.cfg.SettleDuration())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.state.abort()
		s.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotOpen
	}

	s.active = index
	s.lastLoaded = ""
	s.state.switching()
	s.load.Schedule(s.loadActive)
	s.release.Schedule(s.releaseNavigation)

	s.logger.Debug("page switched", "from", from, "to", index)
	return nil
}

// loadActive materializes the active page, retrying while the navigation
// lock is held.
func (s *Session) loadActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.state.loadPending {
		return
	}

	s.state.loading()
	if s.state.navigating {
		s.load.ScheduleAfter(s.cfg.RetryDuration(), s.loadActive)
		return
	}

	s.materialize()
	s.state.loaded()
}

func (s *Session) releaseNavigation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.release()
}

// Undo restores the newest undo entry. An entry for the active page is
// applied to the canvas; an entry for another page is stored as that page's
// state and the session navigates to it.
func (s *Session) Undo(ctx context.Context) error {
	return s.step(ctx, s.history.PopUndo)
}

// Redo re-applies the newest redo entry, mirroring Undo.
func (s *Session) Redo(ctx context.Context) error {
	return s.step(ctx, s.history.PopRedo)
}

func (s *Session) step(ctx context.Context, pop func(history.Entry) (history.Entry, bool)) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.history.Lock()
	page := s.activePage()
	current := history.Entry{PageID: page.ID, PageIndex: s.active, State: s.current()}

	e, ok := pop(current)
	if !ok {
		s.history.Unlock()
		s.mu.Unlock()
		return nil
	}

	target, found := s.pages.Find(e.PageID)
	switch {
	case !found:
		s.logger.Warn("history entry for deleted page discarded", "page", e.PageID)
	case e.PageID == page.ID:
		s.store.CancelPendingCommit()
		objs := s.store.MaterializeState(e.PageID, e.State)
		s.canvas.Load(objs, s.canvas.Hitboxes())
		s.store.Set(e.PageID, e.State)
		s.history.CaptureStart(e.State)
	default:
		s.store.Set(e.PageID, e.State)
	}
	s.history.Unlock()
	s.mu.Unlock()

	if found && e.PageID != page.ID {
		return s.Navigate(ctx, target)
	}
	return nil
}
