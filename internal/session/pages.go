package session

import (
	"github.com/JaimeStill/pdf-annotator/internal/document"
	"github.com/JaimeStill/pdf-annotator/internal/history"
)

// pageSnapshot is the pre-operation state restored by UndoPageOperation.
type pageSnapshot struct {
	pages  []document.Page
	states map[string]string
	active int
}

// DuplicatePage inserts a copy of a page, with its annotations, directly
// after it.
func (s *Session) DuplicatePage(pageID string) (document.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return document.Page{}, err
	}

	snap := s.snapshot()
	dup, err := s.pages.Duplicate(pageID, s.store)
	if err != nil {
		return document.Page{}, err
	}
	s.pushPageOp(snap)

	active := s.activePage()
	if index, ok := s.pages.Find(active.ID); ok {
		s.active = index
	}

	s.logger.Info("page duplicated", "page", pageID, "copy", dup.ID, "index", dup.Index)
	return dup, nil
}

// DeletePage removes a page and its annotations. The last remaining page
// cannot be deleted. Deleting the active page keeps the active position,
// clamped to the new page count, and loads the page now there.
func (s *Session) DeletePage(pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	snap := s.snapshot()
	before := s.activePage()
	active, err := s.pages.Delete(pageID, s.active, s.store)
	if err != nil {
		return err
	}
	s.pushPageOp(snap)

	dropped := s.history.Prune(func(e history.Entry) bool { return e.PageID != pageID })
	s.active = active
	if s.activePage().ID != before.ID {
		s.materialize()
	}

	s.logger.Info("page deleted", "page", pageID, "active", s.active, "history_dropped", dropped)
	return nil
}

// MovePage relocates the page at position from to position to. The active
// position is kept, so the active page changes when the move crosses it.
func (s *Session) MovePage(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	snap := s.snapshot()
	before := s.activePage()
	if err := s.pages.Move(from, to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	s.pushPageOp(snap)

	if s.activePage().ID != before.ID {
		s.materialize()
	}
	return nil
}

// UndoPageOperation restores the page list and page states from before the
// newest duplicate, delete or move.
func (s *Session) UndoPageOperation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if len(s.pageOps) == 0 {
		return ErrNothingToUndo
	}

	snap := s.pageOps[len(s.pageOps)-1]
	s.pageOps = s.pageOps[:len(s.pageOps)-1]

	s.store.CancelPendingCommit()
	s.pages.Restore(snap.pages)
	s.store.Replace(snap.states)
	s.active = min(max(snap.active, 1), s.pages.Len())
	s.history.Prune(func(e history.Entry) bool {
		_, ok := s.pages.Find(e.PageID)
		return ok
	})
	s.materialize()

	s.logger.Info("page operation undone", "pages", s.pages.Len(), "active", s.active)
	return nil
}

// snapshot commits the canvas and captures the pages and states.
func (s *Session) snapshot() pageSnapshot {
	s.flush()
	return pageSnapshot{
		pages:  s.pages.List(),
		states: s.store.Snapshot(),
		active: s.active,
	}
}

func (s *Session) pushPageOp(snap pageSnapshot) {
	s.pageOps = append(s.pageOps, snap)
	if over := len(s.pageOps) - s.cfg.PageUndoLimit; over > 0 {
		s.pageOps = s.pageOps[over:]
	}
}
