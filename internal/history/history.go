// Package history implements the shared undo and redo stacks of an editing
// session. Entries are whole-page snapshots tagged with the page they belong
// to, so a single pair of stacks spans every page of the document.
package history

import "slices"

// Entry is one restorable page state.
type Entry struct {
	PageID    string `json:"page_id"`
	PageIndex int    `json:"page_index"`
	State     string `json:"state"`
}

// Valid reports whether the entry identifies a page and carries state.
func (e Entry) Valid() bool {
	return e.PageID != "" && e.State != ""
}

// History tracks undo and redo stacks plus the start state of the gesture in
// progress. It is not safe for concurrent use.
type History struct {
	undo     []Entry
	redo     []Entry
	start    string
	hasStart bool
	locked   bool
}

// New returns empty history.
func New() *History {
	return &History{}
}

// CaptureStart records the state a subsequent change will be undone to.
func (h *History) CaptureStart(state string) {
	h.start = state
	h.hasStart = true
}

// Start returns the captured start state.
func (h *History) Start() (string, bool) {
	return h.start, h.hasStart
}

// Record pushes the captured start state as an undo entry for the given page,
// clears the redo stack, and makes current the new start state. It does
// nothing while locked and reports whether an entry was pushed.
func (h *History) Record(pageID string, pageIndex int, current string) bool {
	if h.locked {
		return false
	}

	pushed := false
	if h.hasStart && pageID != "" {
		h.undo = append(h.undo, Entry{PageID: pageID, PageIndex: pageIndex, State: h.start})
		h.redo = nil
		pushed = true
	}
	h.CaptureStart(current)
	return pushed
}

// Push adds an explicit undo entry and clears redo.
func (h *History) Push(e Entry) {
	h.undo = append(h.undo, e)
	h.redo = nil
}

// PopUndo removes the newest undo entry and pushes current onto the redo
// stack when it is valid.
func (h *History) PopUndo(current Entry) (Entry, bool) {
	e, ok := pop(&h.undo)
	if !ok {
		return Entry{}, false
	}
	if current.Valid() {
		h.redo = append(h.redo, current)
	}
	return e, true
}

// PopRedo removes the newest redo entry and pushes current onto the undo
// stack when it is valid.
func (h *History) PopRedo(current Entry) (Entry, bool) {
	e, ok := pop(&h.redo)
	if !ok {
		return Entry{}, false
	}
	if current.Valid() {
		h.undo = append(h.undo, current)
	}
	return e, true
}

// Lock suppresses Record until Unlock.
func (h *History) Lock() {
	h.locked = true
}

// Unlock resumes recording.
func (h *History) Unlock() {
	h.locked = false
}

// Locked reports whether recording is suppressed.
func (h *History) Locked() bool {
	return h.locked
}

// Len returns the depths of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// CanUndo reports whether an undo entry exists.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo entry exists.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Prune drops entries from both stacks for which keep returns false and
// returns how many were dropped.
func (h *History) Prune(keep func(Entry) bool) int {
	n := len(h.undo) + len(h.redo)
	h.undo = slices.DeleteFunc(h.undo, func(e Entry) bool { return !keep(e) })
	h.redo = slices.DeleteFunc(h.redo, func(e Entry) bool { return !keep(e) })
	return n - len(h.undo) - len(h.redo)
}

// Clear drops both stacks and the start state.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.start = ""
	h.hasStart = false
}

func pop(stack *[]Entry) (Entry, bool) {
	s := *stack
	if len(s) == 0 {
		return Entry{}, false
	}
	e := s[len(s)-1]
	*stack = s[:len(s)-1]
	return e, true
}
