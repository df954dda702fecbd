package document

import (
	"slices"

	"github.com/google/uuid"
)

// Page is one entry in the display order. Duplicated pages share their
// SourcePageNumber and differ by ID.
type Page struct {
	ID               string `json:"id"`
	Index            int    `json:"index"`
	SourcePageNumber int    `json:"source_page"`
}

// States is the page state storage page operations keep in step.
type States interface {
	Copy(from, to string) bool
	Delete(pageID string)
}

// Pages is the ordered page list. Positions are 1-based. It is not safe for
// concurrent use.
type Pages struct {
	pages []Page
}

// NewPages creates one page per source page, in source order.
func NewPages(count int) *Pages {
	p := &Pages{pages: make([]Page, count)}
	for i := range count {
		p.pages[i] = Page{ID: uuid.NewString(), SourcePageNumber: i + 1}
	}
	p.reindex()
	return p
}

// Len returns the number of pages.
func (p *Pages) Len() int {
	return len(p.pages)
}

// List returns a copy of the pages in display order.
func (p *Pages) List() []Page {
	return slices.Clone(p.pages)
}

// At returns the page at a 1-based position.
func (p *Pages) At(index int) (Page, bool) {
	if index < 1 || index > len(p.pages) {
		return Page{}, false
	}
	return p.pages[index-1], true
}

// Find returns the 1-based position of the page with the given ID.
func (p *Pages) Find(id string) (int, bool) {
	i := slices.IndexFunc(p.pages, func(pg Page) bool { return pg.ID == id })
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}

// Duplicate inserts a copy of the page with the given ID immediately after
// it, copying its state. The copy gets a new ID and the same source page.
func (p *Pages) Duplicate(id string, states States) (Page, error) {
	index, ok := p.Find(id)
	if !ok {
		return Page{}, ErrPageNotFound
	}

	src := p.pages[index-1]
	dup := Page{ID: uuid.NewString(), SourcePageNumber: src.SourcePageNumber}
	p.pages = slices.Insert(p.pages, index, dup)
	p.reindex()

	states.Copy(src.ID, dup.ID)
	return p.pages[index], nil
}

// Delete removes the page with the given ID and its state, returning the
// active position that keeps the viewer on a valid page. Deleting the active
// page keeps its position, clamped to the new length; deleting an earlier
// page shifts the active position down by one.
func (p *Pages) Delete(id string, active int, states States) (int, error) {
	if len(p.pages) <= 1 {
		return active, ErrLastPage
	}

	index, ok := p.Find(id)
	if !ok {
		return active, ErrPageNotFound
	}

	p.pages = slices.Delete(p.pages, index-1, index)
	p.reindex()
	states.Delete(id)

	switch {
	case index == active:
		return min(active, len(p.pages)), nil
	case index < active:
		return active - 1, nil
	default:
		return active, nil
	}
}

// Move relocates the page at position from to position to, shifting the
// pages between them.
func (p *Pages) Move(from, to int) error {
	if from < 1 || from > len(p.pages) || to < 1 || to > len(p.pages) {
		return ErrPageNotFound
	}
	if from == to {
		return nil
	}

	pg := p.pages[from-1]
	p.pages = slices.Delete(p.pages, from-1, from)
	p.pages = slices.Insert(p.pages, to-1, pg)
	p.reindex()
	return nil
}

// Restore replaces the page list with a previously listed order.
func (p *Pages) Restore(pages []Page) {
	p.pages = slices.Clone(pages)
	p.reindex()
}

func (p *Pages) reindex() {
	for i := range p.pages {
		p.pages[i].Index = i + 1
	}
}
