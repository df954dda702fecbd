package session

import (
	"context"
	"strings"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// Match is a text run that contains a search query.
type Match struct {
	Page   int    `json:"page"`
	PageID string `json:"page_id"`

	// RunIndex addresses the run in Runs once its page is active.
	RunIndex int           `json:"run_index"`
	Text     string        `json:"text"`
	Rect     geometry.Rect `json:"rect"`
}

// Search returns the text runs of every page, in display order, whose text
// contains query regardless of case. A blank query matches nothing.
// Duplicated pages report their own matches.
func (s *Session) Search(ctx context.Context, query string) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.reader == nil {
		return nil, ErrNotOpen
	}

	matches := []Match{}
	if strings.TrimSpace(query) == "" {
		return matches, nil
	}
	term := strings.ToLower(query)

	for _, page := range s.pages.List() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, hb := range s.hitboxes(page) {
			run := hb.Meta.Run
			if run == nil || !strings.Contains(strings.ToLower(run.Text), term) {
				continue
			}
			matches = append(matches, Match{
				Page:     page.Index,
				PageID:   page.ID,
				RunIndex: i,
				Text:     run.Text,
				Rect:     geometry.Rect{Left: hb.Left, Top: hb.Top, Width: hb.Width, Height: hb.Height},
			})
		}
	}
	return matches, nil
}
