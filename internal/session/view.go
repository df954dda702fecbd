package session

import (
	"context"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/document"
	"github.com/JaimeStill/pdf-annotator/internal/export"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// SetZoom sets the zoom percentage, clamped to the supported range, and
// returns the value applied.
func (s *Session) SetZoom(z float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = geometry.ClampZoom(z)
	return s.zoom
}

// Zoom returns the zoom percentage.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetOverlaySize resizes the overlay of the active page. A non-positive
// height follows the page's aspect ratio. Text hitboxes are rebuilt for the
// new width; annotation objects keep their coordinates.
func (s *Session) SetOverlaySize(width, height float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if width <= 0 {
		return ErrInvalidOptions
	}

	s.overlayW = width
	s.runs = make(map[int][]annotation.TextRun)

	page := s.activePage()
	size := s.overlaySize(page)
	if height > 0 {
		size.Height = height
	}
	s.canvas.SetSize(size)
	s.canvas.Load(s.canvas.UserObjects(), s.hitboxes(page))
	return nil
}

// VisibleOrigin maps the visible viewport onto unscaled overlay coordinates.
// New objects are placed relative to it.
func (s *Session) VisibleOrigin(viewport, page geometry.Rect) geometry.Point {
	return geometry.ScreenToOverlayOrigin(viewport, page, s.Zoom())
}

// Export commits the active page and composites every page's annotations
// onto a copy of the source document.
func (s *Session) Export(ctx context.Context) ([]byte, *export.Report, error) {
	s.mu.Lock()
	if s.src == nil || s.closed {
		s.mu.Unlock()
		return nil, nil, export.ErrNoSource
	}
	s.flush()
	req := export.Request{
		Pages:        s.pages.List(),
		States:       s.store.Snapshot(),
		OverlayWidth: s.overlayW,
	}
	src := s.src
	s.mu.Unlock()

	out, report, err := s.deps.Compositor.Export(ctx, src, req)
	if err != nil {
		s.notifyAsync(LevelError, "Failed to export PDF")
		return nil, nil, err
	}
	if report.Failures > 0 {
		s.notifyAsync(LevelWarn, "Some page annotations could not be exported")
	}
	return out, report, nil
}

// RenderOverlay rasterizes the annotations of a page at its overlay size and
// returns a PNG with transparency.
func (s *Session) RenderOverlay(pageID string) ([]byte, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	index, ok := s.pages.Find(pageID)
	if !ok {
		s.mu.Unlock()
		return nil, document.ErrPageNotFound
	}
	page, _ := s.pages.At(index)

	objs := s.store.Materialize(page.ID)
	size := s.overlaySize(page)
	if page.ID == s.lastLoaded {
		objs = annotation.CloneAll(s.canvas.UserObjects())
		size = s.canvas.Size()
	}
	s.mu.Unlock()

	return s.deps.Renderer.Render(objs, size)
}
