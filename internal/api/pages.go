package api

import (
	"net/http"

	"github.com/JaimeStill/pdf-annotator/pkg/handlers"
)

// DuplicatePage handles POST /sessions/{id}/pages/{pageId}/duplicate.
func (h *Handler) DuplicatePage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	page, err := s.DuplicatePage(r.PathValue("pageId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, page)
}

// DeletePage handles DELETE /sessions/{id}/pages/{pageId}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.DeletePage(r.PathValue("pageId")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

// MovePage handles POST /sessions/{id}/pages/move.
func (h *Handler) MovePage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[MoveRequest](h, w, r)
	if !ok {
		return
	}
	if err := s.MovePage(req.From, req.To); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

// UndoPageOperation handles POST /sessions/{id}/pages/undo.
func (h *Handler) UndoPageOperation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.UndoPageOperation(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

// Overlay handles GET /sessions/{id}/pages/{pageId}/overlay.png.
func (h *Handler) Overlay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	data, err := s.RenderOverlay(r.PathValue("pageId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondBytes(w, http.StatusOK, "image/png", "", data)
}
