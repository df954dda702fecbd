package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/pkg/handlers"
)

// ListObjects handles GET /sessions/{id}/objects.
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Objects())
}

// AddObject handles POST /sessions/{id}/objects. The body creates an object
// from a tool, places a fully specified object, or places an image.
func (h *Handler) AddObject(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	body, ok := decodeBody[map[string]any](h, w, r)
	if !ok {
		return
	}

	cmd, err := parseAddCommand(body)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var obj *annotation.Object
	switch {
	case cmd.object != nil:
		obj, err = s.AddObject(cmd.object)
	case cmd.image != nil:
		obj, err = s.AddImage(r.Context(), cmd.image.Origin, cmd.image.Src, cmd.image.Signature)
	default:
		obj, err = s.AddTool(cmd.kind, cmd.options)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, obj)
}

// GroupDrawing handles POST /sessions/{id}/objects/group.
func (h *Handler) GroupDrawing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[GroupRequest](h, w, r)
	if !ok {
		return
	}

	obj, err := s.GroupDrawing(req.IDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, obj)
}

// ModifyObject handles PUT /sessions/{id}/objects/{objectId}.
func (h *Handler) ModifyObject(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	patch, ok := decodeBody[session.Patch](h, w, r)
	if !ok {
		return
	}

	obj, err := s.ModifyObject(r.PathValue("objectId"), patch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, obj)
}

// RemoveObject handles DELETE /sessions/{id}/objects/{objectId}.
func (h *Handler) RemoveObject(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.RemoveObject(r.PathValue("objectId")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateObject handles POST /sessions/{id}/objects/{objectId}/duplicate.
func (h *Handler) DuplicateObject(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	obj, err := s.DuplicateObject(r.PathValue("objectId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, obj)
}

// ListRuns handles GET /sessions/{id}/runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Runs())
}

// Search handles GET /sessions/{id}/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	matches, err := s.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, matches)
}

// HighlightRun handles POST /sessions/{id}/runs/{index}/highlight.
func (h *Handler) HighlightRun(w http.ResponseWriter, r *http.Request) {
	h.runOperation(w, r, func(s *session.Session, index int) (*annotation.Object, error) {
		return s.HighlightRun(index)
	})
}

// MaskRun handles POST /sessions/{id}/runs/{index}/mask.
func (h *Handler) MaskRun(w http.ResponseWriter, r *http.Request) {
	h.runOperation(w, r, func(s *session.Session, index int) (*annotation.Object, error) {
		return s.MaskRun(index)
	})
}

// ReplaceRun handles POST /sessions/{id}/runs/{index}/replace.
func (h *Handler) ReplaceRun(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[ReplaceRequest](h, w, r)
	if !ok {
		return
	}
	h.runOperation(w, r, func(s *session.Session, index int) (*annotation.Object, error) {
		return s.ReplaceRun(index, req.Text)
	})
}

func (h *Handler) runOperation(w http.ResponseWriter, r *http.Request, op func(*session.Session, int) (*annotation.Object, error)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	obj, err := op(s, index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), fmt.Errorf("run %d: %w", index, err))
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, obj)
}
