package api

import (
	"net/http"

	"github.com/JaimeStill/pdf-annotator/pkg/handlers"
)

// ListVersions handles GET /sessions/{id}/versions.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	list, err := s.Versions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

// SaveVersion handles POST /sessions/{id}/versions.
func (h *Handler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[VersionRequest](h, w, r)
	if !ok {
		return
	}

	v, err := s.SaveVersion(r.Context(), req.Label)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, v)
}

// RestoreVersion handles POST /sessions/{id}/versions/{versionId}/restore.
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	v, err := s.RestoreVersion(r.Context(), r.PathValue("versionId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, v)
}
