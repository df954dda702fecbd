package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/pkg/handlers"
	"github.com/JaimeStill/pdf-annotator/pkg/pagination"
	"github.com/JaimeStill/pdf-annotator/pkg/routes"
)

// Handler serves the editing session endpoints.
type Handler struct {
	reg           *Registry
	recent        *recent.Store
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates the session HTTP handler.
func NewHandler(reg *Registry, rec *recent.Store, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		reg:           reg,
		recent:        rec,
		logger:        logger.With("handler", "sessions"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route groups for session and recent list endpoints.
func (h *Handler) Routes() []routes.Group {
	sessions := routes.Group{
		Prefix:      "/sessions",
		Tags:        []string{"Sessions"},
		Description: "Editing sessions over open documents",
		Schemas:     Schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "POST", Pattern: "", Handler: h.Open, OpenAPI: Spec.Open},
			{Method: "GET", Pattern: "/{id}", Handler: h.Status, OpenAPI: Spec.Status},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Close, OpenAPI: Spec.Close},
			{Method: "GET", Pattern: "/{id}/notifications", Handler: h.Notifications, OpenAPI: Spec.Notifications},
			{Method: "POST", Pattern: "/{id}/navigate", Handler: h.Navigate, OpenAPI: Spec.Navigate},
			{Method: "POST", Pattern: "/{id}/undo", Handler: h.Undo, OpenAPI: Spec.Undo},
			{Method: "POST", Pattern: "/{id}/redo", Handler: h.Redo, OpenAPI: Spec.Redo},
			{Method: "POST", Pattern: "/{id}/tool", Handler: h.SetTool, OpenAPI: Spec.SetTool},
			{Method: "POST", Pattern: "/{id}/zoom", Handler: h.SetZoom, OpenAPI: Spec.SetZoom},
			{Method: "POST", Pattern: "/{id}/overlay", Handler: h.SetOverlay, OpenAPI: Spec.SetOverlay},
			{Method: "POST", Pattern: "/{id}/origin", Handler: h.Origin, OpenAPI: Spec.Origin},
			{Method: "POST", Pattern: "/{id}/pointer", Handler: h.PointerDown, OpenAPI: Spec.PointerDown},
			{Method: "GET", Pattern: "/{id}/export", Handler: h.Export, OpenAPI: Spec.Export},
			{Method: "GET", Pattern: "/{id}/search", Handler: h.Search, OpenAPI: Spec.Search},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}/objects",
				Tags:   []string{"Objects"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.ListObjects, OpenAPI: Spec.ListObjects},
					{Method: "POST", Pattern: "", Handler: h.AddObject, OpenAPI: Spec.AddObject},
					{Method: "POST", Pattern: "/group", Handler: h.GroupDrawing, OpenAPI: Spec.GroupDrawing},
					{Method: "PUT", Pattern: "/{objectId}", Handler: h.ModifyObject, OpenAPI: Spec.ModifyObject},
					{Method: "DELETE", Pattern: "/{objectId}", Handler: h.RemoveObject, OpenAPI: Spec.RemoveObject},
					{Method: "POST", Pattern: "/{objectId}/duplicate", Handler: h.DuplicateObject, OpenAPI: Spec.DuplicateObject},
				},
			},
			{
				Prefix: "/{id}/runs",
				Tags:   []string{"Objects"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.ListRuns, OpenAPI: Spec.ListRuns},
					{Method: "POST", Pattern: "/{index}/highlight", Handler: h.HighlightRun, OpenAPI: Spec.HighlightRun},
					{Method: "POST", Pattern: "/{index}/mask", Handler: h.MaskRun, OpenAPI: Spec.MaskRun},
					{Method: "POST", Pattern: "/{index}/replace", Handler: h.ReplaceRun, OpenAPI: Spec.ReplaceRun},
				},
			},
			{
				Prefix: "/{id}/pages",
				Tags:   []string{"Pages"},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/move", Handler: h.MovePage, OpenAPI: Spec.MovePage},
					{Method: "POST", Pattern: "/undo", Handler: h.UndoPageOperation, OpenAPI: Spec.UndoPageOperation},
					{Method: "POST", Pattern: "/{pageId}/duplicate", Handler: h.DuplicatePage, OpenAPI: Spec.DuplicatePage},
					{Method: "DELETE", Pattern: "/{pageId}", Handler: h.DeletePage, OpenAPI: Spec.DeletePage},
					{Method: "GET", Pattern: "/{pageId}/overlay.png", Handler: h.Overlay, OpenAPI: Spec.Overlay},
				},
			},
			{
				Prefix: "/{id}/versions",
				Tags:   []string{"Versions"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.ListVersions, OpenAPI: Spec.ListVersions},
					{Method: "POST", Pattern: "", Handler: h.SaveVersion, OpenAPI: Spec.SaveVersion},
					{Method: "POST", Pattern: "/{versionId}/restore", Handler: h.RestoreVersion, OpenAPI: Spec.RestoreVersion},
				},
			},
		},
	}

	recentGroup := routes.Group{
		Prefix:      "/recent",
		Tags:        []string{"Recent"},
		Description: "Recently placed images and signatures",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{kind}", Handler: h.Recent, OpenAPI: Spec.Recent},
		},
	}

	return []routes.Group{sessions, recentGroup}
}

// List handles GET /sessions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	handlers.RespondJSON(w, http.StatusOK, h.reg.List(page))
}

// Open handles POST /sessions with either a multipart "file" upload or a
// JSON body naming a source URL.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	src, err := h.source(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	s, err := h.reg.Open(r.Context(), src)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, s.Status())
}

func (h *Handler) source(w http.ResponseWriter, r *http.Request) (session.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	media, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if media != "multipart/form-data" {
		req, err := handlers.DecodeJSON[OpenRequest](r.Body)
		if err != nil {
			return session.Source{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if req.SourceURL == "" {
			return session.Source{}, fmt.Errorf("%w: source_url is required", ErrInvalidRequest)
		}
		return session.Source{URL: req.SourceURL, Name: req.Name}, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return session.Source{}, ErrFileTooLarge
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return session.Source{}, ErrInvalidFile
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		return session.Source{}, ErrFileTooLarge
	}
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return session.Source{}, ErrInvalidFile
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	return session.Source{Data: data, Name: name}, nil
}

// Status handles GET /sessions/{id}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

// Close handles DELETE /sessions/{id}.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Delete(r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications handles GET /sessions/{id}/notifications, draining the
// notifications queued since the last call.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	out := []session.Notification{}
	ch := s.Notifications()
drain:
	for {
		select {
		case n, open := <-ch:
			if !open {
				break drain
			}
			out = append(out, n)
		default:
			break drain
		}
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

// Navigate handles POST /sessions/{id}/navigate and responds once the
// incoming page has loaded.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[NavigateRequest](h, w, r)
	if !ok {
		return
	}

	if err := s.Navigate(r.Context(), req.Page); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.settled(w, r, s)
}

// Undo handles POST /sessions/{id}/undo.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Undo(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.settled(w, r, s)
}

// Redo handles POST /sessions/{id}/redo.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Redo(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.settled(w, r, s)
}

// SetTool handles POST /sessions/{id}/tool.
func (h *Handler) SetTool(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[ToolRequest](h, w, r)
	if !ok {
		return
	}
	if err := s.SetTool(session.Tool(req.Tool)); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

// SetZoom handles POST /sessions/{id}/zoom.
func (h *Handler) SetZoom(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[ZoomRequest](h, w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]float64{"zoom": s.SetZoom(req.Zoom)})
}

// SetOverlay handles POST /sessions/{id}/overlay.
func (h *Handler) SetOverlay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[OverlayRequest](h, w, r)
	if !ok {
		return
	}
	if err := s.SetOverlaySize(req.Width, req.Height); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

// Origin handles POST /sessions/{id}/origin, mapping a viewport to the
// overlay point new objects are placed from.
func (h *Handler) Origin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[OriginRequest](h, w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.VisibleOrigin(req.Viewport, req.Page))
}

// PointerDown handles POST /sessions/{id}/pointer.
func (h *Handler) PointerDown(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.PointerDown(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /sessions/{id}/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	data, report, err := s.Export(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("X-Export-Pages", strconv.Itoa(len(report.Pages)))
	w.Header().Set("X-Export-Modified", strconv.Itoa(report.Modified()))
	w.Header().Set("X-Export-Failures", strconv.Itoa(report.Failures))
	w.Header().Set("X-Export-Partial", strconv.Itoa(report.Partial()))
	handlers.RespondBytes(w, http.StatusOK, "application/pdf", exportName(s.Status().Name), data)
}

// Recent handles GET /recent/{kind}.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	k, err := recent.ParseKind(r.PathValue("kind"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	list, err := h.recent.List(r.Context(), k)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.reg.Get(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return s, true
}

// settled waits for navigation to go idle and responds with the status.
func (h *Handler) settled(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := s.Wait(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s.Status())
}

func decodeBody[T any](h *Handler, w http.ResponseWriter, r *http.Request) (T, bool) {
	v, err := handlers.DecodeJSON[T](r.Body)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return v, false
	}
	return v, true
}

func pathIndex(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidRequest, name)
	}
	return n, nil
}

func exportName(name string) string {
	if name == "" {
		return "annotated.pdf"
	}
	base := strings.TrimSuffix(name, ".pdf")
	return base + "-annotated.pdf"
}
