package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/api"
	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/document"
	"github.com/JaimeStill/pdf-annotator/internal/export"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/internal/pdf/pdftest"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/internal/versions"
	"github.com/JaimeStill/pdf-annotator/pkg/pagination"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newServer(t *testing.T, maxSessions int) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Storage: storage.Config{Backend: storage.BackendMemory},
		Editor: config.EditorConfig{
			MaxSessions: maxSessions,
			Session: session.Config{
				SettleDelay:   "1ms",
				LoadDelay:     "2ms",
				LoadRetry:     "1ms",
				ReleaseDelay:  "5ms",
				SavingDelay:   "1ms",
				AutosaveDelay: "5ms",
				OverlayWidth:  612,
			},
		},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	rt, err := api.NewRuntime(cfg, testLogger(), storage.NewMemory(0))
	if err != nil {
		t.Fatalf("NewRuntime() failed: %v", err)
	}
	t.Cleanup(rt.Close)

	h, err := api.NewModule(cfg, rt)
	if err != nil {
		t.Fatalf("NewModule() failed: %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == nil {
		r = httptest.NewRequest(method, target, nil)
	} else {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal() failed: %v", err)
		}
		r = httptest.NewRequest(method, target, bytes.NewReader(data))
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func upload(t *testing.T, h http.Handler, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	part.Write(data)
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/sessions", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response failed: %v (body %q)", err, w.Body.String())
	}
	return v
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, status, w.Body.String())
	}
}

// open uploads a document and returns its session status.
func open(t *testing.T, h http.Handler, pages ...pdftest.Page) session.Status {
	t.Helper()
	w := upload(t, h, "report.pdf", pdftest.Document(pages...))
	expect(t, w, http.StatusCreated)
	return decodeAs[session.Status](t, w)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"session not found", api.ErrSessionNotFound, http.StatusNotFound},
		{"object not found", session.ErrObjectNotFound, http.StatusNotFound},
		{"page not found", fmt.Errorf("wrap: %w", document.ErrPageNotFound), http.StatusNotFound},
		{"busy", session.ErrBusy, http.StatusConflict},
		{"last page", document.ErrLastPage, http.StatusConflict},
		{"not duplicable", annotation.ErrNotDuplicable, http.StatusConflict},
		{"invalid pdf", fmt.Errorf("open: %w", pdf.ErrInvalidPDF), http.StatusBadRequest},
		{"no source", export.ErrNoSource, http.StatusBadRequest},
		{"unknown kind", annotation.ErrUnknownKind, http.StatusBadRequest},
		{"too large", api.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"too many sessions", api.ErrTooManySessions, http.StatusTooManyRequests},
		{"fetch", document.ErrFetch, http.StatusBadGateway},
		{"quota", storage.ErrQuotaExceeded, http.StatusInsufficientStorage},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.MapHTTPStatus(tt.err); got != tt.expected {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestOpen_Upload(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Hello"), pdftest.A4("World"))

	if len(st.Pages) != 2 || st.Active != 1 {
		t.Errorf("pages, active = %d, %d, want 2, 1", len(st.Pages), st.Active)
	}
	if st.Name != "report.pdf" {
		t.Errorf("Name = %q, want report.pdf", st.Name)
	}
	if st.Phase != "idle" || st.Hitboxes != 1 {
		t.Errorf("phase, hitboxes = %s, %d, want idle, 1", st.Phase, st.Hitboxes)
	}

	w := do(t, h, http.MethodGet, "/api/sessions/"+st.ID, nil)
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); got.ID != st.ID {
		t.Errorf("Status ID = %s, want %s", got.ID, st.ID)
	}
}

func TestOpen_SourceURL(t *testing.T) {
	src := pdftest.Document(pdftest.Letter("Remote"))
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(src)
	}))
	defer remote.Close()

	h := newServer(t, 4)
	w := do(t, h, http.MethodPost, "/api/sessions", api.OpenRequest{SourceURL: remote.URL + "/doc.pdf", Name: "remote"})
	expect(t, w, http.StatusCreated)

	st := decodeAs[session.Status](t, w)
	if st.DocumentID != document.ID(remote.URL+"/doc.pdf") {
		t.Errorf("DocumentID = %q, want id derived from the URL", st.DocumentID)
	}
}

func TestOpen_Rejected(t *testing.T) {
	h := newServer(t, 1)

	tests := []struct {
		name   string
		send   func() *httptest.ResponseRecorder
		status int
	}{
		{"missing source url", func() *httptest.ResponseRecorder {
			return do(t, h, http.MethodPost, "/api/sessions", map[string]string{"name": "x"})
		}, http.StatusBadRequest},
		{"unknown field", func() *httptest.ResponseRecorder {
			return do(t, h, http.MethodPost, "/api/sessions", map[string]string{"url": "x"})
		}, http.StatusBadRequest},
		{"invalid pdf", func() *httptest.ResponseRecorder {
			return upload(t, h, "bad.pdf", []byte("not a pdf"))
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.send()
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (body %q)", w.Code, tt.status, w.Body.String())
			}
		})
	}

	open(t, h, pdftest.Letter("one"))
	w := upload(t, h, "two.pdf", pdftest.Document(pdftest.Letter("two")))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second session status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestListAndClose(t *testing.T) {
	h := newServer(t, 4)
	a := open(t, h, pdftest.Letter("a"))
	open(t, h, pdftest.Letter("b"), pdftest.Letter("c"))

	w := do(t, h, http.MethodGet, "/api/sessions?sort=-pages", nil)
	expect(t, w, http.StatusOK)
	page := decodeAs[pagination.PageResult[api.Summary]](t, w)
	if page.Total != 2 || len(page.Data) != 2 {
		t.Fatalf("Total, len = %d, %d, want 2, 2", page.Total, len(page.Data))
	}
	if page.Data[0].Pages != 2 {
		t.Errorf("first summary pages = %d, want 2 when sorted by -pages", page.Data[0].Pages)
	}

	expect(t, do(t, h, http.MethodDelete, "/api/sessions/"+a.ID, nil), http.StatusNoContent)
	expect(t, do(t, h, http.MethodGet, "/api/sessions/"+a.ID, nil), http.StatusNotFound)
	expect(t, do(t, h, http.MethodDelete, "/api/sessions/"+a.ID, nil), http.StatusNotFound)
}

func TestObjects(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Hello"))
	base := "/api/sessions/" + st.ID + "/objects"

	w := do(t, h, http.MethodPost, base, map[string]any{
		"tool":    "rect",
		"options": map[string]any{"color": "#ff0000"},
	})
	expect(t, w, http.StatusCreated)
	rect := decodeAs[*annotation.Object](t, w)
	if rect.Kind != annotation.KindRect {
		t.Errorf("Kind = %s, want rect", rect.Kind)
	}

	w = do(t, h, http.MethodPut, base+"/"+rect.ID, map[string]any{"left": 42})
	expect(t, w, http.StatusOK)
	if moved := decodeAs[*annotation.Object](t, w); moved.Left != 42 {
		t.Errorf("Left = %v, want 42", moved.Left)
	}

	w = do(t, h, http.MethodPost, base+"/"+rect.ID+"/duplicate", nil)
	expect(t, w, http.StatusCreated)
	dup := decodeAs[*annotation.Object](t, w)
	if dup.Left != 42+annotation.DuplicateOffset {
		t.Errorf("duplicate Left = %v, want %v", dup.Left, 42+annotation.DuplicateOffset)
	}

	w = do(t, h, http.MethodGet, base, nil)
	expect(t, w, http.StatusOK)
	if objs := decodeAs[[]*annotation.Object](t, w); len(objs) != 2 {
		t.Errorf("objects = %d, want 2", len(objs))
	}

	expect(t, do(t, h, http.MethodDelete, base+"/"+dup.ID, nil), http.StatusNoContent)
	expect(t, do(t, h, http.MethodDelete, base+"/"+dup.ID, nil), http.StatusNotFound)

	w = do(t, h, http.MethodPost, "/api/sessions/"+st.ID+"/undo", nil)
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); got.Objects != 2 {
		t.Errorf("objects after undo = %d, want 2", got.Objects)
	}
}

func TestAddObject_Bodies(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Hello"))
	base := "/api/sessions/" + st.ID + "/objects"

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"object", map[string]any{"object": map[string]any{
			"type": "rect", "left": 10, "top": 10, "width": 50, "height": 20,
			"pdfMeta": map[string]any{"type": "whiteout"},
		}}, http.StatusCreated},
		{"unknown tool", map[string]any{"tool": "sparkle"}, http.StatusBadRequest},
		{"link without url", map[string]any{"tool": "link"}, http.StatusBadRequest},
		{"image tool", map[string]any{"tool": "image"}, http.StatusBadRequest},
		{"bad image source", map[string]any{"image": map[string]any{"src": "https://example.com/a.png"}}, http.StatusBadRequest},
		{"empty", map[string]any{}, http.StatusBadRequest},
		{"ambiguous", map[string]any{"tool": "rect", "image": map[string]any{}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, base, tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (body %q)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestRuns(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Hello"))
	base := "/api/sessions/" + st.ID + "/runs"

	w := do(t, h, http.MethodGet, base, nil)
	expect(t, w, http.StatusOK)
	runs := decodeAs[[]annotation.TextRun](t, w)
	if len(runs) != 1 || runs[0].Text != "Hello" {
		t.Fatalf("runs = %+v, want one Hello run", runs)
	}

	expect(t, do(t, h, http.MethodPost, base+"/0/highlight", nil), http.StatusCreated)

	w = do(t, h, http.MethodPost, base+"/0/replace", api.ReplaceRequest{Text: "Bye"})
	expect(t, w, http.StatusCreated)
	if repl := decodeAs[*annotation.Object](t, w); repl.Kind != annotation.KindTextReplacement || repl.Text != "Bye" {
		t.Errorf("replacement = %s %q, want text-replacement Bye", repl.Kind, repl.Text)
	}

	expect(t, do(t, h, http.MethodPost, base+"/9/mask", nil), http.StatusNotFound)
	expect(t, do(t, h, http.MethodPost, base+"/first/mask", nil), http.StatusBadRequest)
}

func TestSearch(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Summary"), pdftest.Letter("Appendix"), pdftest.Letter("summary table"))
	base := "/api/sessions/" + st.ID

	w := do(t, h, http.MethodGet, base+"/search?q=SUMMARY", nil)
	expect(t, w, http.StatusOK)
	matches := decodeAs[[]session.Match](t, w)
	if len(matches) != 2 {
		t.Fatalf("matches = %+v, want 2", matches)
	}
	if matches[0].Page != 1 || matches[1].Page != 3 || matches[1].Text != "summary table" {
		t.Errorf("matches = %+v, want pages 1 and 3", matches)
	}

	w = do(t, h, http.MethodGet, base+"/search", nil)
	expect(t, w, http.StatusOK)
	if got := decodeAs[[]session.Match](t, w); len(got) != 0 {
		t.Errorf("blank search = %+v, want none", got)
	}

	expect(t, do(t, h, http.MethodGet, "/api/sessions/missing/search?q=x", nil), http.StatusNotFound)
}

func TestNavigateAndTool(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("one"), pdftest.Letter("two"))
	base := "/api/sessions/" + st.ID

	w := do(t, h, http.MethodPost, base+"/navigate", api.NavigateRequest{Page: 2})
	expect(t, w, http.StatusOK)
	got := decodeAs[session.Status](t, w)
	if got.Active != 2 || got.Phase != "idle" {
		t.Errorf("active, phase = %d, %s, want 2, idle", got.Active, got.Phase)
	}

	w = do(t, h, http.MethodPost, base+"/navigate", api.NavigateRequest{Page: 9})
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); got.Active != 2 {
		t.Errorf("active after out-of-range = %d, want 2", got.Active)
	}

	w = do(t, h, http.MethodPost, base+"/tool", api.ToolRequest{Tool: "draw"})
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); got.Tool != session.ToolDraw {
		t.Errorf("Tool = %s, want draw", got.Tool)
	}
	expect(t, do(t, h, http.MethodPost, base+"/tool", api.ToolRequest{Tool: "lasso"}), http.StatusBadRequest)

	w = do(t, h, http.MethodPost, base+"/zoom", api.ZoomRequest{Zoom: 500})
	expect(t, w, http.StatusOK)
	if got := decodeAs[map[string]float64](t, w); got["zoom"] != 200 {
		t.Errorf("zoom = %v, want 200", got["zoom"])
	}
}

func TestPages(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("one"), pdftest.Letter("two"))
	base := "/api/sessions/" + st.ID + "/pages"
	first := st.Pages[0].ID

	w := do(t, h, http.MethodPost, base+"/"+first+"/duplicate", nil)
	expect(t, w, http.StatusCreated)
	if dup := decodeAs[document.Page](t, w); dup.SourcePageNumber != 1 || dup.Index != 2 {
		t.Errorf("duplicate = %+v, want source 1 at index 2", dup)
	}

	w = do(t, h, http.MethodPost, base+"/move", api.MoveRequest{From: 3, To: 1})
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); got.Pages[0].SourcePageNumber != 2 {
		t.Errorf("first page source = %d, want 2 after move", got.Pages[0].SourcePageNumber)
	}

	w = do(t, h, http.MethodPost, base+"/undo", nil)
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); got.Pages[0].ID != first || len(got.Pages) != 3 {
		t.Errorf("pages after undo = %+v, want the original first page", got.Pages)
	}

	w = do(t, h, http.MethodDelete, base+"/"+first, nil)
	expect(t, w, http.StatusOK)
	if got := decodeAs[session.Status](t, w); len(got.Pages) != 2 {
		t.Errorf("pages after delete = %d, want 2", len(got.Pages))
	}

	expect(t, do(t, h, http.MethodDelete, base+"/"+first, nil), http.StatusNotFound)
}

func TestPages_LastPage(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("only"))

	w := do(t, h, http.MethodDelete, "/api/sessions/"+st.ID+"/pages/"+st.Pages[0].ID, nil)
	expect(t, w, http.StatusConflict)

	expect(t, do(t, h, http.MethodPost, "/api/sessions/"+st.ID+"/pages/undo", nil), http.StatusConflict)
}

func TestVersions(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Hello"))
	base := "/api/sessions/" + st.ID

	expect(t, do(t, h, http.MethodPost, base+"/objects", map[string]any{"tool": "text", "options": map[string]any{"text": "note"}}), http.StatusCreated)

	w := do(t, h, http.MethodPost, base+"/versions", api.VersionRequest{})
	expect(t, w, http.StatusCreated)
	saved := decodeAs[versions.Version](t, w)
	if saved.VersionNumber != 2 || saved.Label != "Version 2" {
		t.Errorf("saved = %d %q, want 2 Version 2", saved.VersionNumber, saved.Label)
	}

	w = do(t, h, http.MethodGet, base+"/versions", nil)
	expect(t, w, http.StatusOK)
	list := decodeAs[[]versions.Version](t, w)
	if len(list) != 2 || list[1].Label != "Initial import" {
		t.Fatalf("versions = %+v, want the saved version and the initial import", list)
	}

	w = do(t, h, http.MethodPost, base+"/versions/"+list[1].ID+"/restore", nil)
	expect(t, w, http.StatusOK)

	w = do(t, h, http.MethodGet, base, nil)
	if got := decodeAs[session.Status](t, w); got.Objects != 0 {
		t.Errorf("objects after restoring the initial import = %d, want 0", got.Objects)
	}

	expect(t, do(t, h, http.MethodPost, base+"/versions/00000000-0000-0000-0000-000000000000/restore", nil), http.StatusNotFound)
}

func TestExportAndOverlay(t *testing.T) {
	h := newServer(t, 4)
	st := open(t, h, pdftest.Letter("Hello"))
	base := "/api/sessions/" + st.ID

	expect(t, do(t, h, http.MethodPost, base+"/objects", map[string]any{"tool": "rect"}), http.StatusCreated)

	w := do(t, h, http.MethodGet, base+"/export", nil)
	expect(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Error("export body is not a PDF")
	}
	if got := w.Header().Get("X-Export-Modified"); got != "1" {
		t.Errorf("X-Export-Modified = %q, want 1", got)
	}
	if got := w.Header().Get("X-Export-Partial"); got != "0" {
		t.Errorf("X-Export-Partial = %q, want 0", got)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "report-annotated.pdf") {
		t.Errorf("Content-Disposition = %q, want report-annotated.pdf", cd)
	}

	w = do(t, h, http.MethodGet, base+"/pages/"+st.Pages[0].ID+"/overlay.png", nil)
	expect(t, w, http.StatusOK)
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("overlay body is not a PNG")
	}
}

func TestRecentAndNotifications(t *testing.T) {
	h := newServer(t, 4)

	w := do(t, h, http.MethodGet, "/api/recent/images", nil)
	expect(t, w, http.StatusOK)
	if list := decodeAs[[]string](t, w); len(list) != 0 {
		t.Errorf("recent images = %d, want 0", len(list))
	}
	expect(t, do(t, h, http.MethodGet, "/api/recent/videos", nil), http.StatusBadRequest)

	st := open(t, h, pdftest.Letter("Hello"))
	expect(t, do(t, h, http.MethodPost, "/api/sessions/"+st.ID+"/versions", api.VersionRequest{Label: "Draft"}), http.StatusCreated)

	w = do(t, h, http.MethodGet, "/api/sessions/"+st.ID+"/notifications", nil)
	expect(t, w, http.StatusOK)
	notes := decodeAs[[]session.Notification](t, w)
	if len(notes) != 1 || notes[0].Message != "Saved Draft" {
		t.Errorf("notifications = %+v, want one Saved Draft", notes)
	}

	w = do(t, h, http.MethodGet, "/api/sessions/"+st.ID+"/notifications", nil)
	if notes := decodeAs[[]session.Notification](t, w); len(notes) != 0 {
		t.Errorf("second drain = %d notifications, want 0", len(notes))
	}
}

func TestOpenAPIDocument(t *testing.T) {
	h := newServer(t, 4)

	w := do(t, h, http.MethodGet, "/api/openapi.json", nil)
	expect(t, w, http.StatusOK)

	doc := decodeAs[map[string]any](t, w)
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatal("document has no paths")
	}
	for _, p := range []string{
		"/api/sessions",
		"/api/sessions/{id}/objects/{objectId}",
		"/api/sessions/{id}/pages/{pageId}/overlay.png",
		"/api/sessions/{id}/search",
		"/api/recent/{kind}",
	} {
		if _, ok := paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
}
