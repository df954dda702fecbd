package routes_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/JaimeStill/pdf-annotator/internal/routes"
	pkgroutes "github.com/JaimeStill/pdf-annotator/pkg/routes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func TestBuild(t *testing.T) {
	sys := routes.New(testLogger())

	sys.RegisterRoute(pkgroutes.Route{Method: "GET", Pattern: "/healthz", Handler: text("OK")})
	sys.RegisterGroup(pkgroutes.Group{
		Prefix: "/docs",
		Routes: []pkgroutes.Route{{Method: "GET", Pattern: "/spec", Handler: text("spec")}},
		Children: []pkgroutes.Group{
			{Prefix: "/v1", Routes: []pkgroutes.Route{{Method: "GET", Pattern: "/spec", Handler: text("v1")}}},
		},
	})
	sys.Handle("/api/", text("api"))

	handler := sys.Build()

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"route", "GET", "/healthz", http.StatusOK, "OK"},
		{"group", "GET", "/docs/spec", http.StatusOK, "spec"},
		{"child group", "GET", "/docs/v1/spec", http.StatusOK, "v1"},
		{"mount subtree", "POST", "/api/sessions", http.StatusOK, "api"},
		{"mount root", "GET", "/api", http.StatusOK, "api"},
		{"wrong method", "POST", "/healthz", http.StatusMethodNotAllowed, ""},
		{"missing", "GET", "/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}

	if len(sys.Routes()) != 1 || len(sys.Groups()) != 1 {
		t.Errorf("Routes, Groups = %d, %d, want 1, 1", len(sys.Routes()), len(sys.Groups()))
	}
}
