package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/pdf-annotator/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestSystem_Order(t *testing.T) {
	mw := middleware.New()
	var order []string

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-before")
				next.ServeHTTP(w, r)
				order = append(order, name+"-after")
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first-before", "second-before", "handler", "second-after", "first-after"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions?x=1", nil))

	out := buf.String()
	for _, want := range []string{"msg=request", "method=POST", "uri=\"/api/sessions?x=1\"", "status=418", "bytes=5", "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
	if w.Body.String() != "short" {
		t.Errorf("body = %q, want short", w.Body.String())
	}
}

func TestLogger_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log %q missing status=200", buf.String())
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           7200,
	}

	tests := []struct {
		name       string
		cfg        *middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantCalled bool
	}{
		{"allowed", cfg, http.MethodGet, "http://localhost:3000", "http://localhost:3000", true},
		{"disallowed", cfg, http.MethodGet, "http://evil.com", "", true},
		{"no origin", cfg, http.MethodGet, "", "", true},
		{"preflight", cfg, http.MethodOptions, "http://localhost:3000", "http://localhost:3000", false},
		{"disabled", &middleware.CORSConfig{Origins: cfg.Origins}, http.MethodGet, "http://localhost:3000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			if tt.wantOrigin == "" {
				return
			}
			if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, POST" {
				t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "GET, POST")
			}
			if got := resp.Header.Get("Access-Control-Max-Age"); got != "7200" {
				t.Errorf("Access-Control-Max-Age = %q, want %q", got, "7200")
			}
			if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("Access-Control-Allow-Credentials should be set")
			}
		})
	}
}

func TestCORSConfig_Finalize(t *testing.T) {
	os.Setenv("TEST_CORS_ENABLED", "true")
	os.Setenv("TEST_CORS_ORIGINS", "http://localhost:3000, http://localhost:8080")
	defer func() {
		os.Unsetenv("TEST_CORS_ENABLED")
		os.Unsetenv("TEST_CORS_ORIGINS")
	}()

	cfg := &middleware.CORSConfig{}
	env := &middleware.CORSEnv{Enabled: "TEST_CORS_ENABLED", Origins: "TEST_CORS_ORIGINS"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled should be true from env")
	}
	if diff := cmp.Diff([]string{"http://localhost:3000", "http://localhost:8080"}, cfg.Origins); diff != "" {
		t.Errorf("Origins mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.AllowedMethods) == 0 || len(cfg.AllowedHeaders) == 0 {
		t.Error("methods and headers should have defaults")
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfig_Merge(t *testing.T) {
	base := middleware.CORSConfig{Origins: []string{"http://a.com"}, MaxAge: 60}
	base.Merge(&middleware.CORSConfig{Enabled: true, AllowedMethods: []string{"GET"}})

	if !base.Enabled {
		t.Error("Enabled should come from overlay")
	}
	if diff := cmp.Diff([]string{"http://a.com"}, base.Origins); diff != "" {
		t.Errorf("Origins mismatch (-want +got):\n%s", diff)
	}
	if base.MaxAge != 60 {
		t.Errorf("MaxAge = %d, want 60", base.MaxAge)
	}
}

func TestTrimSlash(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		target       string
		wantStatus   int
		wantLocation string
	}{
		{"root preserved", http.MethodGet, "/", http.StatusOK, ""},
		{"no slash", http.MethodGet, "/api/sessions", http.StatusOK, ""},
		{"get redirect", http.MethodGet, "/api/sessions/", http.StatusMovedPermanently, "/api/sessions"},
		{"query preserved", http.MethodGet, "/api/recent/images/?x=1", http.StatusMovedPermanently, "/api/recent/images?x=1"},
		{"post redirect", http.MethodPost, "/api/sessions/", http.StatusPermanentRedirect, "/api/sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			middleware.TrimSlash()(http.HandlerFunc(ok)).ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}
