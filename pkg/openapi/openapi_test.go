package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/pdf-annotator/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("PDF Annotator API", "0.1.0")
	spec.SetDescription("editing sessions")
	spec.AddServer("http://localhost:8080")
	spec.AddServer("")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("OpenAPI = %q, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Description != "editing sessions" {
		t.Errorf("Description = %q", spec.Info.Description)
	}
	if len(spec.Servers) != 1 {
		t.Errorf("Servers = %d, want 1", len(spec.Servers))
	}
	for _, name := range []string{"BadRequest", "NotFound", "Conflict"} {
		if spec.Components.Responses[name] == nil {
			t.Errorf("missing response %s", name)
		}
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("t", "1")
	op := &openapi.Operation{Summary: "Undo"}

	spec.AddOperation("/api/sessions/{id}/undo", http.MethodPost, op)
	spec.AddOperation("/api/sessions/{id}/undo", http.MethodPatch, &openapi.Operation{})

	item := spec.Paths["/api/sessions/{id}/undo"]
	if item == nil || item.Post != op {
		t.Fatal("POST operation not added")
	}
	if item.Get != nil || item.Put != nil || item.Delete != nil {
		t.Error("unsupported method should not populate the path item")
	}
}

func TestAddSchemas(t *testing.T) {
	c := openapi.NewComponents()
	c.AddSchemas(map[string]*openapi.Schema{"Version": {Type: "object"}})

	if c.Schemas["Version"] == nil || c.Schemas["Error"] == nil {
		t.Errorf("schemas = %v, want Version and Error", c.Schemas)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	if err := openapi.WriteJSON(openapi.NewSpec("t", "1"), path); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("written file is not valid JSON: %v", err)
	}
	if result["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v, want 3.1.0", result["openapi"])
	}

	if err := openapi.WriteJSON(openapi.NewSpec("t", "1"), "/nonexistent/dir/openapi.json"); err == nil {
		t.Error("WriteJSON() to a missing directory succeeded")
	}
}

func TestServeSpec(t *testing.T) {
	data, err := openapi.MarshalJSON(openapi.NewSpec("t", "1"))
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}

	w := httptest.NewRecorder()
	openapi.ServeSpec(data)(w, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != string(data) {
		t.Error("body does not match the encoded spec")
	}
}

func TestConfig_Finalize(t *testing.T) {
	os.Setenv("TEST_OPENAPI_TITLE", "Annotator")
	defer os.Unsetenv("TEST_OPENAPI_TITLE")

	cfg := &openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	if cfg.Title != "Annotator" {
		t.Errorf("Title = %q, want Annotator", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("Description should have a default")
	}
}

func TestConfig_NewSpec(t *testing.T) {
	tests := []struct {
		name string
		cfg  openapi.Config
		want string
	}{
		{"service version", openapi.Config{Title: "t"}, "0.3.0"},
		{"override", openapi.Config{Title: "t", Version: "2024-06"}, "2024-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.cfg.NewSpec("0.3.0")
			if spec.Info.Version != tt.want {
				t.Errorf("Info.Version = %q, want %q", spec.Info.Version, tt.want)
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &openapi.Config{Title: "base", Description: "keep"}
	cfg.Merge(&openapi.Config{Title: "overlay", Version: "9"})

	want := openapi.Config{Title: "overlay", Description: "keep", Version: "9"}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestResponseBinary_WithHeader(t *testing.T) {
	r := openapi.ResponseBinary("Annotated PDF", "application/pdf").
		WithHeader("X-Export-Pages", "Pages written")

	media, ok := r.Content["application/pdf"]
	if !ok || media.Schema.Format != "binary" {
		t.Fatalf("Content = %+v, want binary application/pdf", r.Content)
	}
	h, ok := r.Headers["X-Export-Pages"]
	if !ok || h.Schema.Type != "integer" {
		t.Errorf("Headers = %+v, want integer X-Export-Pages", r.Headers)
	}
}

func TestPathParams(t *testing.T) {
	id := openapi.PathParam("id", "Session UUID")
	if id.In != "path" || !id.Required || id.Schema.Format != "uuid" {
		t.Errorf("PathParam() = %+v", id)
	}

	kind := openapi.PathParamOf("kind", "Recent list", &openapi.Schema{Type: "string", Enum: []string{"images"}})
	if kind.Schema.Format != "" || len(kind.Schema.Enum) != 1 || !kind.Required {
		t.Errorf("PathParamOf() = %+v", kind)
	}
}
