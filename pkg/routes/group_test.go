package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/pdf-annotator/pkg/openapi"
	"github.com/JaimeStill/pdf-annotator/pkg/routes"
)

func noop(w http.ResponseWriter, r *http.Request) {}

func sessionsGroup() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Tags:   []string{"Sessions"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: noop, OpenAPI: &openapi.Operation{Summary: "List sessions"}},
			{Method: "POST", Pattern: "", Handler: noop, OpenAPI: &openapi.Operation{Summary: "Open session", Tags: []string{"Editor"}}},
			{Method: "DELETE", Pattern: "/{id}", Handler: noop},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}/versions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: noop, OpenAPI: &openapi.Operation{Summary: "List versions"}},
				},
			},
		},
		Schemas: map[string]*openapi.Schema{
			"Status": {Type: "object"},
		},
	}
}

func TestGroup_AddToSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")
	sessionsGroup().AddToSpec("/api", spec)

	item := spec.Paths["/api/sessions"]
	if item == nil || item.Get == nil || item.Post == nil {
		t.Fatalf("paths = %v, want GET and POST on /api/sessions", spec.Paths)
	}
	if item.Get.Summary != "List sessions" {
		t.Errorf("GET summary = %q, want %q", item.Get.Summary, "List sessions")
	}
	if len(item.Get.Tags) != 1 || item.Get.Tags[0] != "Sessions" {
		t.Errorf("inherited tags = %v, want [Sessions]", item.Get.Tags)
	}
	if len(item.Post.Tags) != 1 || item.Post.Tags[0] != "Editor" {
		t.Errorf("explicit tags = %v, want [Editor]", item.Post.Tags)
	}

	if spec.Paths["/api/sessions/{id}"] != nil {
		t.Error("route without OpenAPI should not be documented")
	}

	child := spec.Paths["/api/sessions/{id}/versions"]
	if child == nil || child.Get == nil {
		t.Fatal("child path not added")
	}
	if len(child.Get.Tags) != 1 || child.Get.Tags[0] != "Sessions" {
		t.Errorf("child tags = %v, want [Sessions]", child.Get.Tags)
	}

	if spec.Components.Schemas["Status"] == nil {
		t.Error("schema not added to spec")
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	spec := openapi.NewSpec("Test API", "1.0.0")

	group := routes.Group{
		Prefix: "/recent",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{kind}", Handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(r.PathValue("kind")))
			}},
		},
	}
	routes.Register(mux, "/api", spec, group)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recent/images", nil))

	if w.Code != http.StatusOK || w.Body.String() != "images" {
		t.Errorf("response = %d %q, want 200 images", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recent/images", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
