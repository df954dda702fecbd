package routes

import (
	"net/http"

	"github.com/JaimeStill/pdf-annotator/pkg/openapi"
)

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group

	// Schemas are added to the document components by AddToSpec.
	Schemas map[string]*openapi.Schema
}

// Route represents an HTTP route with method, pattern, and handler. Routes
// without an OpenAPI operation are left out of the generated document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// AddToSpec documents the group's routes, its children and its schemas
// under basePath. Operations without tags inherit the group's.
func (g Group) AddToSpec(basePath string, spec *openapi.Spec) {
	if len(g.Schemas) > 0 {
		if spec.Components == nil {
			spec.Components = openapi.NewComponents()
		}
		spec.Components.AddSchemas(g.Schemas)
	}

	prefix := basePath + g.Prefix
	for _, r := range g.Routes {
		if r.OpenAPI == nil {
			continue
		}
		if len(r.OpenAPI.Tags) == 0 {
			r.OpenAPI.Tags = g.Tags
		}
		spec.AddOperation(prefix+r.Pattern, r.Method, r.OpenAPI)
	}

	for _, c := range g.Children {
		if len(c.Tags) == 0 {
			c.Tags = g.Tags
		}
		c.AddToSpec(prefix, spec)
	}
}

// Register mounts every group's routes on mux under basePath and documents
// them in spec.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		register(mux, basePath, g)
		g.AddToSpec(basePath, spec)
	}
}

func register(mux *http.ServeMux, prefix string, g Group) {
	full := prefix + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+full+r.Pattern, r.Handler)
	}
	for _, c := range g.Children {
		register(mux, full, c)
	}
}
