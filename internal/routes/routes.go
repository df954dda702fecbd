// Package routes builds the service's top-level HTTP handler from registered
// routes, route groups and mounted modules.
package routes

import (
	"log/slog"
	"net/http"
	"strings"

	pkgroutes "github.com/JaimeStill/pdf-annotator/pkg/routes"
)

type mount struct {
	pattern string
	handler http.Handler
}

type routes struct {
	routes []pkgroutes.Route
	groups []pkgroutes.Group
	mounts []mount
	logger *slog.Logger
}

// New creates a route system with the specified logger.
func New(logger *slog.Logger) pkgroutes.System {
	return &routes{
		logger: logger.With("system", "routes"),
	}
}

func (r *routes) Groups() []pkgroutes.Group {
	return r.groups
}

func (r *routes) Routes() []pkgroutes.Route {
	return r.routes
}

// RegisterRoute adds a route to the route system.
func (r *routes) RegisterRoute(route pkgroutes.Route) {
	r.routes = append(r.routes, route)
}

// RegisterGroup adds a route group to the route system.
func (r *routes) RegisterGroup(group pkgroutes.Group) {
	r.groups = append(r.groups, group)
}

// Handle mounts handler at pattern. A pattern ending in "/" matches its
// whole subtree.
func (r *routes) Handle(pattern string, handler http.Handler) {
	r.mounts = append(r.mounts, mount{pattern: pattern, handler: handler})
}

// Build constructs an http.Handler from all registered routes, groups and
// mounts.
func (r *routes) Build() http.Handler {
	mux := http.NewServeMux()

	for _, route := range r.routes {
		mux.HandleFunc(route.Method+" "+route.Pattern, route.Handler)
	}

	for _, group := range r.groups {
		r.registerGroup(mux, "", group)
	}

	for _, m := range r.mounts {
		mux.Handle(m.pattern, m.handler)
		if prefix, ok := strings.CutSuffix(m.pattern, "/"); ok && prefix != "" {
			mux.Handle(prefix, m.handler)
		}
	}

	r.logger.Debug("routes built", "routes", len(r.routes), "groups", len(r.groups), "mounts", len(r.mounts))
	return mux
}

func (r *routes) registerGroup(mux *http.ServeMux, parentPrefix string, group pkgroutes.Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+fullPrefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		r.registerGroup(mux, fullPrefix, child)
	}
}
