package routes

import "net/http"

// System collects routes, groups and mounted modules and builds the
// service's top-level handler from them.
type System interface {
	RegisterRoute(route Route)
	RegisterGroup(group Group)
	Handle(pattern string, handler http.Handler)
	Build() http.Handler

	Routes() []Route
	Groups() []Group
}
