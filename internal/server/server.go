// package server contains the loopback HTTP relay used during the Spotify link flow
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler with behavior that runs around it, such
// as request logging.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows which relay paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the request and writes the response
	Routes() []string // Routes returns the path patterns this handler claims
}

// Router registers relay handlers and applies middleware around them.
type Router interface {
	Use(middleware ...Middleware)                     // Use appends middleware to the stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for one method and path
	Handler(handler Handler)                          // Handler registers a Handler under all of its routes
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP serves the registered routes
}
