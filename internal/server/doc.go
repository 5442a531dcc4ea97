// Package server provides HTTP routing, middleware, and the OAuth relay for the link flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order, so the first middleware added executes first, following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Relay Handler
//
// RelayHandler receives the backend's redirect at the end of the Spotify link flow.
//
// The backend performs the full authorization code exchange itself and stores the
// resulting tokens server-side. All the relay sees is the outcome, encoded in query
// parameters on a redirect to the configured frontend origin: spotify_connected=true
// on success, or error=<code> on failure.
//
// The handler parses that outcome, sends it through a channel exactly once, and
// renders a small page telling the user to return to the terminal. It only
// processes one redirect; later hits get a 400.
//
// # Current Usage
//
// When the user runs the link command, a temporary HTTP server binds the configured
// relay origin (localhost:3001 by default), waits for the redirect, and shuts down
// after the result is delivered.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
