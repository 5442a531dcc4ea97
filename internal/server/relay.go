package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/mixview/mixview/internal/shared"
)

// RelayResult is the outcome of a Spotify link flow as reported by the
// backend's redirect.
type RelayResult struct {
	Connected bool
	Code      string
	err       error
}

func (r *RelayResult) Error() error {
	return r.err
}

// RelayHandler receives the backend's post-callback redirect during the
// Spotify link flow. The backend exchanges the authorization code and
// stores the tokens itself, then redirects the user's browser here with
// the outcome in query parameters.
//
// Implements the Handler interface for registration with a Router.
type RelayHandler struct {
	resultChan  chan RelayResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewRelayHandler creates a relay handler ready to receive one redirect.
func NewRelayHandler() *RelayHandler {
	return &RelayHandler{
		resultChan: make(chan RelayResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
//
// The backend redirects to the configured frontend origin root, so the
// relay claims "/".
func (h *RelayHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP handles the backend redirect.
//
// Requests without the outcome query parameters (favicons, stray hits)
// are not callbacks and do not consume the handler.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	connected := q.Get("spotify_connected")
	errCode := q.Get("error")

	if connected == "" && errCode == "" {
		http.NotFound(w, r)
		return
	}

	// Only handle the redirect once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if errCode != "" {
		h.Send(RelayResult{
			Code: errCode,
			err:  fmt.Errorf("%w: %s", shared.ErrAuthFailed, describeCode(errCode)),
		})
		writePage(w, "#E22134", "✗ Spotify Link Failed", describeCode(errCode)+". You can close this window and return to the terminal.")
		return
	}

	h.Send(RelayResult{Connected: true})
	writePage(w, "#1DB954", "✓ Spotify Connected", "You can close this window and return to the terminal.")
}

// Send sends the relay result through the channel (only once).
func (h *RelayHandler) Send(result RelayResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *RelayHandler) Result() <-chan RelayResult {
	return h.resultChan
}

// describeCode maps the backend's error codes to readable messages.
func describeCode(code string) string {
	switch code {
	case "spotify_auth_failed":
		return "Spotify denied the authorization request"
	case "spotify_connection_failed":
		return "the backend could not store the Spotify connection"
	case "spotify_callback_error":
		return "the backend failed while handling the Spotify callback"
	default:
		return code
	}
}

// writePage renders the minimal landing page shown in the user's browser.
func writePage(w http.ResponseWriter, accent, heading, message string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>MixView</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: %s; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`, accent, heading, message)
}
