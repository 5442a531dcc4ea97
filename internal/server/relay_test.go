package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mixview/mixview/internal/shared"
)

func TestRelayHandler(t *testing.T) {
	t.Run("successful redirect", func(t *testing.T) {
		h := NewRelayHandler()
		srv := httptest.NewServer(h)
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/?spotify_connected=true")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "return to the terminal") {
			t.Errorf("expected landing page, got: %s", body)
		}

		select {
		case result := <-h.Result():
			if !result.Connected {
				t.Error("expected connected result")
			}
			if result.Error() != nil {
				t.Errorf("unexpected error: %v", result.Error())
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for relay result")
		}

		// Channel is closed after the single result.
		if _, ok := <-h.Result(); ok {
			t.Error("expected result channel to be closed")
		}
	})

	t.Run("error redirect", func(t *testing.T) {
		h := NewRelayHandler()
		srv := httptest.NewServer(h)
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/?error=spotify_auth_failed")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		select {
		case result := <-h.Result():
			if result.Connected {
				t.Error("expected failed result")
			}
			if result.Code != "spotify_auth_failed" {
				t.Errorf("expected code spotify_auth_failed, got %s", result.Code)
			}
			if !errors.Is(result.Error(), shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", result.Error())
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for relay result")
		}
	})

	t.Run("duplicate redirect rejected", func(t *testing.T) {
		h := NewRelayHandler()
		srv := httptest.NewServer(h)
		defer srv.Close()

		first, err := http.Get(srv.URL + "/?spotify_connected=true")
		if err != nil {
			t.Fatalf("first request failed: %v", err)
		}
		first.Body.Close()

		second, err := http.Get(srv.URL + "/?spotify_connected=true")
		if err != nil {
			t.Fatalf("second request failed: %v", err)
		}
		defer second.Body.Close()

		if second.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400 for duplicate, got %d", second.StatusCode)
		}
	})

	t.Run("stray request does not consume handler", func(t *testing.T) {
		h := NewRelayHandler()
		srv := httptest.NewServer(h)
		defer srv.Close()

		stray, err := http.Get(srv.URL + "/favicon.ico")
		if err != nil {
			t.Fatalf("stray request failed: %v", err)
		}
		stray.Body.Close()
		if stray.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404 for stray request, got %d", stray.StatusCode)
		}

		resp, err := http.Get(srv.URL + "/?spotify_connected=true")
		if err != nil {
			t.Fatalf("callback request failed: %v", err)
		}
		resp.Body.Close()

		select {
		case result := <-h.Result():
			if !result.Connected {
				t.Error("expected connected result after stray hit")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for relay result")
		}
	})

	t.Run("unknown error code passes through", func(t *testing.T) {
		h := NewRelayHandler()
		req := httptest.NewRequest(http.MethodGet, "/?error=backend_exploded", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		result := <-h.Result()
		if !strings.Contains(result.Error().Error(), "backend_exploded") {
			t.Errorf("expected raw code in error, got %v", result.Error())
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for GET, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for POST, got %d", rec.Code)
		}
	})

	t.Run("registers handler routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewRelayHandler())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?spotify_connected=true", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 from relay route, got %d", rec.Code)
		}
	})

	t.Run("middleware applied in order", func(t *testing.T) {
		var calls []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		want := []string{"first", "second", "handler"}
		if len(calls) != len(want) {
			t.Fatalf("expected %d calls, got %v", len(want), calls)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
			}
		}
	})

	t.Run("request logging middleware", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(LogRequests(logger))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if !strings.Contains(buf.String(), "/ping") {
			t.Errorf("expected request path in log output, got %q", buf.String())
		}
	})
}
