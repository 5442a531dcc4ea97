package setup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/server"
	"github.com/mixview/mixview/internal/shared"
)

// fakeBackend wires a minimal slice of the backend API for orchestrator tests.
type fakeBackend struct {
	mux       *http.ServeMux
	srv       *httptest.Server
	credCalls atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{mux: http.NewServeMux()}
	fb.srv = httptest.NewServer(fb.mux)
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) client() *api.Client {
	return api.NewClient(fb.srv.URL, nil)
}

func (fb *fakeBackend) handleJSON(pattern string, v any) {
	fb.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(v)
	})
}

func (fb *fakeBackend) handleCredentials(service string) {
	fb.mux.HandleFunc("/oauth/"+service+"/credentials", func(w http.ResponseWriter, r *http.Request) {
		fb.credCalls.Add(1)
		json.NewEncoder(w).Encode(api.MessageResponse{Message: service + " credentials saved"})
	})
}

func statusResponse(connected ...string) api.ServicesStatusResponse {
	resp := api.ServicesStatusResponse{}
	for _, name := range api.LinkableServices {
		s := api.ServiceStatus{ServiceName: name}
		for _, c := range connected {
			if c == name {
				s.IsConnected = true
			}
		}
		resp.Services = append(resp.Services, s)
	}
	return resp
}

func drainUpdates(progress chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-progress:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func hasPhase(updates []ProgressUpdate, phase Phase) bool {
	for _, u := range updates {
		if u.Phase == phase {
			return true
		}
	}
	return false
}

func TestLinkAPIKey(t *testing.T) {
	validLastfmKey := strings.Repeat("a1", 16)

	t.Run("stores and tests a lastfm key", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleCredentials("lastfm")
		fb.handleJSON("/oauth/services/test/lastfm", api.TestResult{
			Service: "lastfm", Status: "connected", TestSuccessful: true, Message: "Last.fm connection working",
		})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		progress := make(chan ProgressUpdate, 32)

		result, err := o.LinkAPIKey(context.Background(), progress, "lastfm", validLastfmKey, false)
		if err != nil {
			t.Fatalf("LinkAPIKey() error = %v", err)
		}
		if !result.TestSuccessful {
			t.Error("expected successful test result")
		}
		if fb.credCalls.Load() != 1 {
			t.Errorf("expected 1 credentials call, got %d", fb.credCalls.Load())
		}

		updates := drainUpdates(progress)
		for _, phase := range []Phase{APIKey, Testing, Connected} {
			if !hasPhase(updates, phase) {
				t.Errorf("expected a %s update, got %+v", phase, updates)
			}
		}
	})

	t.Run("rejects bad format before any backend call", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleCredentials("lastfm")

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		progress := make(chan ProgressUpdate, 32)

		_, err := o.LinkAPIKey(context.Background(), progress, "lastfm", "too-short", false)
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if fb.credCalls.Load() != 0 {
			t.Error("expected no backend call for malformed key")
		}
		if !hasPhase(drainUpdates(progress), Failed) {
			t.Error("expected a failure update")
		}
	})

	t.Run("rejects spotify", func(t *testing.T) {
		o := NewOrchestrator(newFakeBackend(t).client(), nil, shared.NewLogger(nil), "127.0.0.1:0")

		_, err := o.LinkAPIKey(context.Background(), nil, "spotify", "whatever", false)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects unknown service", func(t *testing.T) {
		o := NewOrchestrator(newFakeBackend(t).client(), nil, shared.NewLogger(nil), "127.0.0.1:0")

		_, err := o.LinkAPIKey(context.Background(), nil, "soundcloud", "tok", false)
		if !errors.Is(err, shared.ErrUnknownService) {
			t.Errorf("expected ErrUnknownService, got %v", err)
		}
	})

	t.Run("discogs token path", func(t *testing.T) {
		fb := newFakeBackend(t)
		var gotPayload map[string]string
		fb.mux.HandleFunc("/oauth/discogs/credentials", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotPayload)
			json.NewEncoder(w).Encode(api.MessageResponse{Message: "saved"})
		})
		fb.handleJSON("/oauth/services/test/discogs", api.TestResult{
			Service: "discogs", TestSuccessful: true, Message: "ok",
		})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		if _, err := o.LinkAPIKey(context.Background(), nil, "discogs", "DiscogsPersonalToken", false); err != nil {
			t.Fatalf("LinkAPIKey() error = %v", err)
		}

		if gotPayload["token"] != "DiscogsPersonalToken" {
			t.Errorf("expected token payload, got %+v", gotPayload)
		}
	})

	t.Run("test failure surfaces result and error", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleCredentials("lastfm")
		fb.handleJSON("/oauth/services/test/lastfm", api.TestResult{
			Service: "lastfm", Status: "error", TestSuccessful: false, Message: "Invalid API key",
		})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		progress := make(chan ProgressUpdate, 32)

		result, err := o.LinkAPIKey(context.Background(), progress, "lastfm", validLastfmKey, false)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if result == nil || result.Message != "Invalid API key" {
			t.Errorf("expected test result alongside error, got %+v", result)
		}
		if !hasPhase(drainUpdates(progress), Failed) {
			t.Error("expected a failure update")
		}
	})
}

func TestWatcher(t *testing.T) {
	compress := func(w *Watcher) {
		w.PollInterval = 5 * time.Millisecond
		w.MaxPolls = 50
		w.Deadline = 2 * time.Second
	}

	t.Run("returns when status flips", func(t *testing.T) {
		fb := newFakeBackend(t)
		var calls atomic.Int32
		fb.mux.HandleFunc("/oauth/services/status", func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) >= 3 {
				json.NewEncoder(w).Encode(statusResponse("spotify"))
				return
			}
			json.NewEncoder(w).Encode(statusResponse())
		})

		watcher := NewWatcher(fb.client())
		compress(watcher)

		progress := make(chan ProgressUpdate, 64)
		if err := watcher.Wait(context.Background(), progress, nil, nil); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if calls.Load() < 3 {
			t.Errorf("expected at least 3 polls, got %d", calls.Load())
		}
		if !hasPhase(drainUpdates(progress), Credentials) {
			t.Error("expected waiting updates while polling")
		}
	})

	t.Run("tolerates transient poll errors", func(t *testing.T) {
		fb := newFakeBackend(t)
		var calls atomic.Int32
		fb.mux.HandleFunc("/oauth/services/status", func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(statusResponse("spotify"))
		})

		watcher := NewWatcher(fb.client())
		compress(watcher)

		if err := watcher.Wait(context.Background(), nil, nil, nil); err != nil {
			t.Fatalf("expected transient errors to be tolerated, got %v", err)
		}
	})

	t.Run("relay success short-circuits", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/services/status", statusResponse("spotify"))

		watcher := NewWatcher(fb.client())
		watcher.PollInterval = time.Hour // only the relay can finish this
		watcher.Deadline = 2 * time.Second

		h := server.NewRelayHandler()
		h.Send(server.RelayResult{Connected: true})

		if err := watcher.Wait(context.Background(), nil, h.Result(), nil); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	})

	t.Run("relay success falls back to polling until backend commits", func(t *testing.T) {
		fb := newFakeBackend(t)
		var calls atomic.Int32
		fb.mux.HandleFunc("/oauth/services/status", func(w http.ResponseWriter, r *http.Request) {
			// Not committed on the confirming fetch, committed on a later poll.
			if calls.Add(1) >= 2 {
				json.NewEncoder(w).Encode(statusResponse("spotify"))
				return
			}
			json.NewEncoder(w).Encode(statusResponse())
		})

		watcher := NewWatcher(fb.client())
		compress(watcher)

		h := server.NewRelayHandler()
		h.Send(server.RelayResult{Connected: true})

		if err := watcher.Wait(context.Background(), nil, h.Result(), nil); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if calls.Load() < 2 {
			t.Errorf("expected confirming fetch plus a poll, got %d calls", calls.Load())
		}
	})

	t.Run("relay error fails immediately", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/services/status", statusResponse())

		watcher := NewWatcher(fb.client())
		watcher.PollInterval = time.Hour
		watcher.Deadline = 2 * time.Second

		h := server.NewRelayHandler()
		req := httptest.NewRequest(http.MethodGet, "/?error=spotify_auth_failed", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)

		err := watcher.Wait(context.Background(), nil, h.Result(), nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("gives up after max polls", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/services/status", statusResponse())

		watcher := NewWatcher(fb.client())
		watcher.PollInterval = time.Millisecond
		watcher.MaxPolls = 3
		watcher.Deadline = 2 * time.Second

		err := watcher.Wait(context.Background(), nil, nil, nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if !strings.Contains(err.Error(), "3") {
			t.Errorf("expected poll count in error, got %v", err)
		}
	})

	t.Run("deadline bounds the wait", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/services/status", statusResponse())

		watcher := NewWatcher(fb.client())
		watcher.PollInterval = time.Hour
		watcher.MaxPolls = 1000
		watcher.Deadline = 20 * time.Millisecond

		err := watcher.Wait(context.Background(), nil, nil, nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("relay bind failure aborts", func(t *testing.T) {
		watcher := NewWatcher(newFakeBackend(t).client())
		watcher.PollInterval = time.Hour
		watcher.Deadline = 2 * time.Second

		serverErrors := make(chan error, 1)
		serverErrors <- fmt.Errorf("listen tcp 127.0.0.1:3001: address already in use")

		err := watcher.Wait(context.Background(), nil, nil, serverErrors)
		if err == nil || !strings.Contains(err.Error(), "address already in use") {
			t.Errorf("expected bind failure to surface, got %v", err)
		}
	})
}

func TestLinkSpotify(t *testing.T) {
	freeAddr := func(t *testing.T) string {
		t.Helper()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to find a free port: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()
		return addr
	}

	t.Run("full flow with simulated redirect", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/spotify/auth", api.AuthURLResponse{AuthURL: "https://accounts.spotify.com/authorize?state=x"})
		fb.handleJSON("/oauth/services/status", statusResponse("spotify"))
		fb.handleJSON("/oauth/services/test/spotify", api.TestResult{
			Service: "spotify", TestSuccessful: true, Message: "Spotify connection working",
		})

		addr := freeAddr(t)
		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), addr)
		o.Watcher().PollInterval = 10 * time.Millisecond
		o.Watcher().Deadline = 5 * time.Second

		// Stand in for the user's browser: hit the relay as the backend
		// redirect would.
		o.OpenBrowser = func(url string) error {
			go func() {
				time.Sleep(50 * time.Millisecond)
				resp, err := http.Get("http://" + addr + "/?spotify_connected=true")
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		progress := make(chan ProgressUpdate, 64)
		result, err := o.LinkSpotify(context.Background(), progress, false)
		if err != nil {
			t.Fatalf("LinkSpotify() error = %v", err)
		}
		if !result.TestSuccessful {
			t.Error("expected successful spotify test")
		}

		updates := drainUpdates(progress)
		for _, phase := range []Phase{Intro, Credentials, Testing, Connected} {
			if !hasPhase(updates, phase) {
				t.Errorf("expected a %s update", phase)
			}
		}
	})

	t.Run("no browser emits the url", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/spotify/auth", api.AuthURLResponse{AuthURL: "https://accounts.spotify.com/authorize?state=y"})
		fb.handleJSON("/oauth/services/status", statusResponse("spotify"))
		fb.handleJSON("/oauth/services/test/spotify", api.TestResult{Service: "spotify", TestSuccessful: true})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), freeAddr(t))
		o.Watcher().PollInterval = 10 * time.Millisecond
		o.Watcher().Deadline = 5 * time.Second
		o.OpenBrowser = func(url string) error {
			t.Error("browser must not be opened with noBrowser set")
			return nil
		}

		progress := make(chan ProgressUpdate, 64)
		if _, err := o.LinkSpotify(context.Background(), progress, true); err != nil {
			t.Fatalf("LinkSpotify() error = %v", err)
		}

		found := false
		for _, u := range drainUpdates(progress) {
			if strings.Contains(u.Message, "accounts.spotify.com") {
				found = true
			}
		}
		if !found {
			t.Error("expected an update carrying the authorization URL")
		}
	})

	t.Run("auth url failure", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.mux.HandleFunc("/oauth/spotify/auth", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Spotify integration not configured"})
		})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), freeAddr(t))
		_, err := o.LinkSpotify(context.Background(), nil, true)
		if err == nil || !strings.Contains(err.Error(), "Spotify integration not configured") {
			t.Errorf("expected backend detail in error, got %v", err)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("aggregates sets and percentage", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/setup/status", api.SetupStatusResponse{
			UserSetupComplete: false,
			AvailableServices: map[string]api.SetupService{
				"spotify": {Name: "Spotify"},
				"lastfm":  {Name: "Last.fm"},
				"discogs": {Name: "Discogs"},
				"youtube": {Name: "YouTube"},
			},
		})
		fb.handleJSON("/oauth/services/status", statusResponse("spotify", "lastfm"))

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		agg, err := o.Status(context.Background())
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}

		if len(agg.Required) != 4 {
			t.Errorf("expected 4 required services, got %v", agg.Required)
		}
		if len(agg.Connected) != 2 {
			t.Errorf("expected 2 connected services, got %v", agg.Connected)
		}
		want := []string{"discogs", "youtube"}
		if len(agg.Missing) != len(want) || agg.Missing[0] != want[0] || agg.Missing[1] != want[1] {
			t.Errorf("expected missing %v, got %v", want, agg.Missing)
		}
		if agg.Completion != 50 {
			t.Errorf("expected 50%% completion, got %f", agg.Completion)
		}
		if agg.Complete {
			t.Error("expected setup not complete")
		}
	})

	t.Run("falls back to known services", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/setup/status", api.SetupStatusResponse{})
		fb.handleJSON("/oauth/services/status", statusResponse())

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		agg, err := o.Status(context.Background())
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if len(agg.Required) != len(api.LinkableServices) {
			t.Errorf("expected fallback to linkable services, got %v", agg.Required)
		}
	})
}

func TestComplete(t *testing.T) {
	t.Run("posts connected services", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/setup/status", api.SetupStatusResponse{})
		fb.handleJSON("/oauth/services/status", statusResponse("spotify", "lastfm"))

		var posted struct {
			ServicesConfigured []string `json:"services_configured"`
		}
		fb.mux.HandleFunc("/setup/complete", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&posted)
			json.NewEncoder(w).Encode(api.CompleteSetupResponse{Success: true, ConfiguredServices: posted.ServicesConfigured})
		})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		resp, err := o.Complete(context.Background())
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if !resp.Success {
			t.Error("expected success")
		}
		if len(posted.ServicesConfigured) != 2 {
			t.Errorf("expected 2 services posted, got %v", posted.ServicesConfigured)
		}
	})

	t.Run("refuses with nothing connected", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/setup/status", api.SetupStatusResponse{})
		fb.handleJSON("/oauth/services/status", statusResponse())

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		_, err := o.Complete(context.Background())
		if !errors.Is(err, shared.ErrSetupIncomplete) {
			t.Errorf("expected ErrSetupIncomplete, got %v", err)
		}
	})
}

func TestTestAll(t *testing.T) {
	t.Run("emits per-service updates", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.handleJSON("/oauth/services/test/all", api.TestAllResponse{
			Results: map[string]api.TestResult{
				"lastfm":  {Service: "lastfm", TestSuccessful: true, Message: "ok"},
				"discogs": {Service: "discogs", TestSuccessful: false, Message: "bad token"},
			},
			Summary: api.TestSummary{TotalServices: 4, ConfiguredServices: 2, SuccessfulTests: 1},
		})

		o := NewOrchestrator(fb.client(), nil, shared.NewLogger(nil), "127.0.0.1:0")
		progress := make(chan ProgressUpdate, 32)

		resp, err := o.TestAll(context.Background(), progress)
		if err != nil {
			t.Fatalf("TestAll() error = %v", err)
		}
		if resp.Summary.SuccessfulTests != 1 {
			t.Errorf("expected 1 successful test, got %d", resp.Summary.SuccessfulTests)
		}

		updates := drainUpdates(progress)
		if !hasPhase(updates, Connected) || !hasPhase(updates, Failed) {
			t.Errorf("expected both connected and failed updates, got %+v", updates)
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		Intro:       "intro",
		Credentials: "credentials",
		APIKey:      "apikey",
		Testing:     "testing",
		Connected:   "connected",
		Failed:      "error",
		Phase(99):   "",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
