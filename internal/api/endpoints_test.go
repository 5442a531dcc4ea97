package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mixview/mixview/internal/shared"
)

func TestAuthEndpoints(t *testing.T) {
	t.Run("Login Stores Token On Client", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/login" {
				t.Errorf("expected path '/auth/login', got %s", r.URL.Path)
			}

			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Fatalf("failed to decode credentials: %v", err)
			}
			if creds["username"] != "alice" || creds["password"] != "secret" {
				t.Errorf("unexpected credentials: %v", creds)
			}

			json.NewEncoder(w).Encode(TokenResponse{AccessToken: "jwt-token", TokenType: "bearer"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		token, err := c.Login(context.Background(), "alice", "secret")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "jwt-token" {
			t.Errorf("expected access token 'jwt-token', got %s", token.AccessToken)
		}
		if c.Token() != "jwt-token" {
			t.Errorf("expected client token set after login, got %q", c.Token())
		}
	})

	t.Run("Login Failure Surfaces Detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		_, err := c.Login(context.Background(), "alice", "wrong")

		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if c.Token() != "" {
			t.Error("expected no token stored after failed login")
		}
	})

	t.Run("Register Returns User", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/register" {
				t.Errorf("expected path '/auth/register', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(User{ID: 7, Username: "bob"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		user, err := c.Register(context.Background(), "bob", "hunter2")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != 7 || user.Username != "bob" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("Filter Lifecycle", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/auth/filters":
				json.NewEncoder(w).Encode([]Filter{{ID: 1, FilterType: "artist", Value: "Nickelback"}})
			case r.Method == http.MethodPost && r.URL.Path == "/auth/filters":
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["filter_type"] != "genre" {
					t.Errorf("expected filter_type 'genre', got %s", body["filter_type"])
				}
				json.NewEncoder(w).Encode(Filter{ID: 2, FilterType: "genre", Value: "polka"})
			case r.Method == http.MethodDelete && r.URL.Path == "/auth/filters/2":
				w.WriteHeader(http.StatusNoContent)
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		c.SetRateLimit(0)
		ctx := context.Background()

		filters, err := c.Filters(ctx)
		if err != nil {
			t.Fatalf("Filters: %v", err)
		}
		if len(filters) != 1 || filters[0].Value != "Nickelback" {
			t.Errorf("unexpected filters: %+v", filters)
		}

		added, err := c.AddFilter(ctx, "genre", "polka")
		if err != nil {
			t.Fatalf("AddFilter: %v", err)
		}
		if added.ID != 2 {
			t.Errorf("expected filter id 2, got %d", added.ID)
		}

		if err := c.DeleteFilter(ctx, 2); err != nil {
			t.Fatalf("DeleteFilter: %v", err)
		}
	})
}

func TestOAuthEndpoints(t *testing.T) {
	t.Run("SpotifyAuthURL", func(t *testing.T) {
		t.Run("Returns Backend URL", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/oauth/spotify/auth" {
					t.Errorf("expected path '/oauth/spotify/auth', got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(AuthURLResponse{AuthURL: "https://accounts.spotify.com/authorize?state=xyz"})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			url, err := c.SpotifyAuthURL(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if url != "https://accounts.spotify.com/authorize?state=xyz" {
				t.Errorf("unexpected auth URL: %s", url)
			}
		})

		t.Run("Empty URL Is An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(AuthURLResponse{})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			_, err := c.SpotifyAuthURL(context.Background())

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest for empty auth URL, got %v", err)
			}
		})
	})

	t.Run("ServicesStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ServicesStatusResponse{Services: []ServiceStatus{
				{ServiceName: "spotify", IsConnected: true, CredentialType: "oauth"},
				{ServiceName: "lastfm", IsConnected: false},
			}})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		status, err := c.ServicesStatus(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !status.Connected("spotify") {
			t.Error("expected spotify to be connected")
		}
		if status.Connected("lastfm") {
			t.Error("expected lastfm to be disconnected")
		}
		if status.Connected("discogs") {
			t.Error("expected unknown service to report disconnected")
		}
	})

	t.Run("StoreAPIKey", func(t *testing.T) {
		t.Run("Posts To Service Credential Endpoint", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/oauth/lastfm/credentials" {
					t.Errorf("expected path '/oauth/lastfm/credentials', got %s", r.URL.Path)
				}

				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["api_key"] != "abcd1234" {
					t.Errorf("expected api_key payload, got %v", body)
				}

				json.NewEncoder(w).Encode(MessageResponse{Message: "Last.fm credentials saved"})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			resp, err := c.StoreAPIKey(context.Background(), ServiceLastfm, "abcd1234")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Message == "" {
				t.Error("expected acknowledgment message")
			}
		})

		t.Run("Rejects Unknown Service", func(t *testing.T) {
			c := NewClient("http://example.com", nil)
			_, err := c.StoreAPIKey(context.Background(), "myspace", "key")

			if !errors.Is(err, shared.ErrUnknownService) {
				t.Errorf("expected ErrUnknownService, got %v", err)
			}
		})
	})

	t.Run("StoreToken Uses Token Field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth/discogs/credentials" {
				t.Errorf("expected path '/oauth/discogs/credentials', got %s", r.URL.Path)
			}

			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["token"] != "discogs-pat" {
				t.Errorf("expected token payload, got %v", body)
			}

			json.NewEncoder(w).Encode(MessageResponse{Message: "saved"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		if _, err := c.StoreToken(context.Background(), ServiceDiscogs, "discogs-pat"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("RemoveCredentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE method, got %s", r.Method)
			}
			if r.URL.Path != "/oauth/services/youtube" {
				t.Errorf("expected path '/oauth/services/youtube', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(MessageResponse{Message: "removed"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		if _, err := c.RemoveCredentials(context.Background(), ServiceYouTube); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("TestService", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.URL.Path != "/oauth/services/test/spotify" {
				t.Errorf("expected path '/oauth/services/test/spotify', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(TestResult{
				Service: "spotify", Status: "connected", TestSuccessful: true, Message: "Token valid",
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		result, err := c.TestService(context.Background(), ServiceSpotify)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.TestSuccessful {
			t.Error("expected successful test result")
		}
	})

	t.Run("TestAllServices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth/services/test/all" {
				t.Errorf("expected path '/oauth/services/test/all', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(TestAllResponse{
				Results: map[string]TestResult{
					"spotify": {Service: "spotify", TestSuccessful: true},
					"lastfm":  {Service: "lastfm", TestSuccessful: false, Message: "Invalid API key"},
				},
				Summary: TestSummary{TotalServices: 4, ConfiguredServices: 2, SuccessfulTests: 1},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.TestAllServices(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Summary.SuccessfulTests != 1 {
			t.Errorf("expected 1 successful test, got %d", resp.Summary.SuccessfulTests)
		}
		if resp.Results["lastfm"].TestSuccessful {
			t.Error("expected lastfm test to fail")
		}
	})

	t.Run("ServiceGuide", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth/services/help/lastfm" {
				t.Errorf("expected path '/oauth/services/help/lastfm', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(ServiceHelp{
				Service:      "lastfm",
				AuthType:     "api_key",
				Instructions: []string{"Visit last.fm/api", "Create an application"},
				SetupURL:     "https://www.last.fm/api/account/create",
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		help, err := c.ServiceGuide(context.Background(), ServiceLastfm)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(help.Instructions) != 2 {
			t.Errorf("expected 2 instructions, got %d", len(help.Instructions))
		}
	})
}

func TestSetupEndpoints(t *testing.T) {
	t.Run("SetupStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/setup/status" {
				t.Errorf("expected path '/setup/status', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(SetupStatusResponse{
				SetupRequired:      true,
				ConfiguredServices: []string{"spotify"},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		status, err := c.SetupStatus(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !status.SetupRequired {
			t.Error("expected setup to be required")
		}
	})

	t.Run("SetupProgress", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(SetupProgressResponse{
				SetupCompleted:       false,
				ConfiguredServices:   []string{"spotify", "lastfm"},
				CurrentStep:          "services",
				CompletionPercentage: 50,
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		progress, err := c.SetupProgress(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if progress.CompletionPercentage != 50 {
			t.Errorf("expected 50 percent, got %v", progress.CompletionPercentage)
		}
	})

	t.Run("SetupConfiguration Returns Catalog And Flow", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/setup/configuration" {
				t.Errorf("expected path '/setup/configuration', got %s", r.URL.Path)
			}
			var resp SetupConfigurationResponse
			resp.Services = map[string]SetupService{
				"spotify": {Name: "Spotify", Type: "oauth", RequiresServerConfig: true},
			}
			resp.SetupFlow.Steps = []FlowStep{
				{ID: "welcome", Title: "Welcome"},
				{ID: "services", Title: "Connect Services"},
				{ID: "test", Title: "Test Connections"},
				{ID: "complete", Title: "Complete"},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		cfg, err := c.SetupConfiguration(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(cfg.SetupFlow.Steps) != 4 {
			t.Errorf("expected 4 flow steps, got %d", len(cfg.SetupFlow.Steps))
		}
		if cfg.SetupFlow.Steps[0].ID != "welcome" {
			t.Errorf("expected first step 'welcome', got %s", cfg.SetupFlow.Steps[0].ID)
		}
		if !cfg.Services["spotify"].RequiresServerConfig {
			t.Error("expected spotify to require server config")
		}
	})

	t.Run("CompleteSetup Sends Configured Services", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/setup/complete" {
				t.Errorf("expected path '/setup/complete', got %s", r.URL.Path)
			}

			var body map[string][]string
			json.NewDecoder(r.Body).Decode(&body)
			if len(body["services_configured"]) != 2 {
				t.Errorf("expected 2 configured services, got %v", body)
			}

			json.NewEncoder(w).Encode(CompleteSetupResponse{Success: true, ConfiguredServices: body["services_configured"]})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.CompleteSetup(context.Background(), []string{"spotify", "lastfm"})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.Success {
			t.Error("expected success")
		}
	})

	t.Run("StoreServerConfig", func(t *testing.T) {
		t.Run("Posts Service Name And Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/setup/server-config" {
					t.Errorf("expected path '/setup/server-config', got %s", r.URL.Path)
				}

				var body struct {
					ServiceName string            `json:"service_name"`
					Credentials map[string]string `json:"credentials"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if body.ServiceName != "spotify" {
					t.Errorf("expected service_name 'spotify', got %s", body.ServiceName)
				}
				if body.Credentials["client_id"] != "cid" || body.Credentials["client_secret"] != "cs" {
					t.Errorf("unexpected credentials: %v", body.Credentials)
				}

				json.NewEncoder(w).Encode(MessageResponse{Message: "Spotify server configuration saved"})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			_, err := c.StoreServerConfig(context.Background(), "spotify", map[string]string{
				"client_id":     "cid",
				"client_secret": "cs",
			})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Rejects Empty Credentials", func(t *testing.T) {
			c := NewClient("http://example.com", nil)
			_, err := c.StoreServerConfig(context.Background(), "spotify", nil)

			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("ServerConfig Reports Configured Keys", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/setup/server-config/spotify" {
				t.Errorf("expected path '/setup/server-config/spotify', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(ServerConfigResponse{
				ServiceName:    "spotify",
				IsConfigured:   true,
				ConfiguredKeys: []string{"client_id", "client_secret"},
				RequiredKeys:   []string{"client_id", "client_secret"},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		cfg, err := c.ServerConfig(context.Background(), "spotify")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !cfg.IsConfigured {
			t.Error("expected spotify server config to be present")
		}
	})
}

func TestDiscoverEndpoints(t *testing.T) {
	t.Run("Search", func(t *testing.T) {
		t.Run("Builds Query Parameters", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("q") != "kid a" {
					t.Errorf("expected q 'kid a', got %s", q.Get("q"))
				}
				if q.Get("search_type") != "album" {
					t.Errorf("expected search_type 'album', got %s", q.Get("search_type"))
				}
				if q.Get("limit") != "5" {
					t.Errorf("expected limit '5', got %s", q.Get("limit"))
				}

				json.NewEncoder(w).Encode(SearchResponse{
					Albums: []Album{{Title: "Kid A", ReleaseYear: 2000}},
					Query:  "kid a",
				})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			resp, err := c.Search(context.Background(), "kid a", "album", 5)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(resp.Albums) != 1 || resp.Albums[0].Title != "Kid A" {
				t.Errorf("unexpected albums: %+v", resp.Albums)
			}
		})

		t.Run("Rejects Empty Query", func(t *testing.T) {
			c := NewClient("http://example.com", nil)
			_, err := c.Search(context.Background(), "", "artist", 10)

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Related", func(t *testing.T) {
		t.Run("Sends Seed Fields", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("artist_name") != "Radiohead" {
					t.Errorf("expected artist_name 'Radiohead', got %s", q.Get("artist_name"))
				}
				if q.Get("top_n") != "10" {
					t.Errorf("expected top_n '10', got %s", q.Get("top_n"))
				}
				if q.Has("album_title") {
					t.Error("expected album_title to be unset")
				}

				json.NewEncoder(w).Encode(RelatedResponse{
					Artists:           []Artist{{Name: "Portishead"}},
					AvailableServices: []string{"lastfm"},
				})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			resp, err := c.Related(context.Background(), RelatedQuery{ArtistName: "Radiohead", TopN: 10})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(resp.Artists) != 1 {
				t.Errorf("expected 1 related artist, got %d", len(resp.Artists))
			}
		})

		t.Run("Rejects Empty Seed", func(t *testing.T) {
			c := NewClient("http://example.com", nil)
			_, err := c.Related(context.Background(), RelatedQuery{})

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Combined Returns Message When Unconfigured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(CombinedResponse{
				Artists:           []Artist{},
				Message:           "No music services configured. Please set up your services in the settings.",
				AvailableServices: []string{},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.Combined(context.Background(), RelatedQuery{ArtistName: "Radiohead"})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Message == "" {
			t.Error("expected unconfigured message")
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Posts To Entity Path", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.URL.Path != "/aggregator/refresh/artist/42" {
					t.Errorf("expected path '/aggregator/refresh/artist/42', got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(RefreshResponse{Message: "refreshed", RelatedCount: 12})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			resp, err := c.Refresh(context.Background(), "artist", 42)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.RelatedCount != 12 {
				t.Errorf("expected related count 12, got %d", resp.RelatedCount)
			}
		})

		t.Run("Rejects Unknown Entity Type", func(t *testing.T) {
			c := NewClient("http://example.com", nil)
			_, err := c.Refresh(context.Background(), "playlist", 1)

			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("Health", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected path '/health', got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		health, err := c.Health(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if health.Status != "healthy" {
			t.Errorf("expected status 'healthy', got %s", health.Status)
		}
	})
}
