package api

import (
	"encoding/json"
	"fmt"
)

// FlexID tolerates the backend's mixed id types: cached rows carry integer
// ids, live results carry prefixed strings like "lastfm_Radiohead".
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}

	return fmt.Errorf("id is neither string nor number: %s", string(data))
}

func (f FlexID) String() string { return string(f) }

// User is the authenticated account returned by /auth endpoints.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// TokenResponse is the session token issued on login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Filter is a user-level result filter (e.g. exclude a genre or artist).
type Filter struct {
	ID         int    `json:"id"`
	FilterType string `json:"filter_type"`
	Value      string `json:"value"`
}

// AuthURLResponse carries the backend-built Spotify authorization URL.
type AuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// ServiceStatus describes one linked (or linkable) service for the user.
type ServiceStatus struct {
	ServiceName    string `json:"service_name"`
	IsConnected    bool   `json:"is_connected"`
	CredentialType string `json:"credential_type"`
	ConnectedAt    string `json:"connected_at,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
}

// ServicesStatusResponse is the per-user connection state of every service.
type ServicesStatusResponse struct {
	Services []ServiceStatus `json:"services"`
}

// Connected reports whether the named service is linked for the user.
func (r *ServicesStatusResponse) Connected(service string) bool {
	for _, s := range r.Services {
		if s.ServiceName == service && s.IsConnected {
			return true
		}
	}
	return false
}

// MessageResponse is the generic {"message": ...} acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}

// TestResult is the outcome of a single service connection test.
type TestResult struct {
	Service        string `json:"service"`
	Status         string `json:"status"`
	TestSuccessful bool   `json:"test_successful"`
	Message        string `json:"message"`
}

// TestSummary aggregates a test-all run.
type TestSummary struct {
	TotalServices      int  `json:"total_services"`
	ConfiguredServices int  `json:"configured_services"`
	SuccessfulTests    int  `json:"successful_tests"`
	AllWorking         bool `json:"all_working"`
}

// TestAllResponse is the result of testing every configured service.
type TestAllResponse struct {
	Results map[string]TestResult `json:"results"`
	Summary TestSummary           `json:"summary"`
}

// ServiceHelp contains setup guidance for one service.
type ServiceHelp struct {
	Service      string   `json:"service"`
	AuthType     string   `json:"auth_type"`
	Instructions []string `json:"instructions"`
	SetupURL     string   `json:"setup_url"`
}

// SetupStep is one instruction block inside a service's setup guide.
type SetupStep struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ActionURL    string   `json:"action_url,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// SetupService describes a linkable service in the setup catalog.
type SetupService struct {
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	Type                 string      `json:"type"`
	RequiresServerConfig bool        `json:"requires_server_config"`
	Configured           bool        `json:"configured"`
	SetupSteps           []SetupStep `json:"setup_steps,omitempty"`
	RedirectURI          string      `json:"redirect_uri,omitempty"`
	UserConfigured       bool        `json:"user_configured"`
}

// SetupStatusResponse is the aggregate setup state for the user.
type SetupStatusResponse struct {
	SetupRequired       bool                    `json:"setup_required"`
	GlobalSetupComplete bool                    `json:"global_setup_complete"`
	UserSetupComplete   bool                    `json:"user_setup_complete"`
	AvailableServices   map[string]SetupService `json:"available_services"`
	ConfiguredServices  []string                `json:"configured_services"`
}

// PublicSetupStatus is the unauthenticated setup summary.
type PublicSetupStatus struct {
	RequiresSetup      bool     `json:"requires_setup"`
	ServicesConfigured []string `json:"services_configured"`
	Reason             string   `json:"reason,omitempty"`
}

// FlowStep is one stage of the guided setup flow.
type FlowStep struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SetupConfigurationResponse carries the service catalog plus the wizard flow.
type SetupConfigurationResponse struct {
	Services  map[string]SetupService `json:"services"`
	SetupFlow struct {
		Steps []FlowStep `json:"steps"`
	} `json:"setup_flow"`
}

// SetupProgressResponse tracks how far the user is through setup.
type SetupProgressResponse struct {
	SetupCompleted       bool     `json:"setup_completed"`
	ConfiguredServices   []string `json:"configured_services"`
	CurrentStep          string   `json:"current_step"`
	CompletionPercentage float64  `json:"completion_percentage"`
}

// CompleteSetupResponse acknowledges a setup completion.
type CompleteSetupResponse struct {
	Success            bool     `json:"success"`
	Message            string   `json:"message"`
	ConfiguredServices []string `json:"configured_services"`
}

// ServerConfigResponse describes server-wide credentials for a service.
type ServerConfigResponse struct {
	ServiceName          string   `json:"service_name"`
	IsConfigured         bool     `json:"is_configured"`
	ConfiguredKeys       []string `json:"configured_keys"`
	RequiredKeys         []string `json:"required_keys"`
	RequiresServerConfig bool     `json:"requires_server_config"`
}

// Artist is a serialized artist row or live lookup result.
type Artist struct {
	ID          FlexID `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	SpotifyID   string `json:"spotify_id,omitempty"`
	LastfmID    string `json:"lastfm_id,omitempty"`
	DiscogsID   string `json:"discogs_id,omitempty"`
	Description string `json:"description,omitempty"`
	AppleLink   string `json:"apple_link,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Album is a serialized album with an optional embedded artist.
type Album struct {
	ID          FlexID  `json:"id"`
	Title       string  `json:"title"`
	ReleaseYear int     `json:"release_year,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	SpotifyID   string  `json:"spotify_id,omitempty"`
	LastfmID    string  `json:"lastfm_id,omitempty"`
	DiscogsID   string  `json:"discogs_id,omitempty"`
	Artist      *Artist `json:"artist,omitempty"`
	AppleLink   string  `json:"apple_link,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// AlbumRef is the minimal album reference embedded in tracks.
type AlbumRef struct {
	ID    FlexID `json:"id"`
	Title string `json:"title"`
}

// Track is a serialized track with optional embedded artist and album.
type Track struct {
	ID              FlexID    `json:"id"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	SpotifyID       string    `json:"spotify_id,omitempty"`
	LastfmID        string    `json:"lastfm_id,omitempty"`
	DiscogsID       string    `json:"discogs_id,omitempty"`
	AppleMusicURL   string    `json:"apple_music_url,omitempty"`
	Artist          *Artist   `json:"artist,omitempty"`
	Album           *AlbumRef `json:"album,omitempty"`
	AppleLink       string    `json:"apple_link,omitempty"`
	Source          string    `json:"source,omitempty"`
}

// SearchResponse is the merged cross-service search result.
type SearchResponse struct {
	Artists    []Artist `json:"artists"`
	Albums     []Album  `json:"albums"`
	Tracks     []Track  `json:"tracks"`
	Query      string   `json:"query"`
	SearchType string   `json:"search_type"`
}

// RelatedQuery selects the seed entity for a related-content lookup.
//
// At least one of the names must be set.
type RelatedQuery struct {
	ArtistName string
	AlbumTitle string
	TrackTitle string
	TopN       int
}

// RelatedResponse is the related-content fan-out for a seed entity.
type RelatedResponse struct {
	Artists           []Artist `json:"artists"`
	Albums            []Album  `json:"albums"`
	Tracks            []Track  `json:"tracks"`
	Query             any      `json:"query,omitempty"`
	AvailableServices []string `json:"available_services"`
}

// CombinedResponse is the merged node set used for graph building. Message
// is only set when no services are configured.
type CombinedResponse struct {
	Artists           []Artist `json:"artists"`
	Albums            []Album  `json:"albums"`
	Tracks            []Track  `json:"tracks"`
	Message           string   `json:"message,omitempty"`
	AvailableServices []string `json:"available_services"`
}

// StatsResponse reports user and database counters.
type StatsResponse struct {
	UserStats     map[string]int `json:"user_stats"`
	DatabaseStats map[string]int `json:"database_stats"`
	ServiceStats  map[string]any `json:"service_stats,omitempty"`
}

// RefreshResponse acknowledges a relationship recompute.
type RefreshResponse struct {
	Message           string   `json:"message"`
	RelatedCount      int      `json:"related_count"`
	AvailableServices []string `json:"available_services"`
}

// HealthResponse is the backend liveness summary.
type HealthResponse struct {
	Status   string          `json:"status"`
	Database string          `json:"database,omitempty"`
	Services map[string]bool `json:"services,omitempty"`
}
