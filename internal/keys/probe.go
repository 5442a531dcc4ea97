package keys

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mixview/mixview/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// Provider endpoints probed for credential checks. The probes mirror the
// requests the backend makes when it tests a stored credential.
const (
	lastfmAPIURL    = "http://ws.audioscrobbler.com/2.0/"
	discogsAPIURL   = "https://api.discogs.com"
	youtubeAPIURL   = "https://www.googleapis.com/youtube/v3"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	probeTimeout = 10 * time.Second
)

// Prober verifies credentials against the provider APIs.
type Prober struct {
	httpClient *http.Client
	limiter    *rate.Limiter

	lastfmURL       string
	discogsURL      string
	youtubeURL      string
	spotifyTokenURL string
}

// NewProber creates a prober with the real provider endpoints.
//
// A nil httpClient gets a default with a request timeout. All probes share
// one limiter so a wizard retesting keys stays polite.
func NewProber(httpClient *http.Client) *Prober {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: probeTimeout}
	}

	return &Prober{
		httpClient:      httpClient,
		limiter:         rate.NewLimiter(rate.Limit(1), 4),
		lastfmURL:       lastfmAPIURL,
		discogsURL:      discogsAPIURL,
		youtubeURL:      youtubeAPIURL,
		spotifyTokenURL: spotifyTokenURL,
	}
}

// Probe verifies a credential for the given service, checking format first.
func (p *Prober) Probe(ctx context.Context, service, credential string) error {
	if err := ValidateFormat(service, credential); err != nil {
		return err
	}

	switch service {
	case "lastfm":
		return p.Lastfm(ctx, credential)
	case "discogs":
		return p.Discogs(ctx, credential)
	case "youtube":
		return p.YouTube(ctx, credential)
	default:
		return fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}
}

// Lastfm checks an API key with an artist.getinfo lookup. Last.fm answers
// 200 even for bad keys, so the body is inspected for an error payload.
func (p *Prober) Lastfm(ctx context.Context, key string) error {
	params := url.Values{}
	params.Set("method", "artist.getinfo")
	params.Set("artist", "Radiohead")
	params.Set("api_key", key)
	params.Set("format", "json")

	resp, err := p.get(ctx, p.lastfmURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: last.fm returned status %d", shared.ErrInvalidCredentials, resp.StatusCode)
	}

	var body struct {
		Error   int    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode last.fm response: %w", err)
	}
	if body.Error != 0 {
		return fmt.Errorf("%w: last.fm rejected the key: %s", shared.ErrInvalidCredentials, body.Message)
	}

	return nil
}

// Discogs checks a personal access token with a database search.
func (p *Prober) Discogs(ctx context.Context, token string) error {
	params := url.Values{}
	params.Set("q", "Beatles")
	params.Set("type", "artist")

	headers := http.Header{}
	headers.Set("Authorization", "Discogs token="+token)

	resp, err := p.get(ctx, p.discogsURL+"/database/search?"+params.Encode(), headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: discogs returned status %d", shared.ErrInvalidCredentials, resp.StatusCode)
	}

	return nil
}

// YouTube checks a Data API key with a minimal search request.
func (p *Prober) YouTube(ctx context.Context, key string) error {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", "test")
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", key)

	resp, err := p.get(ctx, p.youtubeURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Message != "" {
			return fmt.Errorf("%w: youtube rejected the key: %s", shared.ErrInvalidCredentials, body.Error.Message)
		}
		return fmt.Errorf("%w: youtube returned status %d", shared.ErrInvalidCredentials, resp.StatusCode)
	}

	return nil
}

// SpotifyServerCreds checks server-wide Spotify app credentials with a
// client-credentials token grant.
func (p *Prober) SpotifyServerCreds(ctx context.Context, clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: spotify needs a client id and secret", shared.ErrMissingCredentials)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     p.spotifyTokenURL,
	}

	token, err := config.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	if err != nil {
		return fmt.Errorf("%w: spotify rejected the credentials: %v", shared.ErrInvalidCredentials, err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: spotify returned an empty token", shared.ErrInvalidCredentials)
	}

	return nil
}

func (p *Prober) get(ctx context.Context, rawURL string, headers http.Header) (*http.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return resp, nil
}
