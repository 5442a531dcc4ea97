package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mixview/mixview/internal/shared"
)

// Service names accepted by the backend's credential endpoints.
const (
	ServiceSpotify = "spotify"
	ServiceLastfm  = "lastfm"
	ServiceDiscogs = "discogs"
	ServiceYouTube = "youtube"
)

// LinkableServices lists every service the backend can hold credentials for,
// in display order.
var LinkableServices = []string{ServiceSpotify, ServiceLastfm, ServiceDiscogs, ServiceYouTube}

// KnownService reports whether name is a service the backend understands.
func KnownService(name string) bool {
	for _, s := range LinkableServices {
		if s == name {
			return true
		}
	}
	return false
}

// SpotifyAuthURL asks the backend for a Spotify authorization URL.
//
// The backend owns the OAuth dance end to end: it builds the URL with its own
// state token and its own callback, and the browser lands back on the local
// relay only after the backend has stored the tokens.
func (c *Client) SpotifyAuthURL(ctx context.Context) (string, error) {
	var resp AuthURLResponse
	if err := c.doRequest(ctx, http.MethodGet, "/oauth/spotify/auth", nil, &resp); err != nil {
		return "", err
	}
	if resp.AuthURL == "" {
		return "", fmt.Errorf("%w: backend returned no authorization URL", shared.ErrAPIRequest)
	}
	return resp.AuthURL, nil
}

// ServicesStatus returns the per-service connection state for the user.
func (c *Client) ServicesStatus(ctx context.Context) (*ServicesStatusResponse, error) {
	var resp ServicesStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "/oauth/services/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StoreAPIKey saves an API key for lastfm or youtube.
func (c *Client) StoreAPIKey(ctx context.Context, service, key string) (*MessageResponse, error) {
	payload := struct {
		APIKey string `json:"api_key"`
	}{key}
	return c.storeCredentials(ctx, service, payload)
}

// StoreToken saves a personal token for discogs.
func (c *Client) StoreToken(ctx context.Context, service, token string) (*MessageResponse, error) {
	payload := struct {
		Token string `json:"token"`
	}{token}
	return c.storeCredentials(ctx, service, payload)
}

func (c *Client) storeCredentials(ctx context.Context, service string, payload any) (*MessageResponse, error) {
	if !KnownService(service) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	var resp MessageResponse
	path := fmt.Sprintf("/oauth/%s/credentials", service)
	if err := c.doRequest(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveCredentials unlinks a single service.
func (c *Client) RemoveCredentials(ctx context.Context, service string) (*MessageResponse, error) {
	if !KnownService(service) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	var resp MessageResponse
	path := fmt.Sprintf("/oauth/services/%s", service)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveAllCredentials unlinks every service for the user.
func (c *Client) RemoveAllCredentials(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doRequest(ctx, http.MethodDelete, "/oauth/services/all", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestService runs the backend's connection test for one service.
func (c *Client) TestService(ctx context.Context, service string) (*TestResult, error) {
	if !KnownService(service) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	var resp TestResult
	path := fmt.Sprintf("/oauth/services/test/%s", service)
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestAllServices runs connection tests for every configured service.
func (c *Client) TestAllServices(ctx context.Context) (*TestAllResponse, error) {
	var resp TestAllResponse
	if err := c.doRequest(ctx, http.MethodPost, "/oauth/services/test/all", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ServiceGuide fetches setup instructions for one service.
func (c *Client) ServiceGuide(ctx context.Context, service string) (*ServiceHelp, error) {
	if !KnownService(service) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	var resp ServiceHelp
	path := fmt.Sprintf("/oauth/services/help/%s", service)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AvailableServices lists the services the backend can link.
func (c *Client) AvailableServices(ctx context.Context) (map[string]SetupService, error) {
	var resp struct {
		Services map[string]SetupService `json:"services"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/oauth/services/available", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}
