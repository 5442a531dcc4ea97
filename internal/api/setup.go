package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mixview/mixview/internal/shared"
)

// SetupStatus returns the authenticated aggregate setup state.
func (c *Client) SetupStatus(ctx context.Context) (*SetupStatusResponse, error) {
	var resp SetupStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "/setup/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetupStatusPublic returns the unauthenticated setup summary.
func (c *Client) SetupStatusPublic(ctx context.Context) (*PublicSetupStatus, error) {
	var resp PublicSetupStatus
	if err := c.doRequest(ctx, http.MethodGet, "/setup/status/public", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetupConfiguration returns the service catalog and the wizard step flow.
func (c *Client) SetupConfiguration(ctx context.Context) (*SetupConfigurationResponse, error) {
	var resp SetupConfigurationResponse
	if err := c.doRequest(ctx, http.MethodGet, "/setup/configuration", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetupProgress returns how far the user is through setup.
func (c *Client) SetupProgress(ctx context.Context) (*SetupProgressResponse, error) {
	var resp SetupProgressResponse
	if err := c.doRequest(ctx, http.MethodGet, "/setup/progress", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteSetup marks setup finished with the given configured services.
func (c *Client) CompleteSetup(ctx context.Context, services []string) (*CompleteSetupResponse, error) {
	payload := struct {
		ServicesConfigured []string `json:"services_configured"`
	}{services}

	var resp CompleteSetupResponse
	if err := c.doRequest(ctx, http.MethodPost, "/setup/complete", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetSetup clears the user's setup progress.
func (c *Client) ResetSetup(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/setup/reset", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ServerConfig reports which server-wide keys exist for a service.
func (c *Client) ServerConfig(ctx context.Context, service string) (*ServerConfigResponse, error) {
	var resp ServerConfigResponse
	path := fmt.Sprintf("/setup/server-config/%s", service)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StoreServerConfig saves server-wide credentials for a service.
//
// Spotify requires client_id and client_secret; the backend rejects anything
// incomplete.
func (c *Client) StoreServerConfig(ctx context.Context, service string, credentials map[string]string) (*MessageResponse, error) {
	if len(credentials) == 0 {
		return nil, fmt.Errorf("%w: no credentials provided", shared.ErrMissingCredentials)
	}

	payload := struct {
		ServiceName string            `json:"service_name"`
		Credentials map[string]string `json:"credentials"`
	}{service, credentials}

	var resp MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/setup/server-config", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteServerConfig removes server-wide credentials for a service.
func (c *Client) DeleteServerConfig(ctx context.Context, service string) (*MessageResponse, error) {
	var resp MessageResponse
	path := fmt.Sprintf("/setup/server-config/%s", service)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
