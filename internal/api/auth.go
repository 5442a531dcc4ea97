package api

import (
	"context"
	"fmt"
	"net/http"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	var user User
	err := c.doRequest(ctx, http.MethodPost, "/auth/register", credentialsRequest{username, password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a session token and attaches it to the client.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var token TokenResponse
	err := c.doRequest(ctx, http.MethodPost, "/auth/login", credentialsRequest{username, password}, &token)
	if err != nil {
		return nil, err
	}

	c.SetToken(token.AccessToken)
	return &token, nil
}

// Me returns the account behind the current session token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Filters lists the user's result filters.
func (c *Client) Filters(ctx context.Context) ([]Filter, error) {
	var filters []Filter
	if err := c.doRequest(ctx, http.MethodGet, "/auth/filters", nil, &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

// AddFilter creates a result filter of the given type and value.
func (c *Client) AddFilter(ctx context.Context, filterType, value string) (*Filter, error) {
	payload := struct {
		FilterType string `json:"filter_type"`
		Value      string `json:"value"`
	}{filterType, value}

	var filter Filter
	if err := c.doRequest(ctx, http.MethodPost, "/auth/filters", payload, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

// DeleteFilter removes a result filter by id.
func (c *Client) DeleteFilter(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/auth/filters/%d", id), nil, nil)
}
