package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mixview/mixview/internal/shared"
)

// Search queries all connected services through the backend.
//
// searchType is one of "artist", "album" or "track"; limit caps the result
// count per service.
func (c *Client) Search(ctx context.Context, query, searchType string, limit int) (*SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", query)
	if searchType != "" {
		params.Set("search_type", searchType)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp SearchResponse
	path := "/search/?" + params.Encode()
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Related fetches cross-service related artists, albums and tracks for the
// given seed. At least one of the seed fields must be set.
func (c *Client) Related(ctx context.Context, q RelatedQuery) (*RelatedResponse, error) {
	if q.ArtistName == "" && q.AlbumTitle == "" && q.TrackTitle == "" {
		return nil, fmt.Errorf("%w: related query needs an artist, album or track", shared.ErrInvalidInput)
	}

	params := url.Values{}
	if q.ArtistName != "" {
		params.Set("artist_name", q.ArtistName)
	}
	if q.AlbumTitle != "" {
		params.Set("album_title", q.AlbumTitle)
	}
	if q.TrackTitle != "" {
		params.Set("track_title", q.TrackTitle)
	}
	if q.TopN > 0 {
		params.Set("top_n", strconv.Itoa(q.TopN))
	}

	var resp RelatedResponse
	path := "/aggregator/related?" + params.Encode()
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Combined fetches the merged node set for graph building. The backend
// ignores TopN here and returns everything it aggregated for the seed.
func (c *Client) Combined(ctx context.Context, q RelatedQuery) (*CombinedResponse, error) {
	if q.ArtistName == "" && q.AlbumTitle == "" && q.TrackTitle == "" {
		return nil, fmt.Errorf("%w: combined query needs an artist, album or track", shared.ErrInvalidInput)
	}

	params := url.Values{}
	if q.ArtistName != "" {
		params.Set("artist_name", q.ArtistName)
	}
	if q.AlbumTitle != "" {
		params.Set("album_title", q.AlbumTitle)
	}
	if q.TrackTitle != "" {
		params.Set("track_title", q.TrackTitle)
	}

	var resp CombinedResponse
	path := "/aggregator/combined?" + params.Encode()
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns aggregator cache statistics.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/aggregator/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh recomputes stored relationships for one entity.
//
// entityType must be "artist", "album" or "track".
func (c *Client) Refresh(ctx context.Context, entityType string, id int) (*RefreshResponse, error) {
	switch entityType {
	case "artist", "album", "track":
	default:
		return nil, fmt.Errorf("%w: entity type %q", shared.ErrInvalidArgument, entityType)
	}

	var resp RefreshResponse
	path := fmt.Sprintf("/aggregator/refresh/%s/%d", entityType, id)
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
