// Package itunes provides a client for the iTunes Search API and compatible proxies.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
)

const (
	defaultBaseURL = "https://itunes.apple.com/search"
	maxLimit       = 200
)

// Client is an iTunes Search API client.
type Client struct {
	baseURL    string
	queryParam string
	limit      int
	country    string
	media      string
	entity     string
	httpClient *http.Client
}

// Config represents iTunes client configuration.
// Zero values fall back to the public API defaults.
type Config struct {
	BaseURL    string
	QueryParam string
	Limit      int
	Country    string
	Media      string
	Entity     string
	Timeout    time.Duration
}

// SearchResponse represents the response from the search endpoint.
type SearchResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []track.Track `json:"results"`
}

// APIError represents an error response from the API.
type APIError struct {
	ErrorMessage string `json:"errorMessage"`
}

// New creates a new iTunes client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid base url: %s", cfg.BaseURL)
	}
	if cfg.QueryParam == "" {
		cfg.QueryParam = "term"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 20
	}
	if cfg.Limit > maxLimit {
		cfg.Limit = maxLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		queryParam: cfg.QueryParam,
		limit:      cfg.Limit,
		country:    cfg.Country,
		media:      cfg.Media,
		entity:     cfg.Entity,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Search runs a free-text track search.
// Reference: https://performance-partners.apple.com/search-api
func (c *Client) Search(ctx context.Context, term string) ([]track.Track, error) {
	if term == "" {
		return nil, errors.New("search term is required")
	}

	params := url.Values{}
	params.Set(c.queryParam, term)
	params.Set("limit", fmt.Sprintf("%d", c.limit))
	if c.media != "" {
		params.Set("media", c.media)
	}
	if c.entity != "" {
		params.Set("entity", c.entity)
	}
	if c.country != "" {
		params.Set("country", c.country)
	}

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		var apiError APIError
		if err := json.Unmarshal(body, &apiError); err == nil && apiError.ErrorMessage != "" {
			return nil, errors.Newf("itunes API error %d: %s", resp.StatusCode, apiError.ErrorMessage)
		}
		return nil, errors.Newf("itunes API error %d", resp.StatusCode)
	}

	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	tracks := make([]track.Track, 0, len(response.Results))
	for _, t := range response.Results {
		if t.ID == 0 {
			continue
		}
		tracks = append(tracks, t)
	}

	zlog.Debug().Msgf("itunes: search completed: term=%q results=%d", term, len(tracks))
	return tracks, nil
}
