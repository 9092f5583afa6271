// Package apiclient reads the movie store through its per-filter HTTP endpoints.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moviechat/internal/config"
	"moviechat/internal/model"
)

// Client is a movie store backed by GET {base}/{dimension}/{value}
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a store client from the store configuration
func NewClient(cfg config.StoreConfig) *Client {
	return NewClientWithHTTP(cfg.APIBase, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP creates a store client using httpClient
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error) {
	return c.get(ctx, "title", url.PathEscape(strings.TrimSpace(title)))
}

func (c *Client) FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error) {
	return c.get(ctx, "year", strconv.Itoa(year))
}

func (c *Client) FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error) {
	return c.get(ctx, "genre", url.PathEscape(strings.TrimSpace(genre)))
}

func (c *Client) FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error) {
	return c.get(ctx, "rating", model.FormatRating(rating))
}

func (c *Client) get(ctx context.Context, dimension, value string) ([]model.MovieRecord, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, dimension, value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	movies, err := normalize(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("%s lookup: %w", dimension, err)
	}
	return movies, nil
}

// normalize maps the endpoint's possible payloads onto a record list:
// a bare array, an object wrapping the array under "data", or a 404
// carrying {message} which means no matches.
func normalize(status int, body []byte) ([]model.MovieRecord, error) {
	if status == http.StatusNotFound {
		return []model.MovieRecord{}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", status, strings.TrimSpace(string(body)))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []model.MovieRecord{}, nil
	}

	switch trimmed[0] {
	case '[':
		var movies []model.MovieRecord
		if err := json.Unmarshal(trimmed, &movies); err != nil {
			return nil, fmt.Errorf("failed to decode movies: %w", err)
		}
		return nonNil(movies), nil

	case '{':
		var wrapped struct {
			Data    *[]model.MovieRecord `json:"data"`
			Message string               `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode movies: %w", err)
		}
		if wrapped.Data == nil {
			// {message} with 200 is the store saying nothing matched
			return []model.MovieRecord{}, nil
		}
		return nonNil(*wrapped.Data), nil
	}

	return nil, fmt.Errorf("unexpected response payload: %.64s", string(trimmed))
}

func nonNil(movies []model.MovieRecord) []model.MovieRecord {
	if movies == nil {
		return []model.MovieRecord{}
	}
	return movies
}
