package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amaumene/cinesync/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	defaultLanguage = "en-US"
	maxErrorBody    = 4 * 1024
)

// Credentials identify the service to TMDB. They are passed per call so the
// caller decides where they come from.
type Credentials struct {
	BaseURL     string
	AccessToken string
	APIKey      string
}

// Client handles communication with the TMDB API
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.TMDBFetchTimeout},
		logger:     logger,
	}
}

// APIError is a non-2xx answer from TMDB
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API request failed with status %d: %s", e.StatusCode, e.Body)
}

// doRequest performs an authenticated GET against the TMDB API
func (c *Client) doRequest(ctx context.Context, creds Credentials, path string, params url.Values, result interface{}) error {
	endpoint, err := url.Parse(strings.TrimRight(creds.BaseURL, "/") + path)
	if err != nil {
		return fmt.Errorf("invalid TMDB base URL: %w", err)
	}

	query := endpoint.Query()
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	query.Set("api_key", creds.APIKey)
	endpoint.RawQuery = query.Encode()

	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"params": params.Encode(),
	}).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"path":        path,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("TMDB API request completed")

	return nil
}
