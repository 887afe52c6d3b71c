package bookio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookfetch/internal/logging"
	"bookfetch/internal/services"
)

const component = "bookio"

// Collection is one entry of the Book.io catalog.
type Collection struct {
	CollectionID string `json:"collection_id"`
	Description  string `json:"description"`
	Blockchain   string `json:"blockchain"`
	Network      string `json:"network"`
}

// Response models the catalog payload.
type Response struct {
	Type string       `json:"type"`
	Data []Collection `json:"data"`
}

// Cache stores the catalog between runs.
type Cache interface {
	Load(ctx context.Context, maxAge time.Duration) ([]Collection, bool, error)
	Store(ctx context.Context, collections []Collection) error
}

// Verifier reports whether a policy id is a catalogued collection.
type Verifier interface {
	Verify(ctx context.Context, policyID string) (bool, error)
}

// Client fetches the Book.io catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

var _ Verifier = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache serves the catalog from cache while it is younger than ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger attaches a logger for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, component)
	}
}

// New creates a catalog client for baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("bookio base url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(nil, component),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Collections returns the catalog, from cache when a fresh copy exists.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	if c.cache != nil && c.cacheTTL > 0 {
		cached, ok, err := c.cache.Load(ctx, c.cacheTTL)
		switch {
		case err != nil:
			logging.WarnWithContext(c.logger, "catalog cache read failed; fetching from api", "catalog_cache_read_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "catalog fetched from network"),
			)
		case ok:
			c.logger.Debug("catalog served from cache", logging.Int("collections", len(cached)))
			return cached, nil
		}
	}
	return c.Refresh(ctx)
}

// Refresh fetches the catalog from the API and updates the cache.
func (c *Client) Refresh(ctx context.Context) ([]Collection, error) {
	collections, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Store(ctx, collections); err != nil {
			logging.WarnWithContext(c.logger, "catalog cache write failed", "catalog_cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run fetches the catalog again"),
			)
		}
	}
	return collections, nil
}

// Verify reports whether policyID is listed in the catalog.
func (c *Client) Verify(ctx context.Context, policyID string) (bool, error) {
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return false, services.Wrap(services.ErrValidation, component, "verify", "policy id must not be empty", nil)
	}
	collections, err := c.Collections(ctx)
	if err != nil {
		return false, err
	}
	for _, collection := range collections {
		if collection.CollectionID == policyID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) fetch(ctx context.Context) ([]Collection, error) {
	endpoint := c.baseURL + "/collections"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "collections",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternal, component, "collections",
			fmt.Sprintf("catalog returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrExternal, component, "collections", "decode catalog response", err)
	}
	c.logger.Debug("catalog fetched",
		logging.Int("collections", len(payload.Data)),
		logging.Duration("latency", latency),
	)
	return payload.Data, nil
}
