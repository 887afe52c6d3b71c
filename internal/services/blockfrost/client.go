package blockfrost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bookfetch/internal/asset"
	"bookfetch/internal/services"
)

const (
	component       = "blockfrost"
	maxPageSize     = 100
	defaultPageSize = 20
)

// PolicyAsset is one entry of the policy asset listing.
type PolicyAsset struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

// APIError is the error document Blockfrost returns with non-200 responses.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Client talks to one Blockfrost network endpoint.
type Client struct {
	projectID  string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

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

// WithPageSize sets the count parameter used when listing assets.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 && size <= maxPageSize {
			c.pageSize = size
		}
	}
}

// WithRateLimit installs a token bucket of perSecond requests with burst.
// A perSecond of zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		limit := rate.Limit(perSecond)
		if perSecond <= 0 {
			limit = rate.Inf
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// New creates a Blockfrost client.
func New(projectID, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "project id required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "base url required", nil)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		projectID:  projectID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListAssets returns every asset id minted under policyID in listing order.
// Pages are requested until one comes back shorter than the page size.
func (c *Client) ListAssets(ctx context.Context, policyID string) ([]asset.ID, error) {
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return nil, services.Wrap(services.ErrValidation, component, "list assets", "policy id must not be empty", nil)
	}

	var ids []asset.ID
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("count", strconv.Itoa(c.pageSize))
		params.Set("order", "asc")

		var entries []PolicyAsset
		path := "/assets/policy/" + url.PathEscape(policyID) + "?" + params.Encode()
		if err := c.get(ctx, "list assets", path, &entries); err != nil {
			if errors.Is(err, services.ErrNotFound) && page == 1 {
				return nil, nil
			}
			return nil, err
		}
		for _, entry := range entries {
			if id := strings.TrimSpace(entry.Asset); id != "" {
				ids = append(ids, id)
			}
		}
		if len(entries) < c.pageSize {
			return ids, nil
		}
	}
}

// FetchMetadata returns the metadata document for one asset.
func (c *Client) FetchMetadata(ctx context.Context, id asset.ID) (asset.Metadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return asset.Metadata{}, services.Wrap(services.ErrValidation, component, "fetch metadata", "asset id must not be empty", nil)
	}
	var meta asset.Metadata
	if err := c.get(ctx, "fetch metadata", "/assets/"+url.PathEscape(id), &meta); err != nil {
		return asset.Metadata{}, err
	}
	if meta.Asset == "" {
		meta.Asset = id
	}
	return meta, nil
}

func (c *Client) get(ctx context.Context, operation, path string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", component, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("project_id", c.projectID)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %s: %w", component, operation, ctxErr)
		}
		return services.Wrap(services.ErrTransient, component, operation,
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(operation, resp, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return services.Wrap(services.ErrExternal, component, operation, "decode response", err)
	}
	return nil
}

func statusError(operation string, resp *http.Response, latency time.Duration) error {
	var apiErr APIError
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(body, &apiErr)

	message := fmt.Sprintf("blockfrost returned %d (latency=%v)", resp.StatusCode, latency)
	if detail := strings.TrimSpace(apiErr.Message); detail != "" {
		message += ": " + detail
	}

	marker := services.ErrTransient
	switch resp.StatusCode {
	case http.StatusNotFound:
		marker = services.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		marker = services.ErrConfiguration
	}
	return services.Wrap(marker, component, operation, message, nil)
}
