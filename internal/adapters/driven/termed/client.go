package termed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is kept in APIError.
	maxErrorBody = 512

	userAgent = "termsync"
)

// Client performs authenticated, rate-limited GETs against the graph API.
type Client struct {
	baseURL     string
	username    string
	password    string
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a client from source settings.
// A token or client credentials select bearer auth, otherwise a username
// selects basic auth.
func NewClient(cfg domain.SourceSettings) (*Client, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: source url %q", domain.ErrInvalidInput, cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		http:        newHTTPClient(cfg, timeout),
		rateLimiter: NewRateLimiter(cfg.RateLimit),
	}
	if cfg.Token == "" && !cfg.HasClientCredentials() && cfg.HasBasicAuth() {
		c.username = cfg.Username
		c.password = cfg.Password
	}
	return c, nil
}

// BaseURL returns the API base without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON requests path with the given query and decodes the body into out.
//
// I/O failures are wrapped in domain.ErrSourceUnavailable. Non-2xx responses
// return *APIError and undecodable bodies ErrMalformedResponse.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	logger.Debug("GET %s", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", domain.ErrSourceUnavailable, path, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, URL: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, path, err)
	}
	return nil
}
