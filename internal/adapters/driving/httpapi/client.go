package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// Client submits jobs to a running service's HTTP intake.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the service at endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// EndpointFor turns a listen address such as ":8001" into a URL a local
// client can reach.
func EndpointFor(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Notify queues a change notification.
func (c *Client) Notify(ctx context.Context, event domain.ChangeEvent) (*Accepted, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return c.post(ctx, "/v1/notifications", body)
}

// Reindex queues a rebuild of one graph, or of every graph when graphID is
// empty.
func (c *Client) Reindex(ctx context.Context, graphID domain.GraphID) (*Accepted, error) {
	path := "/v1/reindex"
	if graphID != "" {
		path += "?graph=" + url.QueryEscape(string(graphID))
	}
	return c.post(ctx, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*Accepted, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("service at %s unreachable: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		var apiErr errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("service rejected request: %s: %s", apiErr.Error, apiErr.Reason)
		}
		return nil, fmt.Errorf("service rejected request: unexpected status %d", resp.StatusCode)
	}

	var accepted Accepted
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &accepted, nil
}
