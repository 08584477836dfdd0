package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client fetches content bundles from the content API served by cmd/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	ttl        time.Duration

	mu        sync.RWMutex
	cached    *Static
	fetchedAt time.Time
}

// NewClient returns a client for baseURL. Fetched catalogs are reused for ttl.
func NewClient(baseURL string, ttl time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 8 * time.Second},
		ttl:        ttl,
	}
}

func (c *Client) apiGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: api status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Catalog returns the cached catalog or fetches a fresh bundle.
func (c *Client) Catalog(ctx context.Context) (*Static, error) {
	c.mu.RLock()
	if c.cached != nil && time.Since(c.fetchedAt) < c.ttl {
		cat := c.cached
		c.mu.RUnlock()
		return cat, nil
	}
	c.mu.RUnlock()

	var t Tables
	if err := c.apiGet(ctx, "/api/content", &t); err != nil {
		return nil, err
	}
	cat, err := NewStatic(t)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cached = cat
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return cat, nil
}
