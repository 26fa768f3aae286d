package imagesrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/browser"
)

// DefaultURL serves a new random 200x200 image on every request.
const DefaultURL = "https://picsum.photos/200/200"

// Config drives image source behaviour.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client asks a random-image endpoint for a new picture and records where it landed.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient constructs a Client with defaults applied.
func NewClient(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		endpoint = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        endpoint,
	}
}

// Next requests a fresh image and returns its final URL after redirects.
func (c *Client) Next(ctx context.Context) (browser.Image, error) {
	if c == nil {
		return browser.Image{}, errors.New("image client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return browser.Image{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return browser.Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return browser.Image{}, fmt.Errorf("image source status %d", resp.StatusCode)
	}
	size, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return browser.Image{}, fmt.Errorf("read image: %w", err)
	}

	finalURL := c.url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return browser.Image{
		URL:         finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        size,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
