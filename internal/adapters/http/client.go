// Package http talks to the remote access-control server.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Client implements ports.Validator and the auxiliary server queries.
// The station can be swapped at runtime when settings are reloaded.
type Client struct {
	client     ports.HTTPClient
	logger     ports.Logger
	deviceInfo func() domain.DeviceInfo

	mu      sync.RWMutex
	station ports.Station
}

// Option configures optional behavior of a Client.
type Option func(*Client)

// WithDeviceInfo attaches the result of collect to every validation request.
func WithDeviceInfo(collect func() domain.DeviceInfo) Option {
	return func(c *Client) {
		c.deviceInfo = collect
	}
}

// NewClient creates a server client for the given station.
func NewClient(client ports.HTTPClient, logger ports.Logger, station ports.Station, opts ...Option) *Client {
	c := &Client{
		client:  client,
		logger:  logger,
		station: station,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Station returns the station currently in use.
func (c *Client) Station() ports.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.station
}

// SetStation replaces the station. Requests already in flight keep the old one.
func (c *Client) SetStation(s ports.Station) {
	c.mu.Lock()
	c.station = s
	c.mu.Unlock()
	c.logger.Info("station updated",
		ports.String("base_url", s.BaseURL),
		ports.String("sector", s.Sector),
	)
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("ngrok-skip-browser-warning", "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
