package http

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/nuhsistemas/scankiosk/internal/ports"
)

const sectorEndpoint = "/get_area_acesso_pin"

// LookupSector resolves the access area configured for a station PIN.
// It uses the given station rather than the current one because it runs
// before the settings are saved.
func (c *Client) LookupSector(ctx context.Context, station ports.Station) (string, error) {
	q := url.Values{}
	q.Set("pin", station.PIN)

	body, err := c.get(ctx, station.BaseURL+sectorEndpoint+"?"+q.Encode())
	if err != nil {
		return "", err
	}

	raw := strings.TrimSpace(string(body))
	var sector string
	if err := json.Unmarshal([]byte(raw), &sector); err == nil {
		return sector, nil
	}
	// plain text body
	return raw, nil
}
