// Package geocode resolves a coordinate pair to a best-effort place name
// through a primary provider with a fallback when the primary is
// unreachable. It is a collaborator to the core, never called by the
// simulator itself.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/draymaster/eld-planner/pkg/logger"
)

// Config holds the primary and fallback reverse-geocoding endpoints.
type Config struct {
	BaseURL         string // e.g. https://geocode.maps.co
	APIKey          string
	FallbackBaseURL string // e.g. https://nominatim.openstreetmap.org
	Timeout         time.Duration
}

// Client resolves coordinates to place names.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a reverse-geocoding client.
func New(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}, log: log}
}

// Result is the resolved place name plus the raw address components the
// provider returned, for callers that want more than the headline name.
type Result struct {
	Name      string                 `json:"name"`
	Lat       float64                `json:"lat"`
	Lon       float64                `json:"lon"`
	Address   map[string]interface{} `json:"address,omitempty"`
	Provider  string                 `json:"provider"`
}

type nominatimResponse struct {
	Address map[string]interface{} `json:"address"`
}

// ReverseGeocode resolves lat/lon to a Result, trying the primary provider
// first and falling back to the secondary on any failure.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Result, error) {
	result, err := c.query(ctx, fmt.Sprintf("%s/reverse?lat=%f&lon=%f&api_key=%s", c.cfg.BaseURL, lat, lon, c.cfg.APIKey), "maps.co")
	if err != nil {
		c.log.Warnw("primary geocode provider failed, falling back", "error", err)

		result, err = c.query(ctx, fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f&zoom=18&addressdetails=1", c.cfg.FallbackBaseURL, lat, lon), "nominatim")
		if err != nil {
			return nil, err
		}
	}
	result.Lat, result.Lon = lat, lon
	if result.Name == "" {
		result.Name = fmt.Sprintf("Location at %.4f, %.4f", lat, lon)
	}
	return result, nil
}

func (c *Client) query(ctx context.Context, url, provider string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s reverse geocode returned status %d", provider, resp.StatusCode)
	}

	var parsed nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s reverse geocode response malformed: %w", provider, err)
	}

	return &Result{
		Name:     bestAddressName(parsed.Address),
		Address:  parsed.Address,
		Provider: provider,
	}, nil
}

// bestAddressName mirrors the original preference order: city, village,
// town, hamlet, suburb, neighbourhood, county, else empty (the caller
// synthesizes "Location at {lat}, {lon}" when this is empty).
func bestAddressName(address map[string]interface{}) string {
	for _, key := range []string{"city", "village", "town", "hamlet", "suburb", "neighbourhood", "county"} {
		if v, ok := address[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
