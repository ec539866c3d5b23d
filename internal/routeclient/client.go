// Package routeclient calls the upstream turn-by-turn routing service and
// normalizes its response into the canonical domain.Route.
package routeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/draymaster/eld-planner/internal/domain"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
	"github.com/draymaster/eld-planner/pkg/logger"
)

const metersPerMile = 1609.34
const secondsPerHour = 3600.0

// Config holds configuration for the OSRM-shaped routing API.
type Config struct {
	BaseURL string // e.g. http://router.project-osrm.org
	Timeout time.Duration
}

// Client is the HTTP client for the upstream routing service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a new routing client.
func New(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// --- OSRM response shape ---

type osrmResponse struct {
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64   `json:"distance"` // meters
	Duration float64   `json:"duration"` // seconds
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Distance float64       `json:"distance"`
	Duration float64       `json:"duration"`
	Name     string        `json:"name"`
	Maneuver osrmManeuver  `json:"maneuver"`
}

type osrmManeuver struct {
	Location [2]float64 `json:"location"` // [lon, lat]
}

// Route fetches the driving route from -> to and normalizes it into miles
// and hours. On any failure it returns an *errors.AppError carrying one of
// errors.RouteUnreachable, errors.RouteTransport, errors.RouteMalformed.
func (c *Client) Route(ctx context.Context, from, to domain.Location) (*domain.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&steps=true&annotations=true",
		c.baseURL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.RouteError(apperrors.RouteTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.RouteError(apperrors.RouteTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.RouteError(apperrors.RouteTransport,
			fmt.Errorf("routing service returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.RouteError(apperrors.RouteTransport, err)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.RouteError(apperrors.RouteMalformed, err)
	}

	if len(parsed.Routes) == 0 {
		return nil, apperrors.RouteError(apperrors.RouteUnreachable,
			fmt.Errorf("no routes in response"))
	}

	route := parsed.Routes[0]
	steps := make([]domain.RouteStep, 0)
	for _, leg := range route.Legs {
		for _, s := range leg.Steps {
			lat, lon := s.Maneuver.Location[1], s.Maneuver.Location[0]
			steps = append(steps, domain.RouteStep{
				Start:    domain.NamedAt(lat, lon),
				End:      domain.NamedAt(lat, lon), // filled in below
				Miles:    s.Distance / metersPerMile,
				Hours:    s.Duration / secondsPerHour,
				RoadName: s.Name,
			})
		}
	}

	// Each step's End is the next step's Start; the final step's End is the
	// requested destination.
	for i := 0; i < len(steps)-1; i++ {
		steps[i].End = steps[i+1].Start
	}
	if len(steps) > 0 {
		steps[len(steps)-1].End = to
	}

	normalized := &domain.Route{
		TotalMiles: route.Distance / metersPerMile,
		TotalHours: route.Duration / secondsPerHour,
		Steps:      steps,
	}

	// If the upstream yielded a route without steps, synthesize one
	// covering the whole journey.
	if len(normalized.Steps) == 0 {
		normalized.Steps = []domain.RouteStep{{
			Start: from,
			End:   to,
			Miles: normalized.TotalMiles,
			Hours: normalized.TotalHours,
		}}
	}

	return normalized, nil
}
