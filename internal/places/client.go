// Package places resolves city names to coordinates and finds nearby points
// of interest using the Google Maps Platform web services.
package places

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/ratelimit"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"

	// Rate limit: nearby search fans out per recommendation request, keep
	// headroom under the key's QPS quota.
	defaultRPS   = 10.0
	defaultBurst = 20

	// HTTP client settings
	defaultTimeout = 15 * time.Second
)

// Client is a rate-limited Google Maps client covering geocoding and
// nearby place search.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new Maps client.
func New(apiKey string, logger *slog.Logger) *Client {
	return NewWithBaseURL(apiKey, defaultBaseURL, logger)
}

// NewWithBaseURL creates a client against a custom endpoint (for testing).
func NewWithBaseURL(apiKey, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Geocode resolves a free-form place query ("Paris", "Rome, Italy") to
// coordinates. Returns ErrLocationNotFound when the query matches nothing.
func (c *Client) Geocode(ctx context.Context, query string) (geo.Coordinate, error) {
	params := url.Values{}
	params.Set("address", query)

	body, err := c.doRequest(ctx, "/maps/api/geocode/json", params)
	if err != nil {
		return geo.Coordinate{}, wrapError("geocode", query, err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return geo.Coordinate{}, wrapError("geocode", query, fmt.Errorf("parse response: %w", err))
	}

	if err := statusError(resp.Status); err != nil {
		return geo.Coordinate{}, wrapError("geocode", query, err)
	}
	if len(resp.Results) == 0 {
		return geo.Coordinate{}, wrapError("geocode", query, ErrLocationNotFound)
	}

	loc := resp.Results[0].Geometry.Location
	return geo.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// SearchParams controls a nearby place search.
type SearchParams struct {
	Location     geo.Coordinate
	RadiusMeters int
	Keyword      string // Free-text bias, optional
	Type         string // Places type filter ("restaurant"), optional
}

// NearbySearch finds places around a coordinate. An empty result is not an
// error; quiet neighborhoods exist.
func (c *Client) NearbySearch(ctx context.Context, p SearchParams) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("location", p.Location.String())
	params.Set("radius", strconv.Itoa(p.RadiusMeters))
	if p.Keyword != "" {
		params.Set("keyword", p.Keyword)
	}
	if p.Type != "" {
		params.Set("type", p.Type)
	}

	body, err := c.doRequest(ctx, "/maps/api/place/nearbysearch/json", params)
	if err != nil {
		return nil, wrapError("nearbySearch", p.Keyword, err)
	}

	var resp nearbyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("nearbySearch", p.Keyword, fmt.Errorf("parse response: %w", err))
	}

	if resp.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if err := statusError(resp.Status); err != nil {
		return nil, wrapError("nearbySearch", p.Keyword, err)
	}

	results := make([]domain.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		place := domain.Place{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.Vicinity,
			Location: geo.Coordinate{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
			Rating: r.Rating,
			Types:  r.Types,
		}
		if r.OpeningHours != nil {
			place.OpenNow = r.OpeningHours.OpenNow
		}
		results = append(results, place)
	}

	return results, nil
}

// statusError maps a Maps API status string to a sentinel error.
// "OK" and "ZERO_RESULTS" are handled by callers; everything else fails.
func statusError(status string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return ErrLocationNotFound
	case "OVER_QUERY_LIMIT":
		return ErrRateLimited
	case "REQUEST_DENIED":
		return ErrRequestDenied
	case "INVALID_REQUEST":
		return ErrBadRequest
	default:
		return fmt.Errorf("unexpected status %q", status)
	}
}

// doRequest executes a rate-limited GET against the Maps API.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, "maps"); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	if c.logger != nil {
		c.logger.Debug("maps request",
			"path", path,
			"request_id", requestID,
		)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// Response types for the Maps web services (internal)

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Location mapsLatLng `json:"location"`
}

type mapsLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type nearbyResponse struct {
	Status  string         `json:"status"`
	Results []nearbyResult `json:"results"`
}

type nearbyResult struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Vicinity     string        `json:"vicinity"`
	Geometry     geometry      `json:"geometry"`
	Rating       float64       `json:"rating"`
	Types        []string      `json:"types"`
	OpeningHours *openingHours `json:"opening_hours"`
}

type openingHours struct {
	OpenNow *bool `json:"open_now"`
}
