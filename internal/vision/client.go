// Package vision identifies landmarks in photos using the Google Cloud
// Vision API.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/ratelimit"
)

const (
	defaultBaseURL = "https://vision.googleapis.com/v1"

	// Rate limit: Vision quota is generous but identify is user-triggered,
	// so a modest ceiling keeps one hot client from burning the key's quota.
	defaultRPS   = 5.0
	defaultBurst = 10

	// HTTP client settings
	defaultTimeout = 30 * time.Second
)

// Landmark is a single detection result.
type Landmark struct {
	Name       string
	Location   geo.Coordinate
	Confidence float64
}

// Client is a rate-limited Google Vision API client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new Vision client.
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

// DetectLandmark runs landmark detection on the image and returns the top
// result. Returns ErrNoLandmark when the API finds nothing recognizable.
// When the API knows the landmark but not its coordinates, Location is the
// zero coordinate and the caller decides how to fill it in.
func (c *Client) DetectLandmark(ctx context.Context, imageData []byte) (*Landmark, error) {
	if len(imageData) == 0 {
		return nil, wrapError("detectLandmark", ErrEmptyImage)
	}

	reqBody := annotateRequest{
		Requests: []annotateImageRequest{{
			Image: annotateImage{
				Content: base64.StdEncoding.EncodeToString(imageData),
			},
			Features: []annotateFeature{{
				Type:       "LANDMARK_DETECTION",
				MaxResults: 1,
			}},
		}},
	}

	body, err := c.doRequest(ctx, "/images:annotate", reqBody)
	if err != nil {
		return nil, wrapError("detectLandmark", err)
	}

	var resp annotateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("detectLandmark", fmt.Errorf("parse response: %w", err))
	}

	if len(resp.Responses) == 0 {
		return nil, wrapError("detectLandmark", ErrNoLandmark)
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return nil, wrapError("detectLandmark", fmt.Errorf("API error %d: %s", r.Error.Code, r.Error.Message))
	}
	if len(r.LandmarkAnnotations) == 0 {
		return nil, wrapError("detectLandmark", ErrNoLandmark)
	}

	ann := r.LandmarkAnnotations[0]
	landmark := &Landmark{
		Name:       ann.Description,
		Confidence: ann.Score,
	}
	// Coordinates may be absent; the zero coordinate marks unknown location.
	if len(ann.Locations) > 0 && ann.Locations[0].LatLng != nil {
		landmark.Location = geo.Coordinate{
			Lat: ann.Locations[0].LatLng.Latitude,
			Lng: ann.Locations[0].LatLng.Longitude,
		}
	}

	return landmark, nil
}

// doRequest executes a rate-limited POST against the Vision API.
func (c *Client) doRequest(ctx context.Context, path string, payload any) ([]byte, error) {
	// Wait for rate limit
	if err := c.limiter.Wait(ctx, "vision"); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + path + "?key=" + c.apiKey

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	if c.logger != nil {
		c.logger.Debug("vision request",
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

// Request/response types for images:annotate (internal)

type annotateRequest struct {
	Requests []annotateImageRequest `json:"requests"`
}

type annotateImageRequest struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []annotateImageResponse `json:"responses"`
}

type annotateImageResponse struct {
	LandmarkAnnotations []landmarkAnnotation `json:"landmarkAnnotations"`
	Error               *annotateError       `json:"error"`
}

type landmarkAnnotation struct {
	Description string             `json:"description"`
	Score       float64            `json:"score"`
	Locations   []annotateLocation `json:"locations"`
}

type annotateLocation struct {
	LatLng *latLng `json:"latLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type annotateError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
