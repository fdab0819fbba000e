// Package describe generates landmark descriptions and taxonomy tags using
// the Anthropic Messages API.
package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/ratelimit"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// Rate limit: descriptions are generated once per identify, so a low
	// ceiling is plenty and keeps token spend predictable.
	defaultRPS   = 2.0
	defaultBurst = 4

	// HTTP client settings. Generation can take a while.
	defaultTimeout = 60 * time.Second

	maxOutputTokens = 1024
)

// Result is a generated description with validated taxonomy tags.
type Result struct {
	Description string
	Tags        domain.TagSet
	// RejectedTags lists model-proposed tags outside the taxonomy, kept for
	// logging and prompt tuning.
	RejectedTags []string
}

// Client is a rate-limited Anthropic Messages API client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new describe client.
func New(apiKey, model string, logger *slog.Logger) *Client {
	return NewWithBaseURL(apiKey, model, defaultBaseURL, logger)
}

// NewWithBaseURL creates a client against a custom endpoint (for testing).
func NewWithBaseURL(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// DescribeLandmark asks the model for a traveler-friendly description of the
// landmark plus taxonomy tags. The photo is sent alongside the prompt so the
// description reflects what the traveler actually captured, not just the
// landmark's name. Model output is parsed defensively and tags are validated
// against the taxonomy; unknown tags are dropped, never stored.
func (c *Client) DescribeLandmark(ctx context.Context, imageData []byte, name string, location geo.Coordinate) (*Result, error) {
	text, err := c.complete(ctx, imageData, buildPrompt(name, location))
	if err != nil {
		return nil, wrapError("describeLandmark", err)
	}

	out := extractOutput(text)
	tags, rejected := domain.NormalizeTagSet(out.Tags)

	if len(rejected) > 0 && c.logger != nil {
		c.logger.Debug("model proposed tags outside taxonomy",
			"landmark", name,
			"rejected", rejected,
		)
	}

	return &Result{
		Description:  strings.TrimSpace(out.Description),
		Tags:         tags,
		RejectedTags: rejected,
	}, nil
}

// buildPrompt assembles the generation prompt, listing the allowed tag
// values per category so the model stays inside the taxonomy.
func buildPrompt(name string, location geo.Coordinate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a travel guide. Describe the landmark %q", name)
	if !location.IsZero() {
		fmt.Fprintf(&b, " (located at %s)", location.String())
	}
	b.WriteString(" in 2-3 engaging sentences for a traveler standing in front of it.\n\n")

	b.WriteString("Then classify it. For each category below, pick every value that applies, only from the listed values:\n")
	for _, cat := range domain.Categories() {
		fmt.Fprintf(&b, "- %s: %s\n", cat, strings.Join(domain.TagsFor(cat), ", "))
	}

	b.WriteString("\nRespond with only a JSON object of this shape:\n")
	b.WriteString(`{"description": "...", "tags": {"architecture": [...], "historical_era": [...], "cultural": [...], "landmark_type": [...], "vibe": [...], "experience_style": [...]}}`)

	return b.String()
}

// complete sends one user message with the photo and prompt, returning the
// concatenated text blocks of the reply.
func (c *Client) complete(ctx context.Context, imageData []byte, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx, "anthropic"); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	content := make([]requestContent, 0, 2)
	if len(imageData) > 0 {
		content = append(content, requestContent{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: http.DetectContentType(imageData),
				Data:      base64.StdEncoding.EncodeToString(imageData),
			},
		})
	}
	content = append(content, requestContent{Type: "text", Text: prompt})

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxOutputTokens,
		Messages: []message{{
			Role:    "user",
			Content: content,
		}},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	if c.logger != nil {
		c.logger.Debug("describe request", "model", c.model)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Parsed below
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	case http.StatusBadRequest:
		return "", ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return "", ErrServer
		}
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return text.String(), nil
}

// Request/response types for the Messages API (internal)

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string           `json:"role"`
	Content []requestContent `json:"content"`
}

type requestContent struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
