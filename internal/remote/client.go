// Package remote implements the optional remote enhancement call: a rewritten
// suggestion request against a configured endpoint, rate-limited and circuit
// broken. The call never blocks the local pipeline; a failed or malformed
// response silently yields nothing and the caller keeps the local result.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwgray1010/unsaid/pkg/types"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("remote enhancement disabled")

// ErrRateLimited is returned when the per-client rate limit rejects a call.
var ErrRateLimited = errors.New("remote enhancement rate limited")

// Config holds the remote enhancement configuration.
type Config struct {
	// Endpoint is the enhancement URL; empty disables the client.
	Endpoint string

	// APIKey is sent as a bearer token when present.
	APIKey string

	// Timeout bounds each call. Default: 3 seconds; the extension environment
	// cannot afford longer.
	Timeout time.Duration

	// RequestsPerMinute caps outbound calls. Default: 30.
	RequestsPerMinute int
}

// Client issues enhancement requests.
type Client struct {
	cfg     Config
	client  *http.Client
	breaker *CircuitBreaker
	limiter *rate.Limiter
}

// NewClient creates a remote enhancement client with defaulted configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 30
	}
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: NewCircuitBreaker(),
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute/6+1),
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.cfg.Endpoint != ""
}

// Request carries the context the remote model needs.
type Request struct {
	Text                string                      `json:"text"`
	AttachmentStyle     types.AttachmentStyle       `json:"attachment_style"`
	PartnerStyle        types.AttachmentStyle       `json:"partner_attachment_style,omitempty"`
	RelationshipContext string                      `json:"relationship_context,omitempty"`
	ToneStatus          types.Tone                  `json:"tone_status"`
	History             []types.ConversationMessage `json:"conversation_history,omitempty"`
	PersonalityContext  string                      `json:"personality_context,omitempty"`
}

// Suggestion is one structured enhancement item.
type Suggestion struct {
	Text            string `json:"text"`
	Reasoning       string `json:"reasoning,omitempty"`
	ExpectedOutcome string `json:"expectedOutcome,omitempty"`
	Priority        string `json:"priority,omitempty"`
}

// Enhance posts the request and parses the response defensively. Any failure
// (disabled, rate limit, open circuit, transport, malformed body) comes back
// as an error the caller logs and ignores; the local result always stands.
func (c *Client) Enhance(ctx context.Context, req Request) ([]Suggestion, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		return c.enhance(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Suggestion), nil
}

func (c *Client) enhance(ctx context.Context, req Request) ([]Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	suggestions, err := ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return suggestions, nil
}
