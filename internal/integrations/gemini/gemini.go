// Package gemini is a text-completion client for the Google Gemini REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/budgetwise/forecast-service/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	// ErrServiceUnavailable wraps every failure to obtain a completion
	ErrServiceUnavailable = errors.New("gemini: service unavailable")
	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = fmt.Errorf("%w: api key not configured", ErrServiceUnavailable)
)

// apiKeyHeader carries the key so it never shows up in URLs or transport errors
const apiKeyHeader = "x-goog-api-key"

// APIError is a non-200 answer from the API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: unexpected status code %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return ErrServiceUnavailable }

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RetryConfig configures retry behavior with exponential backoff
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig is tuned for transient Gemini errors
var DefaultRetryConfig = RetryConfig{
	MaxRetries:    2,
	InitialDelay:  time.Second,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2.0,
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// Client handles integration with the Gemini generateContent endpoint
type Client struct {
	baseURL string
	model   string
	apiKey  string
	retry   RetryConfig
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new Gemini client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.GeminiBaseURL,
		model:   cfg.GeminiModel,
		apiKey:  cfg.GeminiAPIKey,
		retry:   DefaultRetryConfig,
		client: &http.Client{
			Timeout: cfg.GeminiTimeout,
		},
		log: log,
	}
}

// WithRetry returns a copy of the client using rc
func (c *Client) WithRetry(rc RetryConfig) *Client {
	cp := *c
	cp.retry = rc
	return &cp
}

// Complete sends prompt and returns the text of the first candidate. An
// answer without candidates yields an empty string and no error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			c.log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).
				Warnf("Retrying Gemini request: %v", lastErr)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		text, err := c.send(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.retry.InitialDelay) * math.Pow(c.retry.BackoffFactor, float64(attempt))
	if delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	return time.Duration(delay)
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

// send performs one generateContent round trip
func (c *Client) send(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrServiceUnavailable, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		c.log.Debugf("Gemini response had no candidates: %s", string(body))
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
