// Package llm provides the model gateway: a provider-agnostic client for
// the external text-generation service, with credential fail-fast,
// transient/fatal error classification and a single retry.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize limits the model response body to prevent memory
// exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines a completion request.
type Request struct {
	// Messages is the chat history to send to the model.
	Messages []Message

	// Temperature controls randomness. nil uses the endpoint setting.
	Temperature *float64

	// MaxTokens limits response length. 0 uses the endpoint setting.
	MaxTokens int
}

// TokenUsage represents token consumption for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the completion result.
type Response struct {
	// RequestID uniquely identifies this call.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the actual model that was used.
	Model string

	// Usage contains token consumption metrics.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// EndpointConfig identifies the single configured model endpoint.
type EndpointConfig struct {
	// Provider names a registered provider ("openai", "anthropic",
	// "ollama").
	Provider string

	// Model is the model identifier passed to the provider.
	Model string

	// URL overrides the provider's default base URL when non-empty.
	URL string

	// Temperature is the default sampling temperature. nil uses the
	// provider default.
	Temperature *float64

	// MaxTokens is the default response length cap. 0 uses the provider
	// default.
	MaxTokens int
}

// Recorder receives one record per gateway invocation, success or
// failure. The usage ledger implements it.
type Recorder interface {
	RecordCall(endpoint, model string, usage TokenUsage, latency time.Duration, callErr error)
}

// Client is the model gateway.
type Client struct {
	mu       sync.RWMutex
	endpoint EndpointConfig

	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger
	recorder    Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithRecorder sets the per-call usage recorder.
func WithRecorder(r Recorder) ClientOption {
	return func(client *Client) {
		client.recorder = r
	}
}

// NewClient creates a gateway client for the given endpoint.
func NewClient(endpoint EndpointConfig, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Allow time for model responses
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Endpoint returns the current endpoint configuration.
func (c *Client) Endpoint() EndpointConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// SetEndpoint swaps the endpoint configuration. Used by config reload;
// in-flight calls keep the endpoint they started with.
func (c *Client) SetEndpoint(endpoint EndpointConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = endpoint
}

// CheckCredentials verifies the configured provider's credential is
// present without performing a call. Returns *ConfigError when absent.
func (c *Client) CheckCredentials() error {
	ep := c.Endpoint()
	provider := GetProvider(ep.Provider)
	if provider == nil {
		return &ConfigError{Detail: fmt.Sprintf("unknown provider: %s", ep.Provider)}
	}
	if env := provider.RequiredEnv(); env != "" && os.Getenv(env) == "" {
		return &ConfigError{Env: env}
	}
	return nil
}

// Complete sends one completion request. The credential is checked before
// any network activity; transient failures are retried once with backoff.
// Start and completion are recorded for every attempted invocation,
// success or failure.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, NewFatalError(fmt.Errorf("at least one message is required"))
	}

	// Fail fast on missing configuration: no call, no ledger record.
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	ep := c.Endpoint()
	requestID := uuid.New().String()
	startedAt := time.Now()

	resp, err := c.completeWithRetry(ctx, ep, req)
	latency := time.Since(startedAt)

	if c.recorder != nil {
		var usage TokenUsage
		model := ep.Model
		if resp != nil {
			usage = resp.Usage
			if resp.Model != "" {
				model = resp.Model
			}
		}
		c.recorder.RecordCall(ep.Provider, model, usage, latency, err)
	}

	if err != nil {
		return nil, err
	}

	resp.RequestID = requestID
	return resp, nil
}

func (c *Client) completeWithRetry(ctx context.Context, ep EndpointConfig, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, ep, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Fatal errors are configuration or request problems; retrying
		// the identical prompt cannot help.
		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("Model request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, NewTransientError(ctx.Err())
			case <-time.After(backoff):
				// Continue to retry
			}
		}
	}

	return nil, lastErr
}

// calculateBackoff computes exponential backoff duration with jitter.
// Jitter prevents thundering herd when multiple clients retry
// simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	// Add jitter: +/- 25% to prevent synchronized retries
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// doRequest executes a single HTTP request to the model endpoint.
func (c *Client) doRequest(ctx context.Context, ep EndpointConfig, req Request) (*Response, error) {
	provider := GetProvider(ep.Provider)
	if provider == nil {
		return nil, &ConfigError{Detail: fmt.Sprintf("unknown provider: %s", ep.Provider)}
	}

	url := provider.BuildURL(ep.URL)

	temperature := req.Temperature
	if temperature == nil {
		temperature = ep.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = ep.MaxTokens
	}

	body, err := provider.BuildRequestBody(ep.Model, req.Messages, temperature, maxTokens)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending model request",
		"provider", ep.Provider,
		"model", ep.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors and timeouts are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return provider.ParseResponse(respBody, ep.Model)
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("model API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		// Rate limiting is transient
		return NewTransientError(err)
	case statusCode >= 500:
		// Server errors are transient
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		// Auth errors are fatal
		return NewFatalError(err)
	case statusCode == http.StatusBadRequest:
		// Bad requests are fatal
		return NewFatalError(err)
	default:
		// Unknown errors default to fatal
		return NewFatalError(err)
	}
}
