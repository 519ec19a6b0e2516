package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single completion request. Formatting is an
// enhancement, so there is exactly one attempt and no retry.
const DefaultTimeout = 120 * time.Second

// Config holds configuration for creating a Client.
type Config struct {
	// Dialect selects the provider wire format. Must match a registered
	// dialect name.
	Dialect string
	// BaseURL is the provider's API base URL (e.g., "http://localhost:11434").
	BaseURL string
	// Model is the default model to use.
	Model string
	// Secret is the provider credential. Empty for providers that need none.
	Secret string
	// Temperature is the sampling temperature applied when a request does
	// not set one.
	Temperature float64
	// Timeout for the HTTP request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is a dialect-driven chat completion client.
type Client struct {
	dialect Dialect
	baseURL string
	model   string
	secret  string
	temp    float64
	client  *http.Client
}

// NewClient creates a completion client for the configured dialect.
func NewClient(cfg Config) (*Client, error) {
	dialect, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		dialect: dialect,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		secret:  cfg.Secret,
		temp:    cfg.Temperature,
		client:  client,
	}, nil
}

// Dialect returns the name of the dialect this client speaks.
func (c *Client) Dialect() string { return c.dialect.Name() }

// Model returns the default model.
func (c *Client) Model() string { return c.model }

// Complete sends one completion request and returns the full response.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.Temperature == nil {
		req.Temperature = Temp(c.temp)
	}

	payload, err := c.dialect.BuildRequest(req)
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.dialect.ChatPath(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.dialect.AuthHeaders(c.secret) {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: send request: %w", err)
	}
	defer httpResp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("llm: unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}

	resp, err := c.dialect.ParseResponse(respBody)
	if err != nil {
		return nil, fmt.Errorf("llm: parse response: %w", err)
	}
	return resp, nil
}
