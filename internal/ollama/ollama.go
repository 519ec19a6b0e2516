// Package ollama manages models on a local Ollama inference service: health
// probing, listing, availability checks backed by a short TTL cache, and
// streamed pulls with progress forwarding.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
)

const (
	defaultBaseURL = "http://localhost:11434"

	// availabilityTTL bounds how often a model availability probe may hit
	// the network.
	availabilityTTL = 30 * time.Second
)

// ProgressSink receives incremental download progress. Completed and Total
// are byte counts; Total may be zero while the service negotiates layers.
type ProgressSink interface {
	Progress(status string, completed, total int64)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(status string, completed, total int64)

// Progress implements ProgressSink.
func (f ProgressFunc) Progress(status string, completed, total int64) {
	f(status, completed, total)
}

// Client manages models on an Ollama service.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger

	mu    sync.Mutex
	cache map[string]availabilityEntry
	now   func() time.Time
}

type availabilityEntry struct {
	available bool
	checkedAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithClock overrides the time source, for cache expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a model-management client. An empty baseURL falls back
// to the default local endpoint.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger.WithComponent("ollama"),
		cache:   make(map[string]availabilityEntry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IsAvailable reports whether the Ollama service is reachable. Callers use
// this to short-circuit with a clear "service not running" error instead of
// a generic network failure.
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListLocal returns the names of locally installed models.
func (c *Client) ListLocal(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.CollaboratorUnavailable("Ollama service", err).
			WithDetail("endpoint", c.baseURL)
	}
	defer resp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama: list models: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ollama: decode model list: %w", err)
	}

	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// IsModelAvailable reports whether the named model is installed. Results are
// cached for 30 seconds; within that window no network probe is issued.
func (c *Client) IsModelAvailable(ctx context.Context, model string) (bool, error) {
	c.mu.Lock()
	if entry, ok := c.cache[model]; ok && c.now().Sub(entry.checkedAt) < availabilityTTL {
		c.mu.Unlock()
		return entry.available, nil
	}
	c.mu.Unlock()

	available, err := c.probeModel(ctx, model)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.cache[model] = availabilityEntry{available: available, checkedAt: c.now()}
	c.mu.Unlock()
	return available, nil
}

// InvalidateCache drops the cached availability entry for a model.
func (c *Client) InvalidateCache(model string) {
	c.mu.Lock()
	delete(c.cache, model)
	c.mu.Unlock()
}

func (c *Client) probeModel(ctx context.Context, model string) (bool, error) {
	names, err := c.ListLocal(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		// "llama3.2:3b" matches itself and the bare "llama3.2" tag.
		if name == model || strings.SplitN(name, ":", 2)[0] == model {
			return true, nil
		}
	}
	return false, nil
}

// Pull downloads a model, forwarding streamed progress to sink. After the
// service signals completion the installation is re-verified, since the
// stream can end before the model is actually usable.
func (c *Client) Pull(ctx context.Context, model string, sink ProgressSink) error {
	body, err := json.Marshal(map[string]any{"name": model, "stream": true})
	if err != nil {
		return fmt.Errorf("ollama: marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ollama: create pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulls are long-running; the stream itself signals completion.
	client := &http.Client{Transport: c.client.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return apperrors.CollaboratorUnavailable("Ollama service", err).
			WithDetail("endpoint", c.baseURL)
	}
	defer resp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ollama: pull %q: unexpected status %d: %s", model, resp.StatusCode, string(respBody))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk struct {
			Status    string `json:"status"`
			Completed int64  `json:"completed"`
			Total     int64  `json:"total"`
			Error     string `json:"error"`
		}
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("ollama: decode pull progress: %w", err)
		}
		if chunk.Error != "" {
			return fmt.Errorf("ollama: pull %q: %s", model, chunk.Error)
		}
		if sink != nil {
			sink.Progress(chunk.Status, chunk.Completed, chunk.Total)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ollama: read pull stream: %w", err)
	}

	// The service can report success before the model is registered.
	c.InvalidateCache(model)
	available, err := c.IsModelAvailable(ctx, model)
	if err != nil {
		return fmt.Errorf("ollama: verify pull of %q: %w", model, err)
	}
	if !available {
		return apperrors.ModelNotInstalled(model).
			WithDetail("reason", "pull completed but model is not listed")
	}

	c.log.Info("model pulled", logger.Fields("model", model))
	return nil
}

// Delete removes an installed model. This is irreversible; confirmation is
// the caller's responsibility.
func (c *Client) Delete(ctx context.Context, model string) error {
	body, err := json.Marshal(map[string]any{"name": model})
	if err != nil {
		return fmt.Errorf("ollama: marshal delete request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ollama: create delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.CollaboratorUnavailable("Ollama service", err).
			WithDetail("endpoint", c.baseURL)
	}
	defer resp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.ModelNotInstalled(model)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: delete %q: unexpected status %d", model, resp.StatusCode)
	}

	c.InvalidateCache(model)
	c.log.Info("model removed", logger.Fields("model", model))
	return nil
}
