// Package llm provides a provider-polymorphic chat completion client. Each
// provider implements the Dialect interface, which maps universal request and
// response types onto the provider's HTTP wire format; the Client owns the
// transport, the single-attempt policy, and the fixed timeout. Adding a
// provider means adding a Dialect; nothing else changes.
package llm

import (
	"fmt"
	"sync"
)

// Dialect maps universal LLM types to/from a specific provider's HTTP format.
type Dialect interface {
	// Name returns the dialect identifier (e.g., "local", "openai").
	Name() string

	// ChatPath returns the endpoint path for chat completion, relative to
	// the provider's base URL (e.g., "/api/chat").
	ChatPath() string

	// BuildRequest maps a universal CompletionRequest to the provider's JSON
	// request body.
	BuildRequest(req CompletionRequest) (any, error)

	// ParseResponse maps the provider's JSON response body to a universal
	// CompletionResponse.
	ParseResponse(body []byte) (*CompletionResponse, error)

	// AuthHeaders returns the HTTP headers that carry the credential. The
	// secret may be empty for providers that need none.
	AuthHeaders(secret string) map[string]string
}

// --- Dialect Registry ---

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect adds a dialect to the global registry. Called from init()
// in this package for the built-in dialects.
func RegisterDialect(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[d.Name()] = d
}

// GetDialect retrieves a dialect by name from the global registry.
func GetDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q", name)
	}
	return d, nil
}

// Dialects returns the names of all registered dialects.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	return names
}
