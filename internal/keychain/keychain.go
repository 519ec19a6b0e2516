// Package keychain stores provider API keys in the OS secret store.
// An environment variable of the form TUBEMD_<PROVIDER>_API_KEY always takes
// precedence over the stored entry and is never written by this package.
package keychain

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// serviceName is the fixed namespace under which entries are stored.
const serviceName = "tubemd"

// ErrNotFound is returned by Get when no credential exists for a provider.
var ErrNotFound = errors.New("keychain: credential not found")

// Store provides access to per-provider secrets.
type Store interface {
	// Get returns the secret for a provider: the environment override if set,
	// otherwise the OS secret store entry. Returns ErrNotFound when neither
	// exists.
	Get(provider string) (string, error)
	// Set writes the secret to the OS secret store.
	Set(provider, secret string) error
	// Delete removes the secret from the OS secret store.
	Delete(provider string) error
	// Has reports whether a secret is resolvable for a provider. It never
	// exposes the secret value.
	Has(provider string) bool
}

// EnvVar returns the environment variable name checked for a provider,
// e.g. "openai" -> "TUBEMD_OPENAI_API_KEY".
func EnvVar(provider string) string {
	name := strings.ToUpper(provider)
	name = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
	return fmt.Sprintf("TUBEMD_%s_API_KEY", name)
}

// System is the Store backed by the OS secret store (Keychain, Secret
// Service, Credential Manager).
type System struct{}

// NewSystem creates a Store backed by the OS secret store.
func NewSystem() *System { return &System{} }

// Get resolves a secret: environment first, then the OS secret store.
func (s *System) Get(provider string) (string, error) {
	if v := os.Getenv(EnvVar(provider)); v != "" {
		return v, nil
	}
	secret, err := keyring.Get(serviceName, provider)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keychain: read secret for %q: %w", provider, err)
	}
	return secret, nil
}

// Set writes the secret to the OS secret store. The environment override is
// untouched.
func (s *System) Set(provider, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("keychain: secret for %q must not be empty", provider)
	}
	if err := keyring.Set(serviceName, provider, secret); err != nil {
		return fmt.Errorf("keychain: store secret for %q: %w", provider, err)
	}
	return nil
}

// Delete removes the secret from the OS secret store. Deleting an absent
// entry is not an error.
func (s *System) Delete(provider string) error {
	err := keyring.Delete(serviceName, provider)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain: delete secret for %q: %w", provider, err)
	}
	return nil
}

// Has reports whether a secret is resolvable. The value never appears in
// logs or errors.
func (s *System) Has(provider string) bool {
	_, err := s.Get(provider)
	return err == nil
}
