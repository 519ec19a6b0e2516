package keychain

import (
	"os"
	"sync"
)

// Memory is an in-process Store for tests and environments without an OS
// secret store. It honors the same environment variable precedence as System.
type Memory struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]string)}
}

// Get resolves a secret: environment first, then the in-memory map.
func (m *Memory) Get(provider string) (string, error) {
	if v := os.Getenv(EnvVar(provider)); v != "" {
		return v, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	secret, ok := m.secrets[provider]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

// Set stores a secret in memory.
func (m *Memory) Set(provider, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[provider] = secret
	return nil
}

// Delete removes a secret from memory.
func (m *Memory) Delete(provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, provider)
	return nil
}

// Has reports whether a secret is resolvable.
func (m *Memory) Has(provider string) bool {
	_, err := m.Get(provider)
	return err == nil
}
