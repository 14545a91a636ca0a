package core

import (
	"context"
	"fmt"
	"sync"
)

// Registry is the interface implemented by all ecosystem registry clients.
// Implementations report failures as errors; FetchMetadata at the package
// level folds those errors into Metadata outcomes.
type Registry interface {
	// Ecosystem returns the PURL type for this registry (e.g., "pypi", "npm").
	Ecosystem() Ecosystem

	// Fetch retrieves normalized metadata for a package. The name must
	// already be validated. On success Outcome is left as OutcomeOK.
	Fetch(ctx context.Context, name string) (*Metadata, error)
}

// Factory creates a registry instance for a given base URL.
type Factory func(baseURL string, client *Client) Registry

var (
	factories = make(map[Ecosystem]Factory)
	defaults  = make(map[Ecosystem]string)
	mu        sync.RWMutex
)

// Register adds a registry factory to the global registry.
// ecosystem is the PURL type; defaultURL is the default registry base URL.
func Register(ecosystem Ecosystem, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[ecosystem] = factory
	defaults[ecosystem] = defaultURL
}

// New creates a new registry for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
func New(ecosystem Ecosystem, baseURL string, client *Client) (Registry, error) {
	mu.RLock()
	factory, ok := factories[ecosystem]
	defaultURL := defaults[ecosystem]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ecosystem)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	if client == nil {
		client = DefaultClient()
	}

	return factory(baseURL, client), nil
}

// SupportedEcosystems returns all registered ecosystem types.
func SupportedEcosystems() []Ecosystem {
	mu.RLock()
	defer mu.RUnlock()

	ecosystems := make([]Ecosystem, 0, len(factories))
	for eco := range factories {
		ecosystems = append(ecosystems, eco)
	}
	return ecosystems
}

// DefaultURL returns the default registry URL for an ecosystem.
func DefaultURL(ecosystem Ecosystem) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[ecosystem]
}

// FetchMetadata resolves an identifier against its ecosystem registry and
// never fails: any error is folded into the returned Metadata's Outcome, with
// all other fields zeroed. Unregistered ecosystems short-circuit to
// OutcomeUnsupported without network I/O.
func FetchMetadata(ctx context.Context, id Identifier, client *Client) Metadata {
	reg, err := New(id.Ecosystem, "", client)
	if err != nil {
		return Metadata{Outcome: OutcomeUnsupported}
	}

	md, err := reg.Fetch(ctx, id.Name)
	if err != nil || md == nil {
		return Metadata{Outcome: OutcomeFor(err)}
	}
	md.Outcome = OutcomeOK
	return *md
}
