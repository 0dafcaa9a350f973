package source

import (
	"context"
	"fmt"

	"ProxyPool/internal/domain"
)

// Request carries all parameters required to fetch one configured source.
type Request struct {
	SourceName string
	URL        string
	Pages      int
	Protocol   domain.Protocol
}

// Fetcher captures a single retrieval strategy (plain text list, JSON API,
// HTML table, ...).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.Candidate, error)
}

// Registry keeps a mapping from fetcher names to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[fetcher.Name()] = fetcher
}

// Resolve returns a fetcher by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if fetcher, ok := r.fetchers[name]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("fetcher %s is not registered", name)
}
