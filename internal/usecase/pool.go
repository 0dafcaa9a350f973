package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"ProxyPool/internal/cache"
	"ProxyPool/internal/domain"
	"ProxyPool/internal/ports"
)

const proxiesCacheKey = "proxies"

// Pool is the thin serving layer over storage: queries go through a
// process-wide cache lazily populated from ListAll on the first miss.
// Invalidation is explicit; entries carry no TTL.
type Pool struct {
	store  ports.ProxyStore
	cache  *cache.Cache[string, []domain.Proxy]
	logger *slog.Logger
}

// NewPool wires the store behind a read-through cache.
func NewPool(store ports.ProxyStore, c *cache.Cache[string, []domain.Proxy], logger *slog.Logger) *Pool {
	if c == nil {
		c = cache.New[string, []domain.Proxy]()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pool{store: store, cache: c, logger: logger}
}

// List returns every verified proxy ordered by score descending, from cache
// when warm.
func (p *Pool) List(ctx context.Context) ([]domain.Proxy, error) {
	if proxies, ok := p.cache.Get(proxiesCacheKey); ok {
		return proxies, nil
	}

	p.logger.Debug("proxy cache miss, loading from storage")
	proxies, err := p.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}

	p.cache.Set(proxiesCacheKey, proxies)
	return proxies, nil
}

// Random picks one proxy uniformly from the cached list.
func (p *Pool) Random(ctx context.Context) (domain.Candidate, error) {
	proxies, err := p.List(ctx)
	if err != nil {
		return domain.Candidate{}, err
	}
	if len(proxies) == 0 {
		return domain.Candidate{}, fmt.Errorf("proxy pool is empty")
	}
	return proxies[rand.Intn(len(proxies))].Candidate, nil
}

// Forget removes every record for the address from storage and drops the
// cached list.
func (p *Pool) Forget(ctx context.Context, address string) (bool, error) {
	removed, err := p.store.Remove(ctx, address)
	if err != nil {
		return false, fmt.Errorf("remove proxy %s: %w", address, err)
	}
	if removed {
		p.Invalidate()
	}
	return removed, nil
}

// Invalidate drops the cached proxy list; the next query reloads it.
func (p *Pool) Invalidate() {
	p.cache.Remove(proxiesCacheKey)
}
