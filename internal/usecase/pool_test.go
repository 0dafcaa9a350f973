package usecase

import (
	"context"
	"testing"

	"ProxyPool/internal/domain"
)

// countingStore wraps memStore and counts ListAll calls.
type countingStore struct {
	*memStore
	listCalls int
}

func (s *countingStore) ListAll(ctx context.Context) ([]domain.Proxy, error) {
	s.listCalls++
	return s.memStore.ListAll(ctx)
}

func seededStore(n int) *countingStore {
	store := &countingStore{memStore: newMemStore()}
	for _, candidate := range candidates(n) {
		store.records[candidate.Key()] = domain.Proxy{
			Candidate: candidate,
			Quality:   domain.QualityRecord{SuccessRate: 1, Score: 0.9},
		}
	}
	return store
}

func TestPoolListReadThrough(t *testing.T) {
	t.Parallel()

	store := seededStore(3)
	pool := NewPool(store, nil, nil)

	first, err := pool.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 proxies, got %d", len(first))
	}
	if store.listCalls != 1 {
		t.Fatalf("expected 1 storage read, got %d", store.listCalls)
	}

	// Second read must come from the cache.
	if _, err := pool.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected cached read, storage hit %d times", store.listCalls)
	}
}

func TestPoolInvalidateForcesReload(t *testing.T) {
	t.Parallel()

	store := seededStore(2)
	pool := NewPool(store, nil, nil)

	if _, err := pool.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pool.Invalidate()
	if _, err := pool.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("expected reload after invalidation, got %d storage reads", store.listCalls)
	}
}

func TestPoolRandomDrawsFromPool(t *testing.T) {
	t.Parallel()

	store := seededStore(5)
	pool := NewPool(store, nil, nil)

	candidate, err := pool.Random(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.records[candidate.Key()]; !ok {
		t.Fatalf("random pick %s not in pool", candidate.Key())
	}
}

func TestPoolRandomEmpty(t *testing.T) {
	t.Parallel()

	pool := NewPool(&countingStore{memStore: newMemStore()}, nil, nil)
	if _, err := pool.Random(context.Background()); err == nil {
		t.Fatal("expected an error for an empty pool")
	}
}

func TestPoolForgetRemovesAndInvalidates(t *testing.T) {
	t.Parallel()

	store := seededStore(2)
	pool := NewPool(store, nil, nil)

	if _, err := pool.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := pool.Forget(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Fatal("expected the address to be removed")
	}

	proxies, err := pool.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proxies) != 1 {
		t.Fatalf("expected 1 proxy after removal, got %d", len(proxies))
	}
	if store.listCalls != 2 {
		t.Fatalf("expected cache drop after removal, got %d storage reads", store.listCalls)
	}
}

func TestPoolForgetUnknownAddress(t *testing.T) {
	t.Parallel()

	pool := NewPool(&countingStore{memStore: newMemStore()}, nil, nil)
	removed, err := pool.Forget(context.Background(), "203.0.113.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Fatal("expected no removal for an unknown address")
	}
}
