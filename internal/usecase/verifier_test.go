package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ProxyPool/internal/domain"
)

// memStore is an in-memory ports.ProxyStore for exercising the use cases.
type memStore struct {
	mu       sync.Mutex
	records  map[string]domain.Proxy
	upserts  int
	inserts  int
	listErr  error
	upsertFn func(domain.Proxy) error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]domain.Proxy{}}
}

func (s *memStore) InsertBasic(ctx context.Context, candidate domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if _, ok := s.records[candidate.Key()]; !ok {
		s.records[candidate.Key()] = domain.Proxy{Candidate: candidate}
	}
	return nil
}

func (s *memStore) UpsertQuality(ctx context.Context, proxy domain.Proxy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertFn != nil {
		if err := s.upsertFn(proxy); err != nil {
			return err
		}
	}
	s.upserts++
	s.records[proxy.Candidate.Key()] = proxy
	return nil
}

func (s *memStore) FindByKey(ctx context.Context, address, port string) (*domain.Proxy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proxy, ok := s.records[address+":"+port]
	if !ok {
		return nil, nil
	}
	return &proxy, nil
}

func (s *memStore) ListAll(ctx context.Context) ([]domain.Proxy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	proxies := make([]domain.Proxy, 0, len(s.records))
	for _, proxy := range s.records {
		proxies = append(proxies, proxy)
	}
	return proxies, nil
}

func (s *memStore) Remove(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for key := range s.records {
		if strings.HasPrefix(key, address+":") {
			delete(s.records, key)
			removed = true
		}
	}
	return removed, nil
}

func (s *memStore) Close() error { return nil }

// fakeEvaluator returns canned results per candidate key.
type fakeEvaluator struct {
	evaluate func(domain.Candidate) (domain.Proxy, error)

	active atomic.Int64
	peak   atomic.Int64
}

func (e *fakeEvaluator) Evaluate(ctx context.Context, candidate domain.Candidate) (domain.Proxy, error) {
	current := e.active.Add(1)
	for {
		peak := e.peak.Load()
		if current <= peak || e.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	defer e.active.Add(-1)

	if e.evaluate != nil {
		return e.evaluate(candidate)
	}
	return domain.Proxy{
		Candidate: candidate,
		Quality:   domain.QualityRecord{SuccessRate: 1, Score: 0.85},
	}, nil
}

func candidates(n int) []domain.Candidate {
	out := make([]domain.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Candidate{Address: "10.0.0." + strconv.Itoa(i+1), Port: "8080"})
	}
	return out
}

func TestVerifyBatchPersistsVerified(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	verifier := NewVerifier(&fakeEvaluator{}, store, 4, nil)

	verified, err := verifier.VerifyBatch(context.Background(), candidates(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified != 5 {
		t.Fatalf("expected 5 verified, got %d", verified)
	}
	if store.upserts != 5 {
		t.Fatalf("expected 5 upserts, got %d", store.upserts)
	}
}

func TestVerifyBatchDeduplicatesInput(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	var evaluations atomic.Int64
	evaluator := &fakeEvaluator{evaluate: func(c domain.Candidate) (domain.Proxy, error) {
		evaluations.Add(1)
		return domain.Proxy{Candidate: c, Quality: domain.QualityRecord{SuccessRate: 1}}, nil
	}}
	verifier := NewVerifier(evaluator, store, 2, nil)

	batch := []domain.Candidate{
		{Address: "10.0.0.1", Port: "8080"},
		{Address: "10.0.0.1", Port: "8080"},
		{Address: "10.0.0.2", Port: "8080"},
	}
	verified, err := verifier.VerifyBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified != 2 {
		t.Fatalf("expected 2 verified, got %d", verified)
	}
	if got := evaluations.Load(); got != 2 {
		t.Fatalf("expected 2 evaluations, got %d", got)
	}
}

func TestVerifyBatchBoundsConcurrency(t *testing.T) {
	t.Parallel()

	const limit = 3

	evaluator := &fakeEvaluator{evaluate: func(c domain.Candidate) (domain.Proxy, error) {
		time.Sleep(20 * time.Millisecond)
		return domain.Proxy{Candidate: c, Quality: domain.QualityRecord{SuccessRate: 1}}, nil
	}}
	verifier := NewVerifier(evaluator, newMemStore(), limit, nil)

	if _, err := verifier.VerifyBatch(context.Background(), candidates(12)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak := evaluator.peak.Load(); peak > limit {
		t.Fatalf("concurrency cap violated: %d workers active at once", peak)
	}
}

func TestVerifyBatchRejectsWithoutOverwriting(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	prior := domain.Proxy{
		Candidate: domain.Candidate{Address: "10.0.0.1", Port: "8080"},
		Quality:   domain.QualityRecord{SuccessRate: 0.9, Score: 0.8},
	}
	store.records[prior.Candidate.Key()] = prior

	evaluator := &fakeEvaluator{evaluate: func(c domain.Candidate) (domain.Proxy, error) {
		return domain.Proxy{Candidate: c, Quality: domain.QualityRecord{SuccessRate: 0}}, nil
	}}
	verifier := NewVerifier(evaluator, store, 2, nil)

	verified, err := verifier.VerifyBatch(context.Background(), []domain.Candidate{prior.Candidate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified != 0 {
		t.Fatalf("expected 0 verified, got %d", verified)
	}
	if store.upserts != 0 {
		t.Fatalf("rejection must not write, got %d upserts", store.upserts)
	}
	if got := store.records[prior.Candidate.Key()]; got.Quality.Score != 0.8 {
		t.Fatalf("stale record was modified: %+v", got.Quality)
	}
}

func TestVerifyBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	evaluator := &fakeEvaluator{evaluate: func(c domain.Candidate) (domain.Proxy, error) {
		if c.Address == "10.0.0.2" {
			return domain.Proxy{}, errors.New("probe client exploded")
		}
		return domain.Proxy{Candidate: c, Quality: domain.QualityRecord{SuccessRate: 1}}, nil
	}}
	verifier := NewVerifier(evaluator, store, 2, nil)

	verified, err := verifier.VerifyBatch(context.Background(), candidates(3))
	if err != nil {
		t.Fatalf("per-candidate errors must not fail the batch, got %v", err)
	}
	if verified != 2 {
		t.Fatalf("expected siblings to survive, got %d verified", verified)
	}
}

func TestVerifyBatchSurvivesStoreErrors(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.upsertFn = func(proxy domain.Proxy) error {
		if proxy.Candidate.Address == "10.0.0.1" {
			return errors.New("disk full")
		}
		return nil
	}
	verifier := NewVerifier(&fakeEvaluator{}, store, 2, nil)

	verified, err := verifier.VerifyBatch(context.Background(), candidates(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified != 2 {
		t.Fatalf("expected 2 verified despite one storage failure, got %d", verified)
	}
}

func TestVerifyBatchReportsCrashedWorkers(t *testing.T) {
	t.Parallel()

	evaluator := &fakeEvaluator{evaluate: func(c domain.Candidate) (domain.Proxy, error) {
		if c.Address == "10.0.0.3" {
			panic("boom")
		}
		return domain.Proxy{Candidate: c, Quality: domain.QualityRecord{SuccessRate: 1}}, nil
	}}
	verifier := NewVerifier(evaluator, newMemStore(), 2, nil)

	verified, err := verifier.VerifyBatch(context.Background(), candidates(4))
	if err == nil {
		t.Fatal("expected a batch-level error after a worker panic")
	}
	if !strings.Contains(err.Error(), "crashed") {
		t.Fatalf("unexpected error: %v", err)
	}
	// The join still completed: siblings were verified.
	if verified != 3 {
		t.Fatalf("expected 3 verified, got %d", verified)
	}
}

func TestVerifyBatchEmptyInput(t *testing.T) {
	t.Parallel()

	verifier := NewVerifier(&fakeEvaluator{}, newMemStore(), 2, nil)
	verified, err := verifier.VerifyBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified != 0 {
		t.Fatalf("expected 0 verified, got %d", verified)
	}
}
