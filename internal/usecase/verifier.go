package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/ports"
	"ProxyPool/internal/quality"
)

// Verifier drives the verification pipeline over a candidate batch: dedupe,
// fan out one evaluation per candidate under a bounded worker pool, and
// persist the candidates whose success rate is above zero.
type Verifier struct {
	evaluator   ports.Evaluator
	store       ports.ProxyStore
	concurrency int
	logger      *slog.Logger
}

// NewVerifier wires the evaluator and store under a global concurrency cap.
func NewVerifier(evaluator ports.Evaluator, store ports.ProxyStore, concurrency int, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Verifier{
		evaluator:   evaluator,
		store:       store,
		concurrency: concurrency,
		logger:      logger,
	}
}

type batchCounters struct {
	verified atomic.Int64
	rejected atomic.Int64
	errored  atomic.Int64
	crashed  atomic.Int64
}

// VerifyBatch verifies every candidate and returns how many were verified
// and persisted. The call returns only after every scheduled instance has
// completed. Per-candidate errors (evaluation or storage) are logged and
// counted without aborting siblings; a crashed worker surfaces as a
// batch-level error after the join.
func (v *Verifier) VerifyBatch(ctx context.Context, candidates []domain.Candidate) (int, error) {
	candidates = quality.Dedupe(candidates)
	total := len(candidates)
	if total == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(v.concurrency)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	v.logger.Info("verification batch started", "candidates", total, "concurrency", v.concurrency)

	var (
		wg       sync.WaitGroup
		counters batchCounters
	)

	for _, candidate := range candidates {
		wg.Add(1)
		task := v.instance(ctx, candidate, &counters, &wg)
		if err := pool.Submit(task); err != nil {
			wg.Done()
			counters.errored.Add(1)
			v.logger.Error("schedule verification", "proxy", candidate.Key(), "error", err)
		}
	}

	wg.Wait()

	verified := int(counters.verified.Load())
	v.logger.Info("verification batch finished",
		"total", total,
		"verified", verified,
		"rejected", counters.rejected.Load(),
		"errored", counters.errored.Load())

	if crashed := counters.crashed.Load(); crashed > 0 {
		return verified, fmt.Errorf("%d verification workers crashed", crashed)
	}
	return verified, nil
}

// instance builds the pipeline task for one candidate. A panic inside the
// task is recorded and converted into a batch-level error by VerifyBatch
// once every sibling has finished.
func (v *Verifier) instance(ctx context.Context, candidate domain.Candidate, counters *batchCounters, wg *sync.WaitGroup) func() {
	return func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				counters.crashed.Add(1)
				v.logger.Error("verification worker crashed", "proxy", candidate.Key(), "panic", r)
			}
		}()

		start := time.Now()
		proxy, err := v.evaluator.Evaluate(ctx, candidate)
		if err != nil {
			counters.errored.Add(1)
			v.logger.Error("verification errored", "proxy", candidate.Key(), "error", err)
			return
		}

		if proxy.Quality.SuccessRate <= 0 {
			// Unusable right now; any stale stored record stays untouched.
			counters.rejected.Add(1)
			v.logger.Warn("proxy rejected",
				"proxy", candidate.Key(), "elapsed", time.Since(start).Round(time.Millisecond))
			return
		}

		if err := v.store.UpsertQuality(ctx, proxy); err != nil {
			counters.errored.Add(1)
			v.logger.Error("persist verified proxy", "proxy", candidate.Key(), "error", err)
			return
		}

		counters.verified.Add(1)
		v.logger.Info("proxy verified",
			"proxy", candidate.Key(),
			"score", proxy.Quality.Score,
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
}
