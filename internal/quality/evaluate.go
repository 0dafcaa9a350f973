package quality

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/ports"
)

// Evaluator runs the full quality pipeline for one candidate: probe,
// aggregate, blend stability against the stored record, and score.
type Evaluator struct {
	prober *Prober
	store  ports.ProxyStore
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Evaluator = (*Evaluator)(nil)

// NewEvaluator wires the prober and the store used for prior-record lookups.
func NewEvaluator(prober *Prober, store ports.ProxyStore, cfg Config, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{
		prober: prober,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate probes the candidate and returns its updated proxy record. Probe
// failures are data and never produce an error; only a failed prior-record
// read propagates, identifying the candidate.
func (e *Evaluator) Evaluate(ctx context.Context, candidate domain.Candidate) (domain.Proxy, error) {
	batch := e.prober.Probe(ctx, candidate)
	successRate := batch.SuccessRate()
	averageSpeed := batch.AverageSpeed()

	prior, err := e.store.FindByKey(ctx, candidate.Address, candidate.Port)
	if err != nil {
		return domain.Proxy{}, fmt.Errorf("load prior record for %s: %w", candidate.Key(), err)
	}

	var priorQuality *domain.QualityRecord
	if prior != nil {
		priorQuality = &prior.Quality
	}
	stability := Stability(successRate, priorQuality)

	record := domain.QualityRecord{
		AverageSpeed: averageSpeed,
		SuccessRate:  successRate,
		Stability:    stability,
		Score:        Score(averageSpeed, successRate, stability, e.cfg),
		LastChecked:  e.now(),
	}

	e.logger.Debug("candidate evaluated",
		"proxy", candidate.Key(),
		"success_rate", successRate,
		"average_speed", averageSpeed,
		"stability", stability,
		"score", record.Score)

	return domain.Proxy{Candidate: candidate, Quality: record}, nil
}
