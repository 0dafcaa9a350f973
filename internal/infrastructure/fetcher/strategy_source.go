package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ProxyPool/internal/config"
	"ProxyPool/internal/domain"
	"ProxyPool/internal/ports"
	"ProxyPool/internal/source"
)

// StrategySource implements CandidateSource via registered fetcher
// strategies. A failing source is logged and skipped so one dead provider
// never starves the batch.
type StrategySource struct {
	registry *source.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires the fetcher registry with config-defined sources.
func NewStrategySource(reg *source.Registry, sources []config.SourceConfig, logger *slog.Logger) *StrategySource {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   logger,
	}
}

// FetchCandidates iterates over configured sources and merges their results.
func (s *StrategySource) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("fetcher registry is not configured")
	}

	var aggregated []domain.Candidate
	for _, src := range s.sources {
		strategy, err := s.registry.Resolve(src.Fetcher)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := source.Request{
			SourceName: src.Name,
			URL:        src.URL,
			Pages:      src.Pages,
			Protocol:   domain.Protocol(src.Protocol),
		}

		candidates, err := strategy.Fetch(ctx, req)
		if err != nil {
			s.logger.Warn("source fetch failed", "source", src.Name, "error", err)
			continue
		}

		s.logger.Info("source fetched", "source", src.Name, "count", len(candidates))
		aggregated = append(aggregated, candidates...)
	}

	return aggregated, nil
}
