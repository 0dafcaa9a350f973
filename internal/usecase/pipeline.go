package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/ports"
)

// PipelineDeps wires the collaborators of the collection workflow.
type PipelineDeps struct {
	Source   ports.CandidateSource
	Verifier *Verifier
	Store    ports.ProxyStore
	Pool     *Pool
	Logger   *slog.Logger
}

// Pipeline implements the candidate-ingestion workflow: fetch, verify,
// persist, and refresh the serving cache.
type Pipeline struct {
	source   ports.CandidateSource
	verifier *Verifier
	store    ports.ProxyStore
	pool     *Pool
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		source:   deps.Source,
		verifier: deps.Verifier,
		store:    deps.Store,
		pool:     deps.Pool,
		logger:   logger,
	}
}

// Collect fetches candidates from every configured source and verifies them,
// returning the number of proxies verified and persisted.
func (p *Pipeline) Collect(ctx context.Context) (int, error) {
	if p.source == nil {
		return 0, nil
	}

	candidates, err := p.source.FetchCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch candidates: %w", err)
	}
	p.logger.Info("candidates fetched", "count", len(candidates))

	verified, err := p.verifier.VerifyBatch(ctx, candidates)
	p.invalidate()
	return verified, err
}

// RefreshStored re-verifies every proxy currently in storage, so records
// decay or improve as the upstream endpoints change.
func (p *Pipeline) RefreshStored(ctx context.Context) (int, error) {
	proxies, err := p.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored proxies: %w", err)
	}
	if len(proxies) == 0 {
		return 0, nil
	}

	candidates := make([]domain.Candidate, 0, len(proxies))
	for _, proxy := range proxies {
		candidates = append(candidates, proxy.Candidate)
	}
	p.logger.Info("re-verifying stored proxies", "count", len(candidates))

	verified, err := p.verifier.VerifyBatch(ctx, candidates)
	p.invalidate()
	return verified, err
}

// Import parses manually supplied "address:port" lines, records their
// identities, and verifies them. Malformed lines are skipped with a warning.
func (p *Pipeline) Import(ctx context.Context, lines []string, protocol domain.Protocol) (int, error) {
	candidates := make([]domain.Candidate, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		address, port, ok := strings.Cut(line, ":")
		if !ok || address == "" || port == "" {
			p.logger.Warn("skipping malformed proxy line", "line", line)
			continue
		}

		candidate := domain.Candidate{Address: address, Port: port, Protocol: protocol}
		if err := p.store.InsertBasic(ctx, candidate); err != nil {
			p.logger.Error("record imported candidate", "proxy", candidate.Key(), "error", err)
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return 0, nil
	}
	p.logger.Info("imported candidates", "count", len(candidates))

	verified, err := p.verifier.VerifyBatch(ctx, candidates)
	p.invalidate()
	return verified, err
}

func (p *Pipeline) invalidate() {
	if p.pool != nil {
		p.pool.Invalidate()
	}
}
