package ports

import (
	"context"
	"time"

	"ProxyPool/internal/domain"
)

// CandidateSource pulls raw proxy candidates from upstream providers.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]domain.Candidate, error)
}

// ProxyStore persists proxies keyed by (address, port). Implementations must
// tolerate concurrent calls for different keys; serializing writes to the
// same key is the backend's concern, not the caller's.
type ProxyStore interface {
	// InsertBasic records the bare identity, ignoring duplicates.
	InsertBasic(ctx context.Context, candidate domain.Candidate) error
	// UpsertQuality inserts or replaces all quality fields for the key.
	UpsertQuality(ctx context.Context, proxy domain.Proxy) error
	// FindByKey returns the stored proxy or nil when unknown.
	FindByKey(ctx context.Context, address, port string) (*domain.Proxy, error)
	// ListAll returns every stored proxy ordered by score descending.
	ListAll(ctx context.Context) ([]domain.Proxy, error)
	// Remove deletes every record for the address, reporting whether any existed.
	Remove(ctx context.Context, address string) (bool, error)
	// Close releases the underlying connections.
	Close() error
}

// Evaluator measures one candidate and produces its updated proxy record.
type Evaluator interface {
	Evaluate(ctx context.Context, candidate domain.Candidate) (domain.Proxy, error)
}

// Scheduler controls when recurring verification jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
