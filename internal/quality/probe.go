package quality

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"h12.io/socks"

	"ProxyPool/internal/domain"
)

// initialBackoff is the delay before the first retry; it doubles after
// every failed try within one attempt slot.
const initialBackoff = 500 * time.Millisecond

// Config carries the probing parameters and scoring weights for one batch.
type Config struct {
	TestCount       int
	MaxRetries      int
	Timeout         time.Duration
	TestURLs        []string
	WeightSpeed     float64
	WeightSuccess   float64
	WeightStability float64
}

// BatchResult merges every probe attempt for one candidate across all target
// URLs. Invariant: len(Successes)+Failures == Planned once Probe returns;
// every planned attempt terminates in exactly one of the two outcomes.
type BatchResult struct {
	Successes []float64 // latency in seconds of each successful attempt
	Failures  int
	Planned   int
}

// SuccessRate returns successes over planned attempts, rounded to 2 decimals.
func (b BatchResult) SuccessRate() float64 {
	if b.Planned == 0 {
		return 0
	}
	return round2(float64(len(b.Successes)) / float64(b.Planned))
}

// AverageSpeed returns the mean latency of successful attempts in seconds,
// rounded to 2 decimals, or 0 when nothing succeeded.
func (b BatchResult) AverageSpeed() float64 {
	if len(b.Successes) == 0 {
		return 0
	}
	var sum float64
	for _, latency := range b.Successes {
		sum += latency
	}
	return round2(sum / float64(len(b.Successes)))
}

// Prober issues HTTP requests through a candidate acting as a forward proxy
// and records per-attempt outcomes.
type Prober struct {
	cfg    Config
	logger *slog.Logger

	// overridable in tests
	newClient func(domain.Candidate) *http.Client
	sleep     func(time.Duration)
}

// NewProber wires the probing configuration; a nil logger discards output.
func NewProber(cfg Config, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Prober{
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
	p.newClient = p.proxyClient
	return p
}

// Probe runs TestCount attempts against every target URL through the
// candidate and merges all outcomes into one BatchResult. Attempts run
// concurrently; a failed attempt never aborts its siblings.
func (p *Prober) Probe(ctx context.Context, candidate domain.Candidate) BatchResult {
	client := p.newClient(candidate)
	result := BatchResult{Planned: len(p.cfg.TestURLs) * p.cfg.TestCount}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, target := range p.cfg.TestURLs {
		for i := 0; i < p.cfg.TestCount; i++ {
			wg.Add(1)
			go func(target string) {
				defer wg.Done()

				latency, ok := p.attempt(ctx, client, candidate, target)

				mu.Lock()
				if ok {
					result.Successes = append(result.Successes, latency)
				} else {
					result.Failures++
				}
				mu.Unlock()
			}(target)
		}
	}

	wg.Wait()
	return result
}

// attempt performs one probe slot: a first try plus up to MaxRetries retries
// with doubling backoff. It returns the latency of the successful try only;
// time spent in failed tries and backoff sleeps does not count.
func (p *Prober) attempt(ctx context.Context, client *http.Client, candidate domain.Candidate, target string) (float64, bool) {
	backoff := initialBackoff

	for try := 0; try <= p.cfg.MaxRetries; try++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			p.logger.Debug("build probe request", "proxy", candidate.Key(), "url", target, "error", err)
			return 0, false
		}

		start := time.Now()
		resp, err := client.Do(req)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				latency := round2(time.Since(start).Seconds())
				p.logger.Debug("probe succeeded",
					"proxy", candidate.Key(), "url", target, "try", try+1, "latency", latency)
				return latency, true
			}
			p.logger.Debug("probe returned non-success status",
				"proxy", candidate.Key(), "url", target, "try", try+1, "status", resp.StatusCode)
		} else {
			p.logger.Debug("probe failed",
				"proxy", candidate.Key(), "url", target, "try", try+1, "error", err)
		}

		if try < p.cfg.MaxRetries {
			p.sleep(backoff)
			backoff *= 2
		}
	}

	return 0, false
}

// proxyClient builds an HTTP client that routes requests through the
// candidate. HTTP candidates become a forward proxy on the transport;
// socks5 candidates dial through a SOCKS connection instead.
func (p *Prober) proxyClient(candidate domain.Candidate) *http.Client {
	var transport *http.Transport

	if candidate.Protocol == domain.ProtocolSOCKS5 {
		transport = &http.Transport{Dial: socks.Dial(candidate.URL())}
	} else {
		proxyURL, err := url.Parse(candidate.URL())
		if err != nil {
			return &http.Client{Transport: errTransport{err: err}, Timeout: p.cfg.Timeout}
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &http.Client{Transport: transport, Timeout: p.cfg.Timeout}
}

// errTransport fails every request with the construction error, so malformed
// candidates surface as ordinary probe failures.
type errTransport struct {
	err error
}

func (t errTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, t.err
}
