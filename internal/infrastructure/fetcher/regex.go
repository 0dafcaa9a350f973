package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/source"
)

// proxyPairExpr matches IPv4:port pairs anywhere in a response body. Sites
// that render their lists from inline script data fall to this strategy.
var proxyPairExpr = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{1,3}){3}):(\d{2,5})\b`)

// RegexFetcher scrapes address:port pairs out of arbitrary page content.
type RegexFetcher struct {
	client *http.Client
}

// NewRegexFetcher wires an HTTP client; a nil client gets a 20s timeout default.
func NewRegexFetcher(client *http.Client) *RegexFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RegexFetcher{client: client}
}

// Name identifies the strategy inside the registry.
func (f *RegexFetcher) Name() string {
	return "regex"
}

// Fetch downloads the page and extracts every IPv4:port pair it contains.
// Duplicate pairs within one page are collapsed here; cross-source
// deduplication happens later in the verification pipeline.
func (f *RegexFetcher) Fetch(ctx context.Context, req source.Request) ([]domain.Candidate, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source %s: unexpected status %s", req.SourceName, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source %s: read body: %w", req.SourceName, err)
	}

	var candidates []domain.Candidate
	seen := map[string]struct{}{}
	for _, match := range proxyPairExpr.FindAllStringSubmatch(string(body), -1) {
		pair := match[1] + ":" + match[2]
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		candidates = append(candidates, domain.Candidate{
			Address:  match[1],
			Port:     match[2],
			Protocol: req.Protocol,
		})
	}

	return candidates, nil
}
