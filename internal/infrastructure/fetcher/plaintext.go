package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/source"
)

// PlaintextFetcher pulls sources that publish a bare "address:port" line per
// proxy, such as the classic proxy.txt dumps.
type PlaintextFetcher struct {
	client *http.Client
}

// NewPlaintextFetcher wires an HTTP client; a nil client gets a 20s timeout default.
func NewPlaintextFetcher(client *http.Client) *PlaintextFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PlaintextFetcher{client: client}
}

// Name identifies the strategy inside the registry.
func (f *PlaintextFetcher) Name() string {
	return "plaintext"
}

// Fetch downloads the list and parses each line; lines without a colon are
// skipped silently, matching how these dumps mix in comments and blanks.
func (f *PlaintextFetcher) Fetch(ctx context.Context, req source.Request) ([]domain.Candidate, error) {
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

	var candidates []domain.Candidate
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		address, port, ok := strings.Cut(line, ":")
		if !ok || address == "" || port == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Address:  address,
			Port:     port,
			Protocol: req.Protocol,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("source %s: read body: %w", req.SourceName, err)
	}

	return candidates, nil
}
