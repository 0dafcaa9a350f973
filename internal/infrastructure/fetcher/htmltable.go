package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/source"
)

// HTMLTableFetcher pulls free-proxy sites that render their lists as an HTML
// table with the address in the first column and the port in the second.
type HTMLTableFetcher struct {
	client *http.Client
}

// NewHTMLTableFetcher wires an HTTP client; a nil client gets a 20s timeout default.
func NewHTMLTableFetcher(client *http.Client) *HTMLTableFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLTableFetcher{client: client}
}

// Name identifies the strategy inside the registry.
func (f *HTMLTableFetcher) Name() string {
	return "htmltable"
}

// Fetch downloads the page and extracts (address, port) pairs from table
// rows. Rows whose second cell is not a numeric port are skipped; header
// rows fall out naturally.
func (f *HTMLTableFetcher) Fetch(ctx context.Context, req source.Request) ([]domain.Candidate, error) {
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source %s: parse html: %w", req.SourceName, err)
	}

	var candidates []domain.Candidate
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		address := strings.TrimSpace(cells.Eq(0).Text())
		port := strings.TrimSpace(cells.Eq(1).Text())
		if address == "" {
			return
		}
		if _, err := strconv.Atoi(port); err != nil {
			return
		}

		candidates = append(candidates, domain.Candidate{
			Address:  address,
			Port:     port,
			Protocol: req.Protocol,
		})
	})

	return candidates, nil
}
