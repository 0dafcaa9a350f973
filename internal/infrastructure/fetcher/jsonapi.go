package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ProxyPool/internal/domain"
	"ProxyPool/internal/source"
)

// JSONAPIFetcher pulls paginated free-proxy JSON APIs shaped like
// {"data": {"list": [{"ip": ..., "port": ...}]}}. The configured URL embeds
// a %d placeholder for the page number.
type JSONAPIFetcher struct {
	client *http.Client
}

// NewJSONAPIFetcher wires an HTTP client; a nil client gets a 20s timeout default.
func NewJSONAPIFetcher(client *http.Client) *JSONAPIFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &JSONAPIFetcher{client: client}
}

// Name identifies the strategy inside the registry.
func (f *JSONAPIFetcher) Name() string {
	return "jsonapi"
}

type jsonAPIPage struct {
	Data struct {
		List []struct {
			IP   string      `json:"ip"`
			Port json.Number `json:"port"`
		} `json:"list"`
	} `json:"data"`
}

// Fetch walks the configured number of pages and collects every entry.
func (f *JSONAPIFetcher) Fetch(ctx context.Context, req source.Request) ([]domain.Candidate, error) {
	pages := req.Pages
	if pages <= 0 {
		pages = 1
	}

	var candidates []domain.Candidate
	for page := 1; page <= pages; page++ {
		pageURL := req.URL
		if strings.Contains(pageURL, "%d") {
			pageURL = fmt.Sprintf(req.URL, page)
		}

		entries, err := f.fetchPage(ctx, req.SourceName, pageURL)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries.Data.List {
			if entry.IP == "" || entry.Port.String() == "" {
				continue
			}
			candidates = append(candidates, domain.Candidate{
				Address:  entry.IP,
				Port:     entry.Port.String(),
				Protocol: req.Protocol,
			})
		}
	}

	return candidates, nil
}

func (f *JSONAPIFetcher) fetchPage(ctx context.Context, name, pageURL string) (jsonAPIPage, error) {
	var page jsonAPIPage

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return page, fmt.Errorf("source %s: %w", name, err)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return page, fmt.Errorf("source %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return page, fmt.Errorf("source %s: unexpected status %s", name, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("source %s: decode page: %w", name, err)
	}
	return page, nil
}
