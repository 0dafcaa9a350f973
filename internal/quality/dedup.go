package quality

import "ProxyPool/internal/domain"

// Dedupe collapses a candidate batch to unique (address, port) identities,
// keeping the first occurrence in input order. Protocol hints do not
// participate in identity, so a later socks5 duplicate of an http candidate
// is dropped.
func Dedupe(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	result := make([]domain.Candidate, 0, len(candidates))

	for _, candidate := range candidates {
		key := candidate.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, candidate)
	}

	return result
}
