package quality

import (
	"testing"

	"ProxyPool/internal/domain"
)

func TestDedupeKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	input := []domain.Candidate{
		{Address: "10.0.0.1", Port: "8080"},
		{Address: "10.0.0.2", Port: "3128"},
		{Address: "10.0.0.1", Port: "8080", Protocol: domain.ProtocolSOCKS5},
		{Address: "10.0.0.1", Port: "8081"},
		{Address: "10.0.0.2", Port: "3128"},
	}

	got := Dedupe(input)

	if len(got) != 3 {
		t.Fatalf("expected 3 unique candidates, got %d", len(got))
	}

	wantKeys := []string{"10.0.0.1:8080", "10.0.0.2:3128", "10.0.0.1:8081"}
	for i, want := range wantKeys {
		if got[i].Key() != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Key())
		}
	}

	// The first occurrence wins, including its protocol hint.
	if got[0].Protocol == domain.ProtocolSOCKS5 {
		t.Fatalf("expected first occurrence to be kept, got the socks5 duplicate")
	}
}

func TestDedupeIdempotent(t *testing.T) {
	t.Parallel()

	input := []domain.Candidate{
		{Address: "10.0.0.1", Port: "8080"},
		{Address: "10.0.0.1", Port: "8080"},
		{Address: "10.0.0.3", Port: "80"},
	}

	once := Dedupe(input)
	twice := Dedupe(once)

	if len(once) != len(twice) {
		t.Fatalf("dedupe not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("position %d changed on second pass: %+v vs %+v", i, once[i], twice[i])
		}
	}
	if len(once) > len(input) {
		t.Fatalf("output longer than input: %d > %d", len(once), len(input))
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Dedupe(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}
