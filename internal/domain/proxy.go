package domain

import (
	"fmt"
	"time"
)

// Protocol identifies how a candidate expects to be dialed.
type Protocol string

const (
	ProtocolHTTP   Protocol = "http"
	ProtocolSOCKS5 Protocol = "socks5"
)

// Candidate is an unverified proxy endpoint awaiting probing.
// Identity is the (Address, Port) pair; Protocol is only a dialing hint
// reported by the source and does not participate in identity.
type Candidate struct {
	Address  string
	Port     string
	Protocol Protocol
}

// Key returns the canonical identity used for deduplication and storage.
func (c Candidate) Key() string {
	return c.Address + ":" + c.Port
}

// URL renders the candidate as a proxy URL for transport construction.
func (c Candidate) URL() string {
	scheme := c.Protocol
	if scheme == "" {
		scheme = ProtocolHTTP
	}
	return fmt.Sprintf("%s://%s:%s", scheme, c.Address, c.Port)
}

// QualityRecord carries the measured quality of one verification pass.
// A record is total: all fields are populated together once computed.
type QualityRecord struct {
	AverageSpeed float64
	SuccessRate  float64
	Stability    float64
	Score        float64
	LastChecked  time.Time
}

// Proxy is the persisted entity: candidate identity plus its latest quality.
type Proxy struct {
	Candidate Candidate
	Quality   QualityRecord
}

// VerificationState enumerates the lifecycle of one candidate inside a batch.
type VerificationState string

const (
	StatePending  VerificationState = "pending"
	StateProbing  VerificationState = "probing"
	StateVerified VerificationState = "verified"
	StateRejected VerificationState = "rejected"
	StateErrored  VerificationState = "errored"
)
