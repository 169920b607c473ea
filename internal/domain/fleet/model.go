// Package fleet defines the account records managed by the wallet fleet.
package fleet

import "time"

// Status is the lifecycle position of a fleet account. Transitions are
// strictly forward; a record never moves back to an earlier status.
type Status int

const (
	// StatusProvisioned marks a freshly generated, unfunded account.
	StatusProvisioned Status = iota
	// StatusFunded marks an account whose balance reached the funding target.
	StatusFunded
	// StatusActivated marks an account with its signing key registered on-chain.
	StatusActivated
	// StatusRefunded marks an account whose excess balance was swept back to
	// the treasury.
	StatusRefunded
	// StatusDrainedTokens and StatusDrained are reserved for the airdrop
	// drain stages, which are not implemented.
	StatusDrainedTokens
	StatusDrained
)

// String returns a short human-readable stage name for logs.
func (s Status) String() string {
	switch s {
	case StatusProvisioned:
		return "provisioned"
	case StatusFunded:
		return "funded"
	case StatusActivated:
		return "activated"
	case StatusRefunded:
		return "refunded"
	case StatusDrainedTokens:
		return "drained_tokens"
	case StatusDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// Record is one managed account in the fleet. Seed and Secret are sensitive
// key material and must never appear in logs; Address is the only public
// identifier.
type Record struct {
	ID        string
	Seed      string
	Secret    string
	Address   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
