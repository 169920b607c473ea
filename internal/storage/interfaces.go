// Package storage defines the persistence interfaces consumed by the fleet
// orchestrator.
package storage

import (
	"context"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
)

// RecordStore persists fleet account records. Implementations must commit
// each mutation durably before returning; the orchestrator relies on that
// for crash resumability. Records are append-only and are never deleted.
type RecordStore interface {
	// Insert creates a new record in StatusProvisioned.
	Insert(ctx context.Context, seed, secret, address string) (fleet.Record, error)
	// ListByStatus returns all records in the given status in stable
	// insertion order.
	ListByStatus(ctx context.Context, status fleet.Status) ([]fleet.Record, error)
	// UpdateStatus sets the status of the record with the given address.
	UpdateStatus(ctx context.Context, address string, status fleet.Status) error
	// CountByStatus returns the number of records in the given status.
	CountByStatus(ctx context.Context, status fleet.Status) (int, error)
}
