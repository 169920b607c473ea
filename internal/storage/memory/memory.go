// Package memory provides an in-memory RecordStore for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/storage"
)

// Store is an in-memory implementation of storage.RecordStore. It is safe
// for concurrent use and preserves insertion order.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]fleet.Record
}

var _ storage.RecordStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		records: make(map[string]fleet.Record),
	}
}

func (s *Store) Insert(ctx context.Context, seed, secret, address string) (fleet.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[address]; exists {
		return fleet.Record{}, fmt.Errorf("record %s already exists", address)
	}

	now := time.Now().UTC()
	rec := fleet.Record{
		ID:        uuid.NewString(),
		Seed:      seed,
		Secret:    secret,
		Address:   address,
		Status:    fleet.StatusProvisioned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[address] = rec
	s.order = append(s.order, address)
	return rec, nil
}

func (s *Store) ListByStatus(ctx context.Context, status fleet.Status) ([]fleet.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []fleet.Record
	for _, addr := range s.order {
		if rec := s.records[addr]; rec.Status == status {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (s *Store) UpdateStatus(ctx context.Context, address string, status fleet.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[address]
	if !ok {
		return fmt.Errorf("record %s not found", address)
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	s.records[address] = rec
	return nil
}

func (s *Store) CountByStatus(ctx context.Context, status fleet.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.records {
		if rec.Status == status {
			count++
		}
	}
	return count, nil
}
