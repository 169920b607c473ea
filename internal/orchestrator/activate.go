package orchestrator

import (
	"context"
	"fmt"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/metrics"
	"github.com/R3E-Network/wallet-fleet/internal/storage"
	"github.com/R3E-Network/wallet-fleet/pkg/logger"
)

// ActivateStage advances funded records to activated by registering their
// signing key on-chain.
type ActivateStage struct {
	store   storage.RecordStore
	client  ChainClient
	factory AccountFactory
	log     *logger.Logger
}

// NewActivateStage creates the activate stage runner.
func NewActivateStage(store storage.RecordStore, client ChainClient, factory AccountFactory, log *logger.Logger) *ActivateStage {
	if log == nil {
		log = logger.NewDefault("activate")
	}
	return &ActivateStage{
		store:   store,
		client:  client,
		factory: factory,
		log:     log,
	}
}

// Run processes all funded records in insertion order. A record whose key
// is already registered advances without a new submission; otherwise the
// registration is submitted and the advance is left to a later pass
// observing it. Any error is fatal for the run.
func (s *ActivateStage) Run(ctx context.Context) (int, error) {
	records, err := s.store.ListByStatus(ctx, fleet.StatusFunded)
	if err != nil {
		return 0, fmt.Errorf("list funded records: %w", err)
	}
	s.log.Infof("activate stage: %d funded records", len(records))

	for _, rec := range records {
		acct, err := s.factory.Derive(rec.Secret)
		if err != nil {
			return len(records), fmt.Errorf("derive account %s: %w", rec.Address, err)
		}

		active, err := s.client.IsActivated(ctx, acct.Address)
		if err != nil {
			return len(records), fmt.Errorf("activation state of %s: %w", acct.Address, err)
		}

		if active {
			if err := s.store.UpdateStatus(ctx, rec.Address, fleet.StatusActivated); err != nil {
				return len(records), fmt.Errorf("advance %s to activated: %w", rec.Address, err)
			}
			metrics.RecordTransition(fleet.StatusActivated.String())
			s.log.WithField("address", rec.Address).Info("record activated")
			continue
		}

		if err := s.client.Activate(ctx, acct); err != nil {
			return len(records), fmt.Errorf("activate %s: %w", acct.Address, err)
		}
		s.log.WithField("address", rec.Address).Info("activation submitted")
	}
	return len(records), nil
}
