package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/metrics"
	"github.com/R3E-Network/wallet-fleet/internal/storage"
	"github.com/R3E-Network/wallet-fleet/internal/wallet"
	"github.com/R3E-Network/wallet-fleet/pkg/logger"
)

// ErrTreasuryUnderfunded aborts a fund batch when the treasury drops below
// the funding target mid-batch. It is an expected condition, not a remote
// failure: the orchestrator clears the pass eligibility flag and continues.
var ErrTreasuryUnderfunded = errors.New("treasury below funding target")

// FundStage advances provisioned records to funded. It processes the batch
// sequentially because every record draws on the same treasury balance.
type FundStage struct {
	store    storage.RecordStore
	client   ChainClient
	factory  AccountFactory
	treasury wallet.Account
	target   int64
	log      *logger.Logger
}

// NewFundStage creates the fund stage runner.
func NewFundStage(store storage.RecordStore, client ChainClient, factory AccountFactory, treasury wallet.Account, target int64, log *logger.Logger) *FundStage {
	if log == nil {
		log = logger.NewDefault("fund")
	}
	return &FundStage{
		store:    store,
		client:   client,
		factory:  factory,
		treasury: treasury,
		target:   target,
		log:      log,
	}
}

// Run processes all provisioned records in insertion order and returns the
// batch size. A record whose balance already reached the target advances
// without a transfer; otherwise the target amount is transferred and the
// advance is left to a later pass observing the credited balance. Returns
// ErrTreasuryUnderfunded when the treasury cannot cover the next record;
// any other error is fatal for the run.
func (s *FundStage) Run(ctx context.Context) (int, error) {
	records, err := s.store.ListByStatus(ctx, fleet.StatusProvisioned)
	if err != nil {
		return 0, fmt.Errorf("list provisioned records: %w", err)
	}
	s.log.Infof("fund stage: %d provisioned records", len(records))

	for _, rec := range records {
		treasuryBalance, err := s.client.GetBalance(ctx, s.treasury.Address)
		if err != nil {
			return len(records), fmt.Errorf("treasury balance: %w", err)
		}
		if treasuryBalance < s.target {
			s.log.WithField("balance", treasuryBalance).
				WithField("target", s.target).
				Warn("treasury underfunded, aborting fund batch")
			return len(records), ErrTreasuryUnderfunded
		}

		acct, err := s.factory.Derive(rec.Secret)
		if err != nil {
			return len(records), fmt.Errorf("derive account %s: %w", rec.Address, err)
		}

		balance, err := s.client.GetBalance(ctx, acct.Address)
		if err != nil {
			return len(records), fmt.Errorf("balance of %s: %w", acct.Address, err)
		}

		if balance >= s.target {
			if err := s.store.UpdateStatus(ctx, rec.Address, fleet.StatusFunded); err != nil {
				return len(records), fmt.Errorf("advance %s to funded: %w", rec.Address, err)
			}
			metrics.RecordTransition(fleet.StatusFunded.String())
			s.log.WithField("address", rec.Address).Info("record funded")
			continue
		}

		if _, err := s.client.Transfer(ctx, s.treasury, rec.Address, s.target); err != nil {
			return len(records), fmt.Errorf("fund transfer to %s: %w", rec.Address, err)
		}
		metrics.RecordTransfer("fund")
		s.log.WithField("address", rec.Address).
			WithField("amount", s.target).
			Info("funding transfer submitted")
	}
	return len(records), nil
}
