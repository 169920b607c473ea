package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/metrics"
	"github.com/R3E-Network/wallet-fleet/internal/storage"
	"github.com/R3E-Network/wallet-fleet/pkg/logger"
)

// RefundStage sweeps activated records' balances above the reserve floor
// back to the treasury and advances them to refunded. Records are
// independent, so the stage fans out with bounded concurrency; one record's
// failure never blocks the others.
type RefundStage struct {
	store           storage.RecordStore
	client          ChainClient
	factory         AccountFactory
	treasuryAddress string
	reserve         int64
	concurrency     int
	log             *logger.Logger
}

// NewRefundStage creates the refund stage runner.
func NewRefundStage(store storage.RecordStore, client ChainClient, factory AccountFactory, treasuryAddress string, reserve int64, concurrency int, log *logger.Logger) *RefundStage {
	if log == nil {
		log = logger.NewDefault("refund")
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &RefundStage{
		store:           store,
		client:          client,
		factory:         factory,
		treasuryAddress: treasuryAddress,
		reserve:         reserve,
		concurrency:     concurrency,
		log:             log,
	}
}

// Run processes all activated records concurrently and joins before
// returning. Per-record failures are logged individually and folded into a
// single error after the whole batch has finished; successful siblings keep
// their status advance.
func (s *RefundStage) Run(ctx context.Context) (int, error) {
	records, err := s.store.ListByStatus(ctx, fleet.StatusActivated)
	if err != nil {
		return 0, fmt.Errorf("list activated records: %w", err)
	}
	s.log.Infof("refund stage: %d activated records", len(records))

	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures []error
	)
	g.SetLimit(s.concurrency)

	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			if err := s.refundOne(ctx, rec); err != nil {
				metrics.RecordRefundFailure()
				s.log.WithError(err).WithField("address", rec.Address).Error("refund failed")
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", rec.Address, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return len(records), fmt.Errorf("%d of %d refunds failed: %w", len(failures), len(records), errors.Join(failures...))
	}
	return len(records), nil
}

// refundOne sweeps a single record. A balance at or below the reserve floor
// is not an error; the record stays eligible for a future pass.
func (s *RefundStage) refundOne(ctx context.Context, rec fleet.Record) error {
	acct, err := s.factory.Derive(rec.Secret)
	if err != nil {
		return fmt.Errorf("derive account: %w", err)
	}

	balance, err := s.client.GetBalance(ctx, acct.Address)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	if balance <= s.reserve {
		s.log.WithField("address", rec.Address).
			WithField("balance", balance).
			Debug("balance at or below reserve, skipping refund")
		return nil
	}

	amount := balance - s.reserve
	if _, err := s.client.Transfer(ctx, acct, s.treasuryAddress, amount); err != nil {
		return fmt.Errorf("refund transfer: %w", err)
	}
	metrics.RecordTransfer("refund")

	if err := s.store.UpdateStatus(ctx, rec.Address, fleet.StatusRefunded); err != nil {
		return fmt.Errorf("advance to refunded: %w", err)
	}
	metrics.RecordTransition(fleet.StatusRefunded.String())
	s.log.WithField("address", rec.Address).
		WithField("amount", amount).
		Info("record refunded")
	return nil
}
