package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/metrics"
	"github.com/R3E-Network/wallet-fleet/internal/storage"
	"github.com/R3E-Network/wallet-fleet/internal/wallet"
	"github.com/R3E-Network/wallet-fleet/pkg/logger"
)

// Config tunes the orchestrator. Amounts are in 1e-8 native units.
type Config struct {
	FundingTarget     int64
	ReserveFloor      int64
	ProvisionBatch    int
	RefundConcurrency int

	FeeCeilingFiat decimal.Decimal
	FiatRate       decimal.Decimal

	BalanceBackoff time.Duration
	FeeBackoff     time.Duration
	StagePause     time.Duration
	IdlePause      time.Duration

	// AirdropMode selects the reserved drain pipeline, which currently
	// does nothing.
	AirdropMode bool
}

func (c *Config) normalize() {
	if c.ProvisionBatch <= 0 {
		c.ProvisionBatch = 5
	}
	if c.StagePause <= 0 {
		c.StagePause = 5 * time.Second
	}
	if c.IdlePause <= 0 {
		c.IdlePause = 5 * time.Second
	}
}

// Orchestrator owns the outer processing loop: gate, then the fund,
// activate and refund stages in fixed order, then provisioning of new
// accounts when the pass was fully eligible.
type Orchestrator struct {
	store    storage.RecordStore
	client   ChainClient
	factory  AccountFactory
	treasury wallet.Account
	gate     *GateChecker
	fund     *FundStage
	activate *ActivateStage
	refund   *RefundStage
	cfg      Config
	log      *logger.Logger
}

// New wires the orchestrator. The treasury account is derived once from the
// supplied secret; its balance and activation state are queried fresh on
// every pass.
func New(store storage.RecordStore, client ChainClient, factory AccountFactory, treasurySecret string, cfg Config, log *logger.Logger) (*Orchestrator, error) {
	if log == nil {
		log = logger.NewDefault("orchestrator")
	}
	cfg.normalize()

	treasury, err := factory.Derive(treasurySecret)
	if err != nil {
		return nil, fmt.Errorf("derive treasury account: %w", err)
	}

	return &Orchestrator{
		store:    store,
		client:   client,
		factory:  factory,
		treasury: treasury,
		gate:     NewGateChecker(client, cfg.FeeCeilingFiat, cfg.FiatRate, cfg.BalanceBackoff, cfg.FeeBackoff, log.WithField("stage", "gate")),
		fund:     NewFundStage(store, client, factory, treasury, cfg.FundingTarget, log.WithField("stage", "fund")),
		activate: NewActivateStage(store, client, factory, log.WithField("stage", "activate")),
		refund:   NewRefundStage(store, client, factory, treasury.Address, cfg.ReserveFloor, cfg.RefundConcurrency, log.WithField("stage", "refund")),
		cfg:      cfg,
		log:      log,
	}, nil
}

// TreasuryAddress returns the derived treasury address.
func (o *Orchestrator) TreasuryAddress() string {
	return o.treasury.Address
}

// Run drives the loop until the context is cancelled or a stage fails
// fatally. Gate closures and treasury underfunding are steady-state
// conditions, not failures; the loop has no natural termination.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.ensureTreasuryActive(ctx); err != nil {
		return err
	}
	o.log.WithField("address", o.treasury.Address).Info("treasury account is active")

	for {
		if err := o.gate.Wait(ctx, o.treasury, o.cfg.FundingTarget); err != nil {
			return err
		}

		if o.cfg.AirdropMode {
			// Drain stages for statuses 3..5 are reserved and not
			// implemented.
			if err := o.pause(ctx, o.cfg.IdlePause); err != nil {
				return err
			}
			continue
		}

		if err := o.runPass(ctx); err != nil {
			return err
		}
	}
}

// runPass executes one full stage sequence. The eligibility flag captured
// when the gate opened is cleared if the fund stage detects underfunding;
// provisioning only happens while it still holds.
func (o *Orchestrator) runPass(ctx context.Context) error {
	eligible := true

	funded, err := o.fund.Run(ctx)
	switch {
	case errors.Is(err, ErrTreasuryUnderfunded):
		eligible = false
	case err != nil:
		return err
	}
	if funded > 0 {
		if err := o.pause(ctx, o.cfg.StagePause); err != nil {
			return err
		}
	}

	activated, err := o.activate.Run(ctx)
	if err != nil {
		return err
	}
	if activated > 0 {
		if err := o.pause(ctx, o.cfg.StagePause); err != nil {
			return err
		}
	}

	if _, err := o.refund.Run(ctx); err != nil {
		return err
	}

	refunded, err := o.store.CountByStatus(ctx, fleet.StatusRefunded)
	if err != nil {
		return fmt.Errorf("count refunded records: %w", err)
	}
	metrics.SetFleetSize(fleet.StatusRefunded.String(), refunded)
	o.log.Infof("%d accounts have completed the lifecycle", refunded)

	if eligible {
		if err := o.provision(ctx); err != nil {
			return err
		}
	}

	if funded == 0 || activated == 0 {
		if err := o.pause(ctx, o.cfg.IdlePause); err != nil {
			return err
		}
	}
	return nil
}

// ensureTreasuryActive registers the treasury's signing key if needed. Runs
// once at startup, with the same probe-then-act idempotence as the
// activate stage.
func (o *Orchestrator) ensureTreasuryActive(ctx context.Context) error {
	active, err := o.client.IsActivated(ctx, o.treasury.Address)
	if err != nil {
		return fmt.Errorf("treasury activation state: %w", err)
	}
	if active {
		return nil
	}
	if err := o.client.Activate(ctx, o.treasury); err != nil {
		return fmt.Errorf("activate treasury: %w", err)
	}
	return nil
}

// provision inserts a batch of freshly generated accounts in status 0.
func (o *Orchestrator) provision(ctx context.Context) error {
	for i := 0; i < o.cfg.ProvisionBatch; i++ {
		seed, secret, address, err := o.factory.Generate()
		if err != nil {
			return fmt.Errorf("generate account: %w", err)
		}
		if _, err := o.store.Insert(ctx, seed, secret, address); err != nil {
			return fmt.Errorf("insert record %s: %w", address, err)
		}
		metrics.RecordTransition(fleet.StatusProvisioned.String())
		o.log.WithField("address", address).Info("provisioned new account")
	}
	return nil
}

func (o *Orchestrator) pause(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
