// Package main implements fleetd, the wallet fleet lifecycle daemon. It
// drives derived accounts through funding, signing-key activation and
// refund against the ledger gateway, gated on treasury balance and the
// fiat cost of activation.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/R3E-Network/wallet-fleet/internal/chain"
	"github.com/R3E-Network/wallet-fleet/internal/config"
	"github.com/R3E-Network/wallet-fleet/internal/metrics"
	"github.com/R3E-Network/wallet-fleet/internal/orchestrator"
	"github.com/R3E-Network/wallet-fleet/internal/platform/migrations"
	"github.com/R3E-Network/wallet-fleet/internal/storage/postgres"
	"github.com/R3E-Network/wallet-fleet/internal/wallet"
	"github.com/R3E-Network/wallet-fleet/pkg/logger"
)

var _ orchestrator.ChainClient = (*chain.Client)(nil)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fleetd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}).WithField("component", "fleetd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("error closing database connection")
		}
	}()

	if err := migrations.Apply(ctx, db.DB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	store := postgres.New(db)

	client, err := chain.NewClient(chain.Config{
		RPCURL:  cfg.GatewayRPCURL,
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}

	orch, err := orchestrator.New(store, client, wallet.Factory{}, cfg.TreasurySecret, orchestrator.Config{
		FundingTarget:     cfg.FundingTarget,
		ReserveFloor:      cfg.ReserveFloor,
		ProvisionBatch:    cfg.ProvisionBatch,
		RefundConcurrency: cfg.RefundConcurrency,
		FeeCeilingFiat:    cfg.FeeCeilingFiat,
		FiatRate:          cfg.FiatRate,
		BalanceBackoff:    cfg.BalanceBackoff,
		FeeBackoff:        cfg.FeeBackoff,
		StagePause:        cfg.StagePause,
		IdlePause:         cfg.IdlePause,
		AirdropMode:       cfg.AirdropMode,
	}, log)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	log.WithField("treasury", orch.TreasuryAddress()).
		WithField("gateway", cfg.GatewayRPCURL).
		Info("starting fleet orchestrator")

	if err := orch.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("shutting down")
			return nil
		}
		return fmt.Errorf("orchestrator: %w", err)
	}
	return nil
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("metrics server stopped")
	}
}
