package orchestrator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/wallet-fleet/internal/metrics"
	"github.com/R3E-Network/wallet-fleet/internal/wallet"
	"github.com/R3E-Network/wallet-fleet/pkg/logger"
)

// nativeUnit converts 1e-8 integer amounts to whole native units.
var nativeUnit = decimal.New(1, 8)

// GateChecker evaluates the global go/no-go condition before a processing
// pass: the treasury holds enough balance and the current activation fee,
// converted to fiat, is under the configured ceiling. Results are never
// cached; balance and fee float continuously.
type GateChecker struct {
	client ChainClient
	log    *logger.Logger

	feeCeilingFiat decimal.Decimal
	fiatRate       decimal.Decimal
	balanceBackoff time.Duration
	feeBackoff     time.Duration
}

// NewGateChecker creates a gate checker. Zero backoffs default to the
// 10s/30s intervals the daemon was tuned with.
func NewGateChecker(client ChainClient, feeCeilingFiat, fiatRate decimal.Decimal, balanceBackoff, feeBackoff time.Duration, log *logger.Logger) *GateChecker {
	if log == nil {
		log = logger.NewDefault("gate")
	}
	if balanceBackoff <= 0 {
		balanceBackoff = 10 * time.Second
	}
	if feeBackoff <= 0 {
		feeBackoff = 30 * time.Second
	}
	return &GateChecker{
		client:         client,
		log:            log,
		feeCeilingFiat: feeCeilingFiat,
		fiatRate:       fiatRate,
		balanceBackoff: balanceBackoff,
		feeBackoff:     feeBackoff,
	}
}

// GateResult is one gate evaluation. The fee check is skipped when the
// balance check already failed, so FeeOK is only meaningful when BalanceOK.
type GateResult struct {
	BalanceOK bool
	FeeOK     bool
}

// Ready reports whether both checks passed in the same evaluation.
func (r GateResult) Ready() bool {
	return r.BalanceOK && r.FeeOK
}

// Check performs a single gate evaluation. A closed gate is not an error;
// errors are remote-call failures only.
func (g *GateChecker) Check(ctx context.Context, treasury wallet.Account, minBalance int64) (GateResult, error) {
	var res GateResult

	balance, err := g.client.GetBalance(ctx, treasury.Address)
	if err != nil {
		return res, err
	}
	if balance < minBalance {
		g.log.WithField("address", treasury.Address).
			WithField("balance", balance).
			WithField("min", minBalance).
			Warn("treasury balance below threshold")
		return res, nil
	}
	res.BalanceOK = true

	fee, err := g.client.ActivationFee(ctx)
	if err != nil {
		return res, err
	}
	price, err := g.client.Price(ctx, NativeToken)
	if err != nil {
		return res, err
	}

	feeNative := decimal.New(fee, 0).Div(nativeUnit)
	feeFiat := price.Mul(g.fiatRate).Mul(feeNative)
	res.FeeOK = feeFiat.LessThan(g.feeCeilingFiat)

	if res.FeeOK {
		g.log.Infof("%s * %s * %s < %s", price, g.fiatRate, feeNative, g.feeCeilingFiat)
	} else {
		g.log.Infof("%s * %s * %s > %s", price, g.fiatRate, feeNative, g.feeCeilingFiat)
	}
	return res, nil
}

// Wait blocks until the gate opens, backing off between evaluations. It
// returns early on remote-call failure or context cancellation.
func (g *GateChecker) Wait(ctx context.Context, treasury wallet.Account, minBalance int64) error {
	for {
		res, err := g.Check(ctx, treasury, minBalance)
		if err != nil {
			return err
		}
		if res.Ready() {
			return nil
		}

		backoff := g.feeBackoff
		if !res.BalanceOK {
			backoff = g.balanceBackoff
			metrics.RecordGateWait("balance")
			g.log.Warnf("not sufficient treasury balance, wait %s", backoff)
		} else {
			metrics.RecordGateWait("fee")
			g.log.Warnf("fee is too high, wait %s", backoff)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
