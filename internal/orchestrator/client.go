// Package orchestrator drives fleet accounts through the
// fund -> activate -> refund lifecycle.
package orchestrator

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/wallet-fleet/internal/wallet"
)

// ChainClient is the remote ledger surface consumed by the gate and stages.
// internal/chain.Client implements it against the gateway RPC.
type ChainClient interface {
	// GetBalance returns the confirmed balance of an address in 1e-8
	// native units.
	GetBalance(ctx context.Context, address string) (int64, error)
	// Transfer submits a transfer and returns a transaction id without
	// waiting for confirmation.
	Transfer(ctx context.Context, from wallet.Account, to string, amount int64) (string, error)
	// IsActivated reports whether the address has a signing key registered.
	IsActivated(ctx context.Context, address string) (bool, error)
	// Activate registers the account's signing key on-chain.
	Activate(ctx context.Context, acct wallet.Account) error
	// ActivationFee returns the current key-registration fee in 1e-8
	// native units.
	ActivationFee(ctx context.Context) (int64, error)
	// Price returns the current USD quote for the token.
	Price(ctx context.Context, token string) (decimal.Decimal, error)
}

// AccountFactory derives account handles from secrets and generates fresh
// key material for provisioning.
type AccountFactory interface {
	Derive(secret string) (wallet.Account, error)
	Generate() (seed, secret, address string, err error)
}

// NativeToken is the ledger token the fleet operates in.
const NativeToken = "GAS"
