package orchestrator

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/wallet-fleet/internal/wallet"
)

// fakeChain is an in-memory ChainClient that applies transfers to its
// balance table and counts remote submissions, so tests can assert
// idempotence and exact amounts.
type fakeChain struct {
	mu        sync.Mutex
	balances  map[string]int64
	activated map[string]bool
	fee       int64
	price     decimal.Decimal

	transferCalls int
	activateCalls int
	transfers     []fakeTransfer

	transferErrFor map[string]error // keyed by either endpoint address
	activateErr    error
}

type fakeTransfer struct {
	from, to string
	amount   int64
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balances:       make(map[string]int64),
		activated:      make(map[string]bool),
		fee:            100000, // 0.001 native
		price:          decimal.NewFromInt(2000),
		transferErrFor: make(map[string]error),
	}
}

func (f *fakeChain) GetBalance(ctx context.Context, address string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[address], nil
}

func (f *fakeChain) Transfer(ctx context.Context, from wallet.Account, to string, amount int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transferCalls++
	if err := f.transferErrFor[to]; err != nil {
		return "", err
	}
	if err := f.transferErrFor[from.Address]; err != nil {
		return "", err
	}
	f.balances[from.Address] -= amount
	f.balances[to] += amount
	f.transfers = append(f.transfers, fakeTransfer{from: from.Address, to: to, amount: amount})
	return "0xfake", nil
}

func (f *fakeChain) IsActivated(ctx context.Context, address string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activated[address], nil
}

func (f *fakeChain) Activate(ctx context.Context, acct wallet.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activateCalls++
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated[acct.Address] = true
	return nil
}

func (f *fakeChain) ActivationFee(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fee, nil
}

func (f *fakeChain) Price(ctx context.Context, token string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price, nil
}

func (f *fakeChain) setBalance(address string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[address] = amount
}

func (f *fakeChain) setActivated(address string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated[address] = active
}

func (f *fakeChain) transferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transferCalls
}

func (f *fakeChain) activateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activateCalls
}

var _ ChainClient = (*fakeChain)(nil)

// testFactory uses real key derivation; it is pure computation with no I/O.
type testFactory = wallet.Factory
