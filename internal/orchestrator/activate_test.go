package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/storage/memory"
)

func TestActivateAdvancesAlreadyActiveWithoutCall(t *testing.T) {
	store := memory.New()
	chain := newFakeChain()

	rec := insertRecord(t, store)
	if err := store.UpdateStatus(context.Background(), rec.Address, fleet.StatusFunded); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	chain.setActivated(rec.Address, true)

	stage := NewActivateStage(store, chain, testFactory{}, nil)
	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := recordStatus(t, store, rec.Address); got != fleet.StatusActivated {
		t.Fatalf("expected activated, got %s", got)
	}
	if chain.activateCount() != 0 {
		t.Fatalf("expected no activation call, got %d", chain.activateCount())
	}
}

func TestActivateSubmitsAndDefersAdvance(t *testing.T) {
	store := memory.New()
	chain := newFakeChain()

	rec := insertRecord(t, store)
	if err := store.UpdateStatus(context.Background(), rec.Address, fleet.StatusFunded); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	stage := NewActivateStage(store, chain, testFactory{}, nil)
	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if chain.activateCount() != 1 {
		t.Fatalf("expected one activation call, got %d", chain.activateCount())
	}
	if got := recordStatus(t, store, rec.Address); got != fleet.StatusFunded {
		t.Fatalf("status must not advance on submission, got %s", got)
	}

	// Next pass observes the registered key and advances.
	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := recordStatus(t, store, rec.Address); got != fleet.StatusActivated {
		t.Fatalf("expected activated after observation, got %s", got)
	}
	if chain.activateCount() != 1 {
		t.Fatalf("expected no duplicate activation, got %d", chain.activateCount())
	}
}

func TestActivateFailureIsFatal(t *testing.T) {
	store := memory.New()
	chain := newFakeChain()

	rec := insertRecord(t, store)
	if err := store.UpdateStatus(context.Background(), rec.Address, fleet.StatusFunded); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	boom := errors.New("registration rejected")
	chain.activateErr = boom

	stage := NewActivateStage(store, chain, testFactory{}, nil)
	if _, err := stage.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected fatal activation error, got %v", err)
	}
}
