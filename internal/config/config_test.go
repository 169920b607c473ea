package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLEET_TREASURY_SECRET", "aaaa")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.FundingTarget != 30000000 {
		t.Fatalf("expected default funding target 30000000, got %d", cfg.FundingTarget)
	}
	if cfg.ReserveFloor != 7000000 {
		t.Fatalf("expected default reserve floor 7000000, got %d", cfg.ReserveFloor)
	}
	if cfg.ProvisionBatch != 5 {
		t.Fatalf("expected default batch 5, got %d", cfg.ProvisionBatch)
	}
	if cfg.BalanceBackoff != 10*time.Second || cfg.FeeBackoff != 30*time.Second {
		t.Fatalf("unexpected backoffs: %v / %v", cfg.BalanceBackoff, cfg.FeeBackoff)
	}
	if cfg.FeeCeilingFiat.String() != "40" {
		t.Fatalf("expected fee ceiling 40, got %s", cfg.FeeCeilingFiat)
	}
	if cfg.FiatRate.String() != "6.5" {
		t.Fatalf("expected fiat rate 6.5, got %s", cfg.FiatRate)
	}
	if cfg.AirdropMode {
		t.Fatal("airdrop mode should default off")
	}
}

func TestLoadRequiresTreasurySecret(t *testing.T) {
	t.Setenv("FLEET_TREASURY_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without treasury secret")
	}
}

func TestValidateRejectsBadFiat(t *testing.T) {
	cfg := Config{
		TreasurySecret:    "aaaa",
		FundingTarget:     1,
		FeeCeilingFiatRaw: "not-a-number",
		FiatRateRaw:       "6.5",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateOverrides(t *testing.T) {
	t.Setenv("FLEET_TREASURY_SECRET", "aaaa")
	t.Setenv("FLEET_FUNDING_TARGET", "1000")
	t.Setenv("FLEET_FEE_CEILING_FIAT", "12.5")
	t.Setenv("FLEET_AIRDROP_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FundingTarget != 1000 {
		t.Fatalf("override not applied: %d", cfg.FundingTarget)
	}
	if cfg.FeeCeilingFiat.String() != "12.5" {
		t.Fatalf("override not applied: %s", cfg.FeeCeilingFiat)
	}
	if !cfg.AirdropMode {
		t.Fatal("airdrop mode override not applied")
	}
}
