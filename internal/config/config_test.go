package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH0_DOMAIN", "example.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.example.com")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crediario")
	t.Setenv("AUTH0_DOMAIN", "example.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DefaultPolicy.MaxOverdueInstallments != 3 {
		t.Errorf("Expected default max overdue installments 3, got %d", cfg.DefaultPolicy.MaxOverdueInstallments)
	}
	if !cfg.DefaultPolicy.MaxOverdueFraction.Equal(decimal.NewFromFloat(0.25)) {
		t.Errorf("Expected default max overdue fraction 0.25, got %s", cfg.DefaultPolicy.MaxOverdueFraction.String())
	}
	if !cfg.DefaultPolicy.ReinstateCured {
		t.Error("Expected reinstate cured to default to true")
	}
	if !cfg.LateFeePolicy.DailyRatePercent.Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("Expected default daily late fee 0.1, got %s", cfg.LateFeePolicy.DailyRatePercent.String())
	}
	if !cfg.LateFeePolicy.CapPercent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected default late fee cap 10, got %s", cfg.LateFeePolicy.CapPercent.String())
	}
	if cfg.SweepSchedule != "0 6 * * *" {
		t.Errorf("Expected default sweep schedule, got %s", cfg.SweepSchedule)
	}
}

func TestLoad_PolicyOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crediario")
	t.Setenv("AUTH0_DOMAIN", "example.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.example.com")
	t.Setenv("DEFAULT_MAX_OVERDUE_INSTALLMENTS", "5")
	t.Setenv("DEFAULT_MAX_OVERDUE_FRACTION", "0.5")
	t.Setenv("DEFAULT_REINSTATE_CURED", "false")
	t.Setenv("LATE_FEE_DAILY_PERCENT", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.DefaultPolicy.MaxOverdueInstallments != 5 {
		t.Errorf("Expected max overdue installments 5, got %d", cfg.DefaultPolicy.MaxOverdueInstallments)
	}
	if !cfg.DefaultPolicy.MaxOverdueFraction.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("Expected max overdue fraction 0.5, got %s", cfg.DefaultPolicy.MaxOverdueFraction.String())
	}
	if cfg.DefaultPolicy.ReinstateCured {
		t.Error("Expected reinstate cured false")
	}
	if !cfg.LateFeePolicy.DailyRatePercent.Equal(decimal.NewFromFloat(0.2)) {
		t.Errorf("Expected daily late fee 0.2, got %s", cfg.LateFeePolicy.DailyRatePercent.String())
	}
}

func TestLoad_NegativePolicyRejected(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crediario")
	t.Setenv("AUTH0_DOMAIN", "example.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.example.com")
	t.Setenv("LATE_FEE_DAILY_PERCENT", "-1")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for negative late fee rate")
	}
}
