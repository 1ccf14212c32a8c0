package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("STRIPE_PRICE_ID_PRO_MONTHLY", "price_123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 3001 {
		t.Errorf("Expected default port 3001, got %d", cfg.Port)
	}
	if cfg.FrontendURL == "" {
		t.Error("Expected default frontend URL")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []string{
		"STRIPE_SECRET_KEY",
		"STRIPE_WEBHOOK_SECRET",
		"STRIPE_PRICE_ID_PRO_MONTHLY",
	}

	for _, missing := range tests {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			if _, err := Load(); err == nil {
				t.Errorf("Expected Load to fail without %s", missing)
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.FrontendURL != "https://app.example.com" {
		t.Errorf("Unexpected frontend URL: %s", cfg.FrontendURL)
	}
}

func TestRedirectURLs(t *testing.T) {
	cfg := &Config{FrontendURL: "https://app.example.com"}

	want := "https://app.example.com/billing/success?session_id={CHECKOUT_SESSION_ID}"
	if got := cfg.SuccessURL(); got != want {
		t.Errorf("SuccessURL mismatch: got %s", got)
	}
	if got := cfg.CancelURL(); got != "https://app.example.com/billing/cancel" {
		t.Errorf("CancelURL mismatch: got %s", got)
	}
}
