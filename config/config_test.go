package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/bookings?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "webhooks-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "WEBHOOKS_NOTIFY_TIMEOUT_SECONDS", "9")
	setEnv(t, "JAZZCASH_INTEGRITY_SALT", "salt123")
	setEnv(t, "STRIPE_SIGNATURE_TOLERANCE_SECONDS", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "webhooks-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Webhooks.NotifyTimeout != 9*time.Second {
		t.Fatalf("unexpected notify timeout: %v", cfg.Webhooks.NotifyTimeout)
	}
	if cfg.JazzCash.IntegritySalt != "salt123" {
		t.Fatalf("unexpected jazzcash salt: %s", cfg.JazzCash.IntegritySalt)
	}
	if cfg.Stripe.SignatureToleranceSeconds != 120 {
		t.Fatalf("unexpected stripe tolerance: %d", cfg.Stripe.SignatureToleranceSeconds)
	}
	if cfg.AMQP.Exchange != "notifications" {
		t.Fatalf("unexpected amqp exchange: %s", cfg.AMQP.Exchange)
	}
}

func TestLoadMockVerificationFlag(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/bookings?parseTime=true")
	unsetEnv(t, "WEBHOOKS_ALLOW_MOCK_VERIFICATION")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Webhooks.AllowMockVerification {
		t.Fatal("mock verification must default to disabled")
	}

	setEnv(t, "WEBHOOKS_ALLOW_MOCK_VERIFICATION", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Webhooks.AllowMockVerification {
		t.Fatal("expected mock verification to be enabled")
	}
}
