package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != 2810 {
		t.Fatalf("expected chain id 2810, got %d", cfg.ChainID)
	}
	if cfg.TokenDecimals != 18 {
		t.Fatalf("expected 18 decimals, got %d", cfg.TokenDecimals)
	}
	if cfg.MinFeeBalance.String() != "0.001" {
		t.Fatalf("unexpected min fee balance %s", cfg.MinFeeBalance)
	}
	if cfg.ChainTimeout != 15*time.Second {
		t.Fatalf("unexpected chain timeout %s", cfg.ChainTimeout)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestFromEnvRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestFromEnvProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/phonomorph")
	t.Setenv("REDIS_URL", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without REDIS_URL in production")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without SECRET_SEALING_KEY in production")
	}

	t.Setenv("SECRET_SEALING_KEY", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.SealingKey) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(cfg.SealingKey))
	}
}

func TestFromEnvDatabaseRequiresSealingKeyInDev(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/phonomorph")
	t.Setenv("SECRET_SEALING_KEY", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error with DATABASE_URL but no SECRET_SEALING_KEY")
	}

	t.Setenv("SECRET_SEALING_KEY", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestFromEnvDurationOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CHAIN_TIMEOUT_SECONDS", "3")
	t.Setenv("STORAGE_TIMEOUT", "750ms")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainTimeout != 3*time.Second {
		t.Fatalf("expected 3s chain timeout, got %s", cfg.ChainTimeout)
	}
	if cfg.StorageTimeout != 750*time.Millisecond {
		t.Fatalf("expected 750ms storage timeout, got %s", cfg.StorageTimeout)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"MIN_FEE_BALANCE":    "-1",
		"TOKEN_DECIMALS":     "abc",
		"CHAIN_ID":           "0",
		"SECRET_SEALING_KEY": "abcd",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
