package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultAppName        = "Phonomorph"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultChainTimeout   = 15 * time.Second
	defaultStorageTimeout = 5 * time.Second
	defaultSessionTTL     = 30 * 24 * time.Hour
	defaultChainRPCURL    = "https://rpc-quicknode-holesky.morphl2.io"
	defaultChainID        = 2810
	defaultTokenContract  = "0x9E12AD42c4E4d2acFBADE01a96446e48e6764B98"
	defaultTokenDecimals  = 18
	defaultMinFeeBalance  = "0.001"
	defaultJWTAudience    = "https://phonemorph.com"
	defaultTransferRate   = 10
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	Env            string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	RabbitMQURL    string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	ChainRPCURL    string
	ChainID        int64
	TokenContract  string
	TokenDecimals  int32
	MinFeeBalance  decimal.Decimal
	ChainTimeout   time.Duration
	StorageTimeout time.Duration

	JWTSecret   string
	JWTAudience string
	SessionTTL  time.Duration

	// SealingKey is the 32-byte key protecting wallet secrets at rest.
	SealingKey []byte

	TransferRatePerMinute int
}

// Load reads configuration values from the environment (and an optional .env
// file) and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:               getEnv("APP_NAME", defaultAppName),
		Env:                   strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:                  getEnv("PORT", defaultPort),
		LogLevel:              strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		RabbitMQURL:           os.Getenv("RABBITMQ_URL"),
		ChainRPCURL:           getEnv("CHAIN_RPC_URL", defaultChainRPCURL),
		TokenContract:         getEnv("TOKEN_CONTRACT", defaultTokenContract),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTAudience:           getEnv("JWT_AUDIENCE", defaultJWTAudience),
		ChainID:               defaultChainID,
		TokenDecimals:         defaultTokenDecimals,
		TransferRatePerMinute: defaultTransferRate,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ChainTimeout, err = durationEnv("CHAIN_TIMEOUT", defaultChainTimeout); err != nil {
		return Config{}, err
	}
	if cfg.StorageTimeout, err = durationEnv("STORAGE_TIMEOUT", defaultStorageTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return Config{}, fmt.Errorf("invalid CHAIN_ID: %q", v)
		}
		cfg.ChainID = id
	}
	if v := os.Getenv("TOKEN_DECIMALS"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 || d > 36 {
			return Config{}, fmt.Errorf("invalid TOKEN_DECIMALS: %q", v)
		}
		cfg.TokenDecimals = int32(d)
	}
	if v := os.Getenv("TRANSFER_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TRANSFER_RATE_PER_MIN: %w", err)
		}
		cfg.TransferRatePerMinute = n
	}

	minFee, err := decimal.NewFromString(getEnv("MIN_FEE_BALANCE", defaultMinFeeBalance))
	if err != nil || minFee.IsNegative() {
		return Config{}, fmt.Errorf("invalid MIN_FEE_BALANCE")
	}
	cfg.MinFeeBalance = minFee

	if v := os.Getenv("SECRET_SEALING_KEY"); v != "" {
		key, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
		if err != nil || len(key) != 32 {
			return Config{}, fmt.Errorf("SECRET_SEALING_KEY must be 32 bytes of hex")
		}
		cfg.SealingKey = key
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	// Secrets sealed with a throwaway key are lost on restart.
	if cfg.DatabaseURL != "" && cfg.SealingKey == nil {
		return Config{}, fmt.Errorf("SECRET_SEALING_KEY must be set when DATABASE_URL is set")
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.Env)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.Env)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in a local/development environment.
func (c Config) IsDev() bool {
	switch c.Env {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads KEY_SECONDS (integer) first, then KEY (Go duration).
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	secondsKey := key + "_SECONDS"
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}
