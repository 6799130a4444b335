package routes

import (
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/phonomorph/phonomorph/internal/auth"
	"github.com/phonomorph/phonomorph/internal/config"
	"github.com/phonomorph/phonomorph/internal/ledger"
	"github.com/phonomorph/phonomorph/internal/logging"
	"github.com/phonomorph/phonomorph/internal/metrics"
	"github.com/phonomorph/phonomorph/internal/middleware"
	"github.com/phonomorph/phonomorph/internal/notification"
	"github.com/phonomorph/phonomorph/internal/payments"
	"github.com/phonomorph/phonomorph/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Chain  *ethclient.Client
	Events notification.Publisher
	Logger *slog.Logger
	// Registry receives the service metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
	// Ledger overrides the gateway built from Chain. Tests and development
	// without a chain use ledger.NewInMemory.
	Ledger ledger.Gateway
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Chain == nil && d.Ledger == nil {
			return fmt.Errorf("chain rpc is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app, d.Registry)

	// Services and handlers
	gateway, err := buildLedger(d)
	if err != nil {
		return err
	}
	walletRepo, err := buildWalletRepository(d)
	if err != nil {
		return err
	}
	var notifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
	if d.Events != nil {
		notifier = notification.NewAMQPNotifier(d.Events, 2*time.Second)
	}
	authority, err := auth.NewAuthority(d.Cfg.JWTSecret, d.Cfg.JWTAudience, d.Cfg.SessionTTL)
	if err != nil {
		return err
	}

	m := metrics.New(d.Registry)
	token := common.HexToAddress(d.Cfg.TokenContract)
	walletSvc := wallet.NewService(walletRepo, gateway, wallet.Options{
		Token:          token,
		StorageTimeout: d.Cfg.StorageTimeout,
		Logger:         d.Logger,
		Metrics:        m,
	})
	paymentSvc := payments.NewService(walletSvc, gateway, notifier, payments.Config{
		Token:         token,
		TokenDecimals: d.Cfg.TokenDecimals,
		MinFeeBalance: d.Cfg.MinFeeBalance,
	}, d.Logger, m)

	walletHandler := wallet.NewHandler(walletSvc, middleware.IdentityFromCtx)
	paymentHandler := payments.NewHandler(paymentSvc, middleware.IdentityFromCtx)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFromCtx(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	if d.Cfg.IsDev() {
		RegisterAuthRoutes(api, auth.NewHandler(authority))
	}

	// Protected routes
	protected := api.Group("", middleware.Session(authority), middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	protected.Get("/me", func(c *fiber.Ctx) error {
		phone, err := middleware.IdentityFromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"phone": phone.String()})
	})
	RegisterWalletRoutes(protected, walletHandler)
	transferLimit := middleware.IdentityRateLimit(d.Cache, "transfer", d.Cfg.TransferRatePerMinute, d.Logger)
	RegisterPaymentRoutes(protected, paymentHandler, transferLimit)

	return nil
}

func buildLedger(d Deps) (ledger.Gateway, error) {
	if d.Ledger != nil {
		return d.Ledger, nil
	}
	if d.Chain == nil {
		d.Logger.Warn("no chain rpc configured, using in-memory ledger")
		return ledger.NewInMemory(), nil
	}
	return ledger.NewEthereumGateway(d.Chain, ledger.EthereumConfig{
		ChainID:       big.NewInt(d.Cfg.ChainID),
		TokenDecimals: d.Cfg.TokenDecimals,
		CallTimeout:   d.Cfg.ChainTimeout,
	})
}

func buildWalletRepository(d Deps) (wallet.Repository, error) {
	if d.DB == nil {
		return wallet.NewMemoryRepository(), nil
	}
	if len(d.Cfg.SealingKey) == 0 {
		return nil, fmt.Errorf("SECRET_SEALING_KEY must be set when a database is configured")
	}
	sealer, err := wallet.NewSealer(d.Cfg.SealingKey)
	if err != nil {
		return nil, fmt.Errorf("build sealer: %w", err)
	}
	return wallet.NewPostgresRepository(d.DB, sealer), nil
}
