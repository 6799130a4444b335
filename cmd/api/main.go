package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/phonomorph/phonomorph/internal/config"
	"github.com/phonomorph/phonomorph/internal/infra"
	"github.com/phonomorph/phonomorph/internal/logging"
	"github.com/phonomorph/phonomorph/internal/notification"
	"github.com/phonomorph/phonomorph/internal/routes"
	"github.com/phonomorph/phonomorph/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ChainTimeout+cfg.StorageTimeout)
	defer cancel()

	deps := routes.Deps{Cfg: cfg, Logger: logger}

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.StorageTimeout)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := infra.Migrate(ctx, db); err != nil {
			logger.Error("migrate postgres", "error", err)
			os.Exit(1)
		}
		deps.DB = db
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL, 2*time.Second)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	}

	var chain *ethclient.Client
	if cfg.ChainRPCURL != "" {
		chain, err = infra.NewEthereumClient(ctx, cfg.ChainRPCURL, cfg.ChainID)
		if err != nil {
			if !cfg.IsDev() {
				logger.Error("connect chain rpc", "error", err)
				os.Exit(1)
			}
			logger.Warn("chain rpc unavailable, continuing with in-memory ledger", "error", err)
		} else {
			defer chain.Close()
			deps.Chain = chain
		}
	}

	if cfg.RabbitMQURL != "" {
		mq, err := infra.NewRabbitMQ(cfg.RabbitMQURL, notification.Exchange)
		if err != nil {
			logger.Warn("connect rabbitmq, continuing with log notifications", "error", err)
		} else {
			defer func() {
				if err := mq.Close(); err != nil {
					logger.Warn("close rabbitmq", "error", err)
				}
			}()
			deps.Events = mq.Channel
		}
	}

	srv, err := server.New(deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
