package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/crickex/ledger/internal/adapter/http"
	"github.com/crickex/ledger/internal/adapter/http/handler"
	"github.com/crickex/ledger/internal/adapter/pricecache"
	"github.com/crickex/ledger/internal/adapter/repository/cached"
	postgresRepo "github.com/crickex/ledger/internal/adapter/repository/postgres"
	"github.com/crickex/ledger/internal/infrastructure/config"
	"github.com/crickex/ledger/internal/infrastructure/eventsink"
	"github.com/crickex/ledger/internal/infrastructure/logger"
	"github.com/crickex/ledger/internal/infrastructure/metrics"
	"github.com/crickex/ledger/internal/infrastructure/postgres"
	"github.com/crickex/ledger/internal/infrastructure/redis"
	"github.com/crickex/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Durable stores with an in-memory tier in front; the settlement path
	// reads open positions straight from the durable store.
	retrier := postgresRepo.NewRetrier(log)
	positionRepo := postgresRepo.NewPositionRepository(pool, retrier)
	accountStore := cached.NewAccountStore(postgresRepo.NewAccountRepository(pool, retrier), log)
	positionStore := cached.NewPositionStore(positionRepo, log)
	transactionStore := postgresRepo.NewTransactionRepository(pool, retrier)
	settlementStore := postgresRepo.NewSettlementRepository(pool, retrier)

	if markets, err := positionRepo.OpenMarkets(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to enumerate open markets, starting with a cold cache")
	} else {
		for _, marketKey := range markets {
			if err := positionStore.Warm(ctx, marketKey); err != nil {
				log.Warn().Err(err).Str("market_key", marketKey).Msg("cache warm failed")
			}
		}
		log.Info().Int("markets", len(markets)).Msg("position cache warmed")
	}

	prices := pricecache.NewRedisSource(redisClient, cfg.PriceKeyPrefix, cfg.PriceReadTimeout)
	sink := eventsink.NewRedisSink(redisClient, cfg.EventChannel)
	idGen := postgresRepo.NewULIDGenerator()
	locks := usecase.NewUserLocks()

	ledgerUC := usecase.NewLedgerUseCase(accountStore, transactionStore, locks, sink, idGen, m, log, cfg.WelcomeCredit)
	tradingUC := usecase.NewTradingUseCase(ledgerUC, positionStore, prices, locks, sink, idGen, m, log)
	settlementUC := usecase.NewSettlementUseCase(ledgerUC, positionStore, settlementStore, locks, sink, m, log)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TradeHandler:      handler.NewTradeHandler(tradingUC),
		AccountHandler:    handler.NewAccountHandler(ledgerUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		Metrics:           m,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
