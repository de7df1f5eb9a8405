package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/damilare/otc-exchange/internal/api"
	"github.com/damilare/otc-exchange/internal/api/middleware"
	"github.com/damilare/otc-exchange/internal/config"
	"github.com/damilare/otc-exchange/internal/db"
	"github.com/damilare/otc-exchange/internal/directory"
	"github.com/damilare/otc-exchange/internal/filestore"
	"github.com/damilare/otc-exchange/internal/idempotency"
	"github.com/damilare/otc-exchange/internal/observability"
	"github.com/damilare/otc-exchange/internal/quotestore"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/damilare/otc-exchange/internal/service"
	"github.com/damilare/otc-exchange/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run bootstraps the HTTP server and background workers, blocking until
// shutdown. Storage backends are picked from config: postgres and redis
// when URLs are set, in-memory otherwise.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pool *pgxpool.Pool
	var catalogRepo repository.Catalog
	var orderRepo repository.Orders
	if cfg.DatabaseURL != "" {
		pool, err = db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		store := repository.NewPostgresStore(pool)
		catalogRepo, orderRepo = store, store
		logger.Info("storage backend: postgres")
	} else {
		store := repository.NewMemoryStore()
		catalogRepo, orderRepo = store, store
		logger.Info("storage backend: memory")
		if cfg.SeedDemoData {
			if err := repository.Seed(ctx, store); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			logger.Info("demo catalog seeded")
		}
	}

	var redisClient *redis.Client
	var quoteStore quotestore.Store
	if cfg.RedisURL != "" {
		redisClient, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		quoteStore = quotestore.NewRedisStore(redisClient)
		logger.Info("quote backend: redis")
	} else {
		quoteStore = quotestore.NewMemoryStore()
		logger.Info("quote backend: memory")
	}

	var redisCmdable redis.Cmdable
	if redisClient != nil {
		redisCmdable = redisClient
	}
	idemStore := idempotency.NewStore(redisCmdable, cfg.IdempotencyTTL)

	userDirectory := directory.NewMockDirectory()
	proofStore := filestore.NewMockStore()

	catalogSvc := service.NewCatalogService(catalogRepo, orderRepo)
	pricingSvc := service.NewPricingService(catalogSvc, nil)
	quoteSvc := service.NewQuoteService(pricingSvc, quoteStore, cfg.QuoteTTL, nil)
	walletResolver := service.NewWalletResolver(catalogRepo)
	validator := service.NewValidator(catalogSvc, walletResolver, userDirectory)
	orderSvc := service.NewOrderService(orderRepo, catalogSvc, pricingSvc, quoteSvc, validator, proofStore, cfg.FeePct, nil)
	statsSvc := service.NewStatsService(orderRepo, userDirectory)
	priceFeed := service.NewPriceFeed(catalogSvc, nil)

	expiryWorker := worker.NewExpiryWorker(orderSvc).
		WithPollInterval(cfg.ExpirySweepInterval).
		WithMaxAge(cfg.OrderExpiry).
		WithBatchSize(cfg.ExpiryBatchSize)
	stopExpiry := expiryWorker.Run(ctx)
	logger.Info("expiry worker started",
		zap.Duration("interval", cfg.ExpirySweepInterval),
		zap.Duration("max_age", cfg.OrderExpiry),
	)

	priceWorker := worker.NewPriceWorker(priceFeed).
		WithPollInterval(cfg.PriceRefreshInterval)
	stopPrices := priceWorker.Run(ctx)
	logger.Info("price worker started", zap.Duration("interval", cfg.PriceRefreshInterval))

	router := api.NewRouter(cfg, logger, api.Deps{
		DB:          pool,
		Redis:       redisCmdable,
		Catalog:     catalogSvc,
		Pricing:     pricingSvc,
		Quotes:      quoteSvc,
		Wallets:     walletResolver,
		Orders:      orderSvc,
		Stats:       statsSvc,
		Feed:        priceFeed,
		Idempotency: idemStore,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping workers")
	stopExpiry()
	stopPrices()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
