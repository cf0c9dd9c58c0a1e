package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fueldesk/fueldesk/internal/app"
	"github.com/fueldesk/fueldesk/internal/distribution"
	"github.com/fueldesk/fueldesk/internal/masterdata/branches"
	"github.com/fueldesk/fueldesk/internal/observability"
	"github.com/fueldesk/fueldesk/internal/platform/cache"
	"github.com/fueldesk/fueldesk/internal/platform/db"
	"github.com/fueldesk/fueldesk/internal/pumpsale"
	"github.com/fueldesk/fueldesk/internal/shared"
	"github.com/fueldesk/fueldesk/internal/transport"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Redis is best-effort: locks and the remainder cache degrade gracefully
	// when it is unavailable.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, per-order locks and remainder cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	approvalRecorder := shared.NewApprovalRecorder(pool, logger)
	orderLocks := shared.NewRedisLock(redisClient, cfg.OrderLockTTL)
	remainderCache := distribution.NewRemainderCache(redisClient, cfg.RemainderCacheTTL)

	branchRepo := branches.NewRepository(pool)
	branchService := branches.NewService(branchRepo)
	branchHandler := branches.NewHandler(logger, branchService)

	saleRepo := pumpsale.NewRepository(pool)
	saleService := pumpsale.NewService(saleRepo, remainderCache, auditLogger)
	saleHandler := pumpsale.NewHandler(logger, saleService)

	transportRepo := transport.NewRepository(pool)
	transportResolver := transport.NewResolver(transportRepo)
	transportHandler := transport.NewHandler(logger, transportRepo)

	distributionRepo := distribution.NewRepository(pool)
	distributionService := distribution.NewService(
		distributionRepo,
		branchService,
		pumpsale.NewResaleSource(saleRepo),
		orderLocks,
		remainderCache,
		approvalRecorder,
		auditLogger,
	)
	distributionHandler := distribution.NewHandler(logger, distributionService, transportResolver)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		BranchesHandler:     branchHandler,
		DistributionHandler: distributionHandler,
		PumpSaleHandler:     saleHandler,
		TransportHandler:    transportHandler,
		Pool:                pool,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
