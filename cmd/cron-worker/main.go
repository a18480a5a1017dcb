package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/detoxsabeho/orders-backend/internal/cron"
	"github.com/detoxsabeho/orders-backend/internal/mailer"
	"github.com/detoxsabeho/orders-backend/internal/orders"
	"github.com/detoxsabeho/orders-backend/internal/ratelimit"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
	"github.com/detoxsabeho/orders-backend/pkg/metrics"
	"github.com/detoxsabeho/orders-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := orders.NewStore(cfg.Storage.OrdersFile, cfg.Storage.Timezone, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open order ledger", err)
		os.Exit(1)
	}

	limiter, err := ratelimit.NewLimiter(cfg.Storage.RateLimitFile, cfg.SubmitLimit.MaxRequests, cfg.SubmitLimit.Window, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open rate limit file", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := cron.NewRegistry()

	if cfg.Email.ResendAPIKey != "" {
		mailService, err := mailer.NewService(cfg.Email, cfg.Admin, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create mail service", err)
			os.Exit(1)
		}
		backupJob, err := cron.NewBackupJob(cron.BackupJobParams{
			Logger: logg,
			Store:  store,
			Mailer: mailService,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create backup job", err)
			os.Exit(1)
		}
		registry.Register(backupJob)
	} else {
		logg.Warn(context.Background(), "resend api key not set, ledger backup job disabled")
	}

	pruneJob, err := cron.NewRateLimitPruneJob(cron.RateLimitPruneJobParams{
		Logger:  logg,
		Limiter: limiter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create prune job", err)
		os.Exit(1)
	}
	registry.Register(pruneJob)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCronJobMetrics(promRegistry)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  collector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Cron.MetricsPort,
		Handler: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(context.Background(), "metrics server stopped unexpectedly", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	if err := metricsServer.Close(); err != nil {
		logg.Error(ctx, "error closing metrics server", err)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}
