package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/detoxsabeho/orders-backend/api/routes"
	authsvc "github.com/detoxsabeho/orders-backend/internal/auth"
	"github.com/detoxsabeho/orders-backend/internal/mailer"
	"github.com/detoxsabeho/orders-backend/internal/notify"
	"github.com/detoxsabeho/orders-backend/internal/orders"
	"github.com/detoxsabeho/orders-backend/internal/pixel"
	"github.com/detoxsabeho/orders-backend/internal/ratelimit"
	"github.com/detoxsabeho/orders-backend/pkg/auth/session"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
	"github.com/detoxsabeho/orders-backend/pkg/redis"
)

const backgroundTaskTimeout = 30 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := orders.NewStore(cfg.Storage.OrdersFile, cfg.Storage.Timezone, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open order ledger", err)
		os.Exit(1)
	}

	submitLimit, err := ratelimit.NewLimiter(cfg.Storage.RateLimitFile, cfg.SubmitLimit.MaxRequests, cfg.SubmitLimit.Window, logg)
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(cfg.JWT, cfg.Admin, sessionManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	var mailService mailer.Service
	if cfg.Email.ResendAPIKey != "" {
		mailService, err = mailer.NewService(cfg.Email, cfg.Admin, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create mail service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "resend api key not set, order emails disabled")
	}

	var pixelService pixel.Service
	if cfg.Facebook.Enabled() {
		pixelService, err = pixel.NewService(cfg.Facebook, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create pixel service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "facebook pixel not configured, conversion forwarding disabled")
	}

	dispatcher, err := notify.NewDispatcher(backgroundTaskTimeout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		Store:        store,
		SubmitLimit:  submitLimit,
		Redis:        redisClient,
		Sessions:     sessionManager,
		AuthService:  authService,
		MailService:  mailService,
		PixelService: pixelService,
		Dispatcher:   dispatcher,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		// Let in-flight confirmation emails finish before the process exits.
		dispatcher.Wait()
	}

	logg.Info(ctx, "api server stopped")
}
