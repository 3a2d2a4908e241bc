// Package app wires configuration, storage, services, and transport into a
// runnable webhook server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/finbrain/finbrain/internal/adapter/postgres"
	expenserepo "github.com/finbrain/finbrain/internal/adapter/postgres/expense"
	"github.com/finbrain/finbrain/internal/ai"
	"github.com/finbrain/finbrain/internal/config"
	"github.com/finbrain/finbrain/internal/identity"
	"github.com/finbrain/finbrain/internal/limiter"
	"github.com/finbrain/finbrain/internal/router"
	expensesvc "github.com/finbrain/finbrain/internal/service/expense"
	"github.com/finbrain/finbrain/internal/transport/middleware"
	"github.com/finbrain/finbrain/internal/transport/rest"
)

// Run is the application entry point: it loads configuration, connects to
// the database, applies migrations, assembles the router, and serves the
// webhook until the context is cancelled or a termination signal arrives.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	hasher, err := identity.NewHasher(cfg.Identity.Salt)
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	expenseService := expensesvc.NewService(logger, expenserepo.New(pool), postgres.NewTxManager(pool))

	aiLimiter := limiter.New(limiter.Config{
		AIEnabled: cfg.AI.Enabled,
		PerUser:   cfg.RateLimit.PerUser,
		Global:    cfg.RateLimit.Global,
	})

	aiAdapter := ai.New(logger, ai.NewAnthropicProvider(cfg.AI.APIKey, cfg.AI.Model), ai.Config{
		Enabled:     cfg.AI.Enabled,
		Timeout:     cfg.AI.Timeout,
		MaxInputLen: cfg.AI.MaxInputLen,
	})

	logger.Info("ai adapter configured",
		slog.Bool("enabled", aiAdapter.Enabled()),
		slog.String("model", cfg.AI.Model),
	)

	msgRouter := router.New(logger, hasher, aiLimiter, aiAdapter, expenseService, router.Config{
		MaxReplyLen: cfg.Router.MaxReplyLen,
	})

	webhook := rest.NewWebhookHandler(logger, msgRouter, cfg.Webhook.VerifyToken)
	health := rest.NewHealthHandler(pool, BuildVersion())

	ipLimiter := middleware.NewRateLimiter(time.Minute)
	defer ipLimiter.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /webhook", webhook.Verify)
	mux.HandleFunc("POST /webhook", webhook.Receive)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		ipLimiter.Limit(600),
	)(mux)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
