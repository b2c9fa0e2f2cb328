package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/bookheaven/internal/cache"
	"github.com/mmeshcher/bookheaven/internal/config"
	"github.com/mmeshcher/bookheaven/internal/handler"
	"github.com/mmeshcher/bookheaven/internal/metrics"
	"github.com/mmeshcher/bookheaven/internal/middleware"
	"github.com/mmeshcher/bookheaven/internal/service"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:                "serve [flags]",
	Short:              "Start the HTTP server",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(args)
	},
}

func serve(args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse(args)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("storage initialization error: %w", err)
	}

	if cfg.JWTSecret == "" {
		sugar.Warn("JWT_SECRET is not set, tokens are signed with a random key and expire on restart")
	}

	m := metrics.New()
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.TokenTTL)

	opts := []service.Option{service.WithMetrics(m), service.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		c, err := cache.New(ctx, cfg.RedisAddr, cfg.CacheTTL, m, logger)
		if err != nil {
			sugar.Warnw("catalog cache disabled", "addr", cfg.RedisAddr, "error", err.Error())
		} else {
			defer c.Close()
			opts = append(opts, service.WithCache(c))
		}
	}

	svc := service.NewService(repo, authMiddleware, opts...)
	defer svc.Close()

	h := handler.NewHandler(svc, logger, authMiddleware, m, cfg.CORSOrigin)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting bookheaven server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Останавливаем сервер по сигналу или при ошибке другой горутины.
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
