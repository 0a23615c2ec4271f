// Package main запускает HTTP-сервер магазина тюнингованных автомобилей.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/tuning-shop/internal/config"
	"github.com/mmeshcher/tuning-shop/internal/handler"
	"github.com/mmeshcher/tuning-shop/internal/health"
	"github.com/mmeshcher/tuning-shop/internal/middleware"
	"github.com/mmeshcher/tuning-shop/internal/repository"
	"github.com/mmeshcher/tuning-shop/internal/service"
)

var version = "dev"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	svc := service.NewService(repo, service.Options{
		WelcomeBonusCents: cfg.WelcomeBonus * 100,
		BonusPercent:      cfg.BonusPercent,
	})
	defer svc.Close()

	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is not set, sessions will not survive restart")
	}
	if cfg.AdminAPIKey == "" {
		sugar.Warn("ADMIN_API_KEY is not set, admin endpoints are disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	hc, err := health.New(version, repo)
	if err != nil {
		sugar.Fatalw("health check initialization error", "error", err.Error())
	}

	h := handler.NewHandler(svc, logger, authMiddleware, cfg.AdminAPIKey).WithHealth(hc.Handler())

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting tuning shop server",
			"addr", cfg.RunAddress,
			"bonusPercent", cfg.BonusPercent,
			"welcomeBonus", cfg.WelcomeBonus,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка сервера)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
