package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/kanakk365/ysntest-sub001/api"
	"github.com/kanakk365/ysntest-sub001/internal/api"
	"github.com/kanakk365/ysntest-sub001/internal/api/handler"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
	"github.com/kanakk365/ysntest-sub001/internal/config"
	"github.com/kanakk365/ysntest-sub001/internal/customtoken"
	"github.com/kanakk365/ysntest-sub001/internal/role"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	client := backend.NewClient(cfg.BackendURL, backend.WithTimeout(cfg.BackendTimeout))

	minter, err := initMinter(cfg)
	if err != nil {
		slog.Error("failed to initialize chat token minter", "error", err)
		os.Exit(1)
	}
	if minter == nil {
		slog.Warn("chat service account not configured; token exchange disabled")
	}

	router := api.NewRouter(api.RouterDeps{
		Backend:     client,
		Minter:      minter,
		Roles:       role.DefaultRouter(),
		Version:     cfg.Version,
		OpenAPISpec: specpkg.OpenAPISpec,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting YSN server", "port", cfg.Port, "version", cfg.Version, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// initMinter returns nil, nil when no service account is configured.
func initMinter(cfg *config.Config) (handler.TokenMinter, error) {
	if !cfg.ChatEnabled() {
		return nil, nil
	}

	key, err := customtoken.LoadPrivateKey(cfg.ChatPrivateKeyPath)
	if err != nil {
		return nil, err
	}
	return customtoken.NewMinter(cfg.ChatServiceAccountEmail, key, cfg.ChatTokenTTL)
}
