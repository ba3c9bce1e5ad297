package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/backend"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/config"
	apphttp "github.com/TahaEssaouir/Finance-Dashboard/internal/http"
	applog "github.com/TahaEssaouir/Finance-Dashboard/internal/log"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/services"
)

func main() {
	// Load .env for local development; in containers the environment
	// is injected directly.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentApp})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	result, err := backend.Build(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to assemble backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	svc := services.NewTransactionService(result.Repository, result.Publisher)

	srv, err := apphttp.NewServer(cfg, svc)
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		if cerr := result.Cleanup(); cerr != nil {
			logger.Error("Backend cleanup error", "error", cerr)
		}
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
