package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/launcher"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/opener"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("bookmarks server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	// Create the store up front so a bad path fails at startup.
	repo, err := sqlite.Open(cfg.DatabasePath, lg)
	if err != nil {
		return err
	}
	if err := repo.Close(); err != nil {
		lg.Warn("close store", logger.Error(err))
	}

	commands := launcher.NewCommands(launcher.FileStore(cfg.DatabasePath, lg), opener.Browser{}, lg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(cfg, commands, lg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	lg.Infof("server starting on :%s (env=%s, database=%s)", cfg.Port, cfg.AppEnv, cfg.DatabasePath)

	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	lg.Info("server stopped")
	return nil
}
