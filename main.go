package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := loadConfig()

	// stdout carries the protocol, so all logging goes to stderr.
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	adapter, err := adapterForDriver(cfg.Driver)
	if err != nil {
		logger.Error("failed to select database adapter", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	server, err := NewMCPServer(ctx, adapter, cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "err", err)
		os.Exit(1)
	}
	defer server.Close()

	logger.Info("server started",
		"name", adapter.ServerName(),
		"database", server.databaseName,
		"raw_query_enabled", cfg.AllowRawQuery)

	if err := server.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("server shutdown gracefully")
		} else {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}
