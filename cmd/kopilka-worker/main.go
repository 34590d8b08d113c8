package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kopilka/internal/amqp"
	"kopilka/internal/config"
	applog "kopilka/internal/log"
	"kopilka/internal/storage"
	"kopilka/internal/storage/memory"
	"kopilka/internal/store"
	"kopilka/internal/worker"
)

func main() {
	// Load .env for local development; absence is fine in containers.
	_ = godotenv.Load()

	logConfig := applog.DefaultConfig()
	logConfig.Component = applog.ComponentWorker
	logger := applog.New(logConfig)
	applog.SetDefault(logger)

	logger.Info("Starting kopilka-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ingest worker")
		os.Exit(1)
	}

	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository",
				"error", err,
				"path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		st = repo
	default:
		st = memory.New()
	}
	logger.Info("Initialized record store", applog.FieldBackend, cfg.DataBackend)

	ingest := worker.NewIngestWorker(st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := amqp.ConsumeForever(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.IngestPrefetch,
		func(msg *amqp.TransactionMessage) error {
			return ingest.HandleTransactionMessage(ctx, msg)
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
