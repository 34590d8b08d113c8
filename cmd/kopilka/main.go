package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kopilka/internal/amqp"
	"kopilka/internal/config"
	apphttp "kopilka/internal/http"
	"kopilka/internal/ledger"
	applog "kopilka/internal/log"
	"kopilka/internal/storage"
	"kopilka/internal/storage/memory"
	"kopilka/internal/store"
)

func main() {
	// Load .env for local development; absence is fine in containers.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
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

	svc := ledger.NewService(st)

	// The external feed is queued through AMQP when a broker is
	// configured; without one the server stores it directly.
	var pub apphttp.TransactionPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP broker unavailable, external feed falls back to direct writes",
				"error", err,
				"url", cfg.AMQPURL)
		} else {
			defer client.Close()
			pub = client
			logger.Info("Connected AMQP publisher",
				"exchange", cfg.AMQPExchange,
				applog.FieldQueue, cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, svc, cfg.ExternalAPIKey, pub, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting kopilka server",
			"port", cfg.Port,
			applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
