package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"guidetrack/internal/amqp"
	"guidetrack/internal/cli"
	"guidetrack/internal/config"
	"guidetrack/internal/log"
	ports "guidetrack/internal/sheets"
	gsheet "guidetrack/internal/sheets/google"
	mem "guidetrack/internal/sheets/memory"
	"guidetrack/internal/storage"
	"guidetrack/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting guidetrack-worker", "schedule", cfg.SyncCron, "batch_size", cfg.SyncBatchSize)

	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Worker is running against in-memory storage; it only sees its own empty store")
	}

	kv, err := cli.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer kv.Close()

	writer, err := newTableWriter(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	repo := storage.NewRepository(kv, logger)
	syncWorker := worker.NewSyncWorker(repo, kv, writer, cfg.SyncBatchSize, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	ctx, done := cli.GracefulShutdown(ctx, logger, 30*time.Second, func(context.Context) {
		syncWorker.StopSchedule()
	})

	// A full rewrite on startup covers anything missed while stopped.
	logger.Info("Performing startup sync", log.FieldOperation, log.OpStartup)
	if err := syncWorker.FullResync(ctx); err != nil {
		logger.Error("Startup sync failed", log.FieldError, err)
	}

	if err := syncWorker.StartSchedule(cfg.SyncCron); err != nil {
		logger.Error("Failed to start sync schedule", log.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on the schedule only", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			g.Go(func() error {
				return amqpClient.ConsumeCollectionChanged(gctx, syncWorker.HandleCollectionChanged)
			})
		}
	} else {
		logger.Info("AMQP disabled - syncing on schedule only")
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		stop()
	}
	<-done
	logger.Info("Worker stopped gracefully")
}

// newTableWriter mirrors into Google Sheets when a spreadsheet is
// configured and into process memory otherwise.
func newTableWriter(cfg *config.Config, logger *log.Logger) (ports.TableWriter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return mem.New(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
}
