package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"guidetrack/internal/amqp"
	"guidetrack/internal/cli"
	apphttp "guidetrack/internal/http"
	"guidetrack/internal/log"
	"guidetrack/internal/services"
	"guidetrack/internal/state"
	"guidetrack/internal/storage"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)
	logger.Info("Starting guidetrack", "backend", cfg.DataBackend, "port", cfg.Port)

	kv, err := cli.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer kv.Close()

	repo := storage.NewRepository(kv, logger)
	store := state.NewStore(state.Initial(), logger)
	store.Subscribe(services.NewPersister(repo, logger))

	// Change notifications are optional: without a broker the worker's
	// schedule still picks everything up.
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			store.Subscribe(services.NewSyncPublisher(amqpClient, logger))
			logger.Info("AMQP notifications enabled", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - spreadsheet sync relies on the worker schedule")
	}

	svc := services.NewGuideService(store, repo, logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	err = svc.Load(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Error("Failed to load data", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		AllowedOrigins:    cfg.AllowedOrigins,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	}, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	_, done := cli.GracefulShutdown(ctx, logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("HTTP server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		stop()
		<-done
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
