package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"payperless/internal/amqp"
	"payperless/internal/backend"
	"payperless/internal/cli"
	"payperless/internal/log"
	"payperless/internal/metrics"
	"payperless/internal/receipts/httpapi"
	"payperless/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the ingestion worker")
		os.Exit(1)
	}

	// Outcomes always live in SQLite; the worker is the only writer.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := httpapi.New(httpapi.Config{
		BaseURL:            cfg.ReceiptsAPIURL,
		Timeout:            cfg.UpstreamTimeout,
		BreakerFailures:    uint32(cfg.BreakerFailures),
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to initialize receipts API client", log.FieldError, err.Error())
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	exporter, err := backend.NewFactory(logger).CreateExporter(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize receipt exporter", log.FieldError, err.Error(), "backend", cfg.ExportBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	m := metrics.New()
	w := worker.NewIngestWorker(client, repo, exporter, m, logger, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting payperless worker",
		"queue", cfg.AMQPQueue,
		"export_backend", cfg.ExportBackend,
		"sync_interval", cfg.SyncInterval.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return amqpClient.Consume(gctx, w.HandleReceiptUploaded) })
	g.Go(func() error { return w.Run(gctx, cfg.SyncInterval) })
	if cfg.WorkerMetricsPort != "" {
		metricsSrv := &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
