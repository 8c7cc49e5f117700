package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker/v2"

	"payperless/internal/amqp"
	"payperless/internal/backend"
	"payperless/internal/cache"
	"payperless/internal/cli"
	"payperless/internal/config"
	apphttp "payperless/internal/http"
	"payperless/internal/log"
	"payperless/internal/metrics"
	"payperless/internal/receipts"
	"payperless/internal/receipts/httpapi"
	rmemory "payperless/internal/receipts/memory"
	"payperless/internal/recipes"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	m := metrics.New()

	client, err := httpapi.New(httpapi.Config{
		BaseURL:            cfg.ReceiptsAPIURL,
		Timeout:            cfg.UpstreamTimeout,
		BreakerFailures:    uint32(cfg.BreakerFailures),
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
		OnStateChange: func(name string, to gobreaker.State) {
			m.SetBreakerState(name, int(to))
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("Failed to initialize receipts API client", log.FieldError, err.Error())
		os.Exit(1)
	}
	receiptSvc := receipts.NewService(client, logger, m)

	// The dashboard reads receipts from the live backend or from the
	// bundled fixtures.
	dashboardSvc := receiptSvc
	if cfg.DashboardSource == config.SourceDemo {
		demo, err := rmemory.NewSeeded()
		if err != nil {
			logger.Error("Failed to load demo receipts", log.FieldError, err.Error())
			os.Exit(1)
		}
		dashboardSvc = receipts.NewService(demo, logger, m)
	}

	imageCache := cache.NewLRUCache[receipts.Image](cfg.ImageCacheSize, cfg.ImageCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(imageCache)
	cacheManager.StartCleanup(context.Background(), max(cfg.ImageCacheTTL/2, time.Second))

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger).CreateStore(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize recipe store", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	catalog, err := recipes.DefaultCatalog()
	if err != nil {
		logger.Error("Failed to load recipe catalog", log.FieldError, err.Error())
		os.Exit(1)
	}

	mealPlan, err := recipes.DefaultMealPlan()
	if err != nil {
		logger.Error("Failed to load meal plan", log.FieldError, err.Error())
		os.Exit(1)
	}

	var (
		publisher  apphttp.UploadPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Uploads still work; the worker just won't hear about them.
			logger.Warn("AMQP unavailable, uploads will not be announced", log.FieldError, err.Error())
		} else {
			publisher = amqpClient
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Receipts:        receiptSvc,
		Dashboard:       dashboardSvc,
		DashboardSource: cfg.DashboardSource,
		Uploader:        client,
		Images:          cache.NewImageFetcher(client, imageCache),
		Publisher:       publisher,
		Recipes:         recipes.NewService(store.Recipes, logger),
		Catalog:         catalog,
		MealPlan:        mealPlan,
		Metrics:         m,
		Ready:           store.Ready,
		CurrencySymbol:  cfg.CurrencySymbol,
		Logger:          logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Warn("Recipe store close error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting payperless server",
		"port", cfg.Port,
		"receipts_api", cfg.ReceiptsAPIURL,
		"data_backend", cfg.DataBackend,
		"dashboard_source", cfg.DashboardSource,
		"amqp", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
