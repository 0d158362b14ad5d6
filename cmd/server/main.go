package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	appcatalog "github.com/retail/backoffice/internal/application/catalog"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	apppartner "github.com/retail/backoffice/internal/application/partner"
	appreport "github.com/retail/backoffice/internal/application/report"
	appsync "github.com/retail/backoffice/internal/application/sync"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/cache"
	"github.com/retail/backoffice/internal/infrastructure/config"
	"github.com/retail/backoffice/internal/infrastructure/lock"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/persistence"
	"github.com/retail/backoffice/internal/infrastructure/scheduler"
	"github.com/retail/backoffice/internal/infrastructure/storage"
	"github.com/retail/backoffice/internal/infrastructure/strategy"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"github.com/retail/backoffice/internal/interfaces/http/handler"
	"github.com/retail/backoffice/internal/interfaces/http/middleware"
	"github.com/retail/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting retail back-office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Database.SlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Database.SlowQueryThresh
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}

	// Redis backs the distributed locker and the sync idempotency store.
	// Only the redis lock driver makes it mandatory.
	var rdb *redis.Client
	rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.Lock.Driver == config.LockDriverRedis {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		rdb = nil
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	locker, err := lock.New(cfg.Lock, rdb, log)
	if err != nil {
		log.Fatal("Failed to create locker", zap.Error(err))
	}
	idempotencyStore := cache.NewIdempotencyStore(rdb, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Ledger knobs
	strategies, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to register cost strategies", zap.Error(err))
	}
	costStrategy, err := strategies.GetCostStrategy(cfg.Ledger.CostStrategy)
	if err != nil {
		log.Fatal("Unknown cost strategy", zap.String("strategy", cfg.Ledger.CostStrategy), zap.Error(err))
	}
	log.Info("Ledger configured",
		zap.String("cost_strategy", costStrategy.Name()),
		zap.String("money_epsilon", cfg.Ledger.MoneyEpsilon.String()),
		zap.String("timezone", cfg.Ledger.Location().String()),
		zap.String("lock_driver", cfg.Lock.Driver),
	)

	// Repositories and services
	reads := persistence.NewGormRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	ledger := appinventory.NewMovementLedger()
	lots := appinventory.NewCostLotEngine(scope, locker, reads, costStrategy, ledgerMetrics)
	poster := appfinance.NewPaymentPoster(cfg.Ledger.DefaultInstallmentIntervalDays)

	inventoryService := appinventory.NewInventoryService(scope, locker, reads, ledger, lots)
	saleService := apptrade.NewSaleService(scope, locker, reads, ledger, lots, poster, ledgerMetrics)
	purchaseService := apptrade.NewPurchaseService(scope, locker, reads, ledger, lots, poster, ledgerMetrics)
	receivableService := appfinance.NewReceivableService(scope, locker, reads, poster, ledgerMetrics,
		appfinance.WithMoneyEpsilon(cfg.Ledger.MoneyEpsilon),
	)
	entryService := appfinance.NewEntryService(scope, reads)
	closureService := appfinance.NewClosureService(scope, reads,
		appfinance.WithLocation(cfg.Ledger.Location()),
		appfinance.WithUniqueClosures(cfg.Ledger.EnforceUniqueClosure),
	)
	accountService := appfinance.NewAccountService(reads.Accounts())
	productService := appcatalog.NewProductService(reads.Products(), reads.ProductUnits())
	customerService := apppartner.NewCustomerService(reads.Customers())

	exportOpts := []appreport.ExportOption{}
	if cfg.Storage.Enabled() {
		objectStorage, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare export bucket", zap.Error(err))
		}
		exportOpts = append(exportOpts,
			appreport.WithStorage(objectStorage),
			appreport.WithURLExpiry(cfg.Storage.PresignExpiry),
		)
		log.Info("Closure exports go to object storage", zap.String("bucket", objectStorage.Bucket()))
	}
	exportService := appreport.NewExportService(closureService, exportOpts...)

	dispatcher := appsync.NewDispatcher(appsync.Handlers{
		Movements:   inventoryService,
		Sales:       saleService,
		Settlements: receivableService,
		Purchases:   purchaseService,
		Closures:    closureService,
		Entries:     entryService,
	}, idempotencyStore, appsync.WithIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Ledger.SyncIdempotencyTTL,
		Enabled: true,
	}))

	// Due-entry sweeper
	if cfg.Scheduler.Enabled {
		sweepScheduler := scheduler.NewScheduler(scheduler.Config{
			Enabled:       true,
			Workers:       cfg.Scheduler.Workers,
			Interval:      cfg.Scheduler.Interval,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
		}, scheduler.NewDueSweepExecutor(entryService, log), log)
		if err := sweepScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		sweepTrigger := scheduler.NewDueSweepTrigger(cfg.Scheduler.Interval, sweepScheduler, reads.Entries(), log)
		if err := sweepTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start due sweep trigger", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = sweepTrigger.Stop(stopCtx)
			if err := sweepScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers := router.Handlers{
		Inventory:  handler.NewInventoryHandler(inventoryService),
		Product:    handler.NewProductHandler(productService),
		Customer:   handler.NewCustomerHandler(customerService),
		Sale:       handler.NewSaleHandler(saleService),
		Purchase:   handler.NewPurchaseHandler(purchaseService),
		Receivable: handler.NewReceivableHandler(receivableService),
		Finance: handler.NewFinanceHandler(
			accountService, entryService, closureService, cfg.Ledger.DefaultInstallmentIntervalDays,
		),
		Report: handler.NewReportHandler(exportService),
		Sync:   handler.NewSyncHandler(dispatcher),
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          meter,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Tenant: middleware.TenantConfig{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
		},
	}, log, handler.NewSystemHandler(cfg.App.Name, version, sqlDB), handlers)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
