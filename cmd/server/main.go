package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	appproduction "github.com/erp/manufacturing/internal/application/production"
	appwarning "github.com/erp/manufacturing/internal/application/warning"
	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/cache"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/event"
	"github.com/erp/manufacturing/internal/infrastructure/i18n"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/infrastructure/persistence"
	"github.com/erp/manufacturing/internal/infrastructure/scheduler"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/erp/manufacturing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/erp/manufacturing/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Manufacturing API
//	@version		1.0
//	@description	Cost plans and their conversion into production processes.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	ctx := context.Background()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		_ = logsProvider.Shutdown(context.Background())
	}()
	log = logsProvider.Bridge(log)

	log.Info("Starting manufacturing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.Profiling.Enabled,
		ServerAddress:     cfg.Telemetry.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Telemetry.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		_ = profiler.Stop()
	}()
	if cfg.Telemetry.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.App.Env == "development",
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	uomRepo := persistence.NewGormUomRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	productBomRepo := persistence.NewGormProductBomRepository(db.DB)
	bomRepo := persistence.NewGormBomRepository(db.DB)
	routeRepo := persistence.NewGormRouteRepository(db.DB)
	processRepo := persistence.NewGormProcessRepository(db.DB)
	planRepo := persistence.NewGormCostPlanRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Warning acknowledgements
	storeFactory := cache.NewWarningStoreFactory(cfg.Redis, cfg.Warning,
		cache.WithLogger(log),
		cache.WithDatabaseStore(persistence.NewGormWarningStore(db.DB, cfg.Warning.TTL)),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	warningStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create warning store", zap.Error(err))
	}
	if closer, ok := warningStore.(interface{ Close() error }); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	var purgeScheduler *scheduler.PurgeScheduler
	if purger, ok := warningStore.(scheduler.Purger); ok {
		purgeCfg := scheduler.DefaultPurgeSchedulerConfig()
		purgeCfg.Interval = cfg.Warning.PurgeInterval
		purgeScheduler, err = scheduler.NewPurgeScheduler(purgeCfg, purger, log)
		if err != nil {
			log.Fatal("Failed to create purge scheduler", zap.Error(err))
		}
		if err := purgeScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start purge scheduler", zap.Error(err))
		}
	}

	translator, err := i18n.NewTranslator(cfg.I18n.DefaultLanguage)
	if err != nil {
		log.Fatal("Failed to initialize translator", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	assignedHandler := appcostplan.NewProcessAssignedHandler(log).
		WithNotifier(appcostplan.NewLoggingProcessAssignedNotifier(log))
	eventBus.Subscribe(assignedHandler, assignedHandler.EventTypes()...)
	conversionMetrics, err := telemetry.NewConversionMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create conversion metrics", zap.Error(err))
	}
	eventBus.Subscribe(conversionMetrics, conversionMetrics.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	warningService := appwarning.NewWarningService(warningStore, log)
	catalogService := catalogapp.NewCatalogService(uomRepo, productRepo, productBomRepo, bomRepo, routeRepo)
	productionService := appproduction.NewProductionService(bomRepo, routeRepo, processRepo)
	planService := appcostplan.NewPlanService(appcostplan.PlanServiceConfig{
		PlanRepo:       planRepo,
		ProductRepo:    productRepo,
		ProductBomRepo: productBomRepo,
		BomRepo:        bomRepo,
		RouteRepo:      routeRepo,
		ProcessRepo:    processRepo,
		TxScope:        txScope,
		Warnings:       warningService,
		Localizer:      translator,
		EventPublisher: eventBus,
		Logger:         log,
	})
	wizard := appcostplan.NewCreateProcessWizard(planRepo, planService, translator)

	// Handlers
	systemHandler := handler.NewSystemHandler(version).WithCheck("database", db.Ping)
	if pinger, ok := warningStore.(interface{ Ping(context.Context) error }); ok {
		systemHandler.WithCheck("warning_store", pinger.Ping)
	}
	handlers := router.Handlers{
		System:     systemHandler,
		Catalog:    handler.NewCatalogHandler(catalogService),
		Production: handler.NewProductionHandler(productionService),
		CostPlan:   handler.NewCostPlanHandler(planService),
		Wizard:     handler.NewWizardHandler(wizard),
		Warning:    handler.NewWarningHandler(warningService),
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing and metrics
	// 5. Security headers, CORS and body limit
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuth(middleware.JWTConfig{
			JWTService: auth.NewJWTService(cfg.JWT),
			Required:   cfg.JWT.Required,
			SkipPaths:  middleware.DefaultSkipPaths,
			Logger:     log,
		}),
		middleware.TracingAttributeInjector(),
		middleware.Language(translator),
	)
	router.RegisterAPI(r, handlers)
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if purgeScheduler != nil {
		if err := purgeScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping purge scheduler", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
