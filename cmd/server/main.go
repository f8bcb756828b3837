package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/backoffice/internal/application/export"
	"github.com/erp/backoffice/internal/application/ingestion"
	"github.com/erp/backoffice/internal/application/report"
	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/artifact"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	// Bootstrap logger used while the telemetry providers start
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	var logOpts []logger.Option
	if loggerProvider.IsEnabled() {
		logOpts = append(logOpts, logger.WithCore(loggerProvider.ZapCore(logger.ParseLevel(cfg.Log.Level))))
	}
	log, err := logger.New(logCfg, logOpts...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting back-office API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiler.Enabled,
		ServerAddress:   cfg.Profiler.ServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		AuthToken:       cfg.Profiler.AuthToken,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	defer shutdownTelemetry(log, profiler, tracerProvider, meterProvider, loggerProvider)

	var ingestionMetrics *telemetry.IngestionMetrics
	if meterProvider.IsEnabled() {
		ingestionMetrics, err = telemetry.NewIngestionMetrics(meterProvider.Meter("backoffice.ingestion"))
		if err != nil {
			log.Fatal("Failed to create ingestion metrics", zap.Error(err))
		}
	}

	// Module stores and artifact sink
	registry := record.DefaultRegistry()
	store := persistence.NewMemoryRecordStore(registry.Modules()...)

	sink, err := artifact.NewSink(ctx, &cfg.Artifact, log)
	if err != nil {
		log.Fatal("Failed to initialize artifact sink", zap.Error(err))
	}
	if closer, ok := sink.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("Error closing artifact sink", zap.Error(err))
			}
		}()
	}

	// Event bus: fiscal documents are written after a fiscal record is accepted
	eventBus := event.NewInMemoryEventBus(log, event.WithFailureHook(
		func(ctx context.Context, evt shared.DomainEvent, _ error) {
			ingestionMetrics.RecordEventFailure(ctx, evt.EventType())
		},
	))

	fiscalHandler := ingestion.NewFiscalDocumentHandler(sink, ingestionMetrics, log)
	eventBus.Subscribe(fiscalHandler)

	log.Info("Event handlers registered",
		zap.Strings("fiscal_document_events", fiscalHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	ingestionService := ingestion.NewService(registry, store, log,
		ingestion.WithPublisher(eventBus),
		ingestion.WithMetrics(ingestionMetrics),
	)
	exportService := export.NewService(registry, store, sink, ingestionMetrics, log)
	reportService := report.NewService(registry, store, sink, log, report.WithMetrics(ingestionMetrics))

	systemHandler := handler.NewSystemHandler(registry)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = tracerProvider.IsEnabled()
	engine.Use(middleware.TracingWithConfig(tracingConfig), middleware.SpanEnricher())

	httpMetrics, err := middleware.HTTPMetrics(meterProviderMeter(meterProvider))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling(profiler.IsEnabled()))

	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/health", systemHandler.Health)

	apiKey := middleware.APIKey(middleware.APIKeyConfig{
		Enabled:    cfg.Auth.Enabled,
		HeaderName: cfg.Auth.HeaderName,
		Key:        cfg.Auth.APIKey,
		KeyHash:    cfg.Auth.APIKeyHash,
		SkipPaths:  cfg.Auth.SkipPaths,
		Logger:     log,
	})

	router.NewRouter(engine, router.WithMiddleware(apiKey)).
		Register(
			handler.NewRecordHandler(ingestionService),
			handler.NewExportHandler(exportService),
			handler.NewReportHandler(reportService),
			systemHandler,
		).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.Strings("modules", moduleNames(registry)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// meterProviderMeter returns the HTTP meter, or nil when metrics are disabled
func meterProviderMeter(mp *telemetry.MeterProvider) metric.Meter {
	if !mp.IsEnabled() {
		return nil
	}
	return mp.Meter("backoffice.http")
}

func moduleNames(registry *record.Registry) []string {
	modules := registry.Modules()
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.String()
	}
	return names
}

// shutdownTelemetry flushes the providers in reverse start order
func shutdownTelemetry(
	log *zap.Logger,
	profiler *telemetry.Profiler,
	tp *telemetry.TracerProvider,
	mp *telemetry.MeterProvider,
	lp *telemetry.LoggerProvider,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		// the log exporter is gone at this point
		_, _ = os.Stderr.WriteString("Error shutting down log exporter: " + err.Error() + "\n")
	}
}
