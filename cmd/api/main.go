package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"acsgateway/internal/backend"
	"acsgateway/internal/config"
	"acsgateway/internal/database"
	"acsgateway/internal/database/migration"
	handlers "acsgateway/internal/http/handler"
	"acsgateway/internal/http/middleware"
	"acsgateway/internal/otel"
	"acsgateway/internal/ratelimit"
	"acsgateway/internal/service"
	"acsgateway/internal/storage"
	"acsgateway/internal/telemetry"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.Local)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// The rate limiter runs on an in-memory store unless a shared database
	// is configured, in which case every gateway replica counts against the
	// same windows.
	var db *sql.DB
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := migration.EnsureMigrated(ctx, db, time.Local, cfg.Database.Host); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		store = ratelimit.NewSQLStore(db)
	}
	limiter := ratelimit.New(store, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// Optional S3-compatible archive of incoming uploads (MinIO-supported).
	var archive storage.Storage
	if cfg.MinIO.Enabled() {
		archive, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sink, err := telemetry.NewPrometheusSink(registry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}

	backendClient := backend.NewClient(cfg.Backend)
	svc := service.NewExtractorService(limiter, cfg.Extract, backendClient, archive, sink)

	// The body cap is a backstop far above any legitimate request, so
	// oversized files reach per-file validation and its FILE_TOO_LARGE
	// mapping instead of being cut off mid-transfer.
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    2*int(cfg.Extract.MaxSizePerFile)*cfg.Extract.MaxFiles + (1 << 20),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc, cfg.RateLimit.Limit, cfg.Extract.RequiredField)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
