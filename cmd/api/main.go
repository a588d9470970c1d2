package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"articleapi/internal/config"
	"articleapi/internal/database"
	"articleapi/internal/database/migration"
	handlers "articleapi/internal/http/handler"
	"articleapi/internal/http/middleware"
	"articleapi/internal/otel"
	"articleapi/internal/repository"
	pgrepo "articleapi/internal/repository/postgres"
	sqliterepo "articleapi/internal/repository/sqlite"
	"articleapi/internal/service"
	"articleapi/internal/storage"
	"articleapi/internal/validate"
)

func main() {
	// Configuration from environment variables (.env auto-loaded if present).
	cfg := config.Load()

	log := newLogger(cfg.Log)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	db, articleRepo, userRepo, err := openDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	objStore, err := openStorage(cfg.Storage)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	articleSvc := service.NewArticleService(objStore, articleRepo, validate.FilePolicy{
		MaxBytes:  cfg.Upload.ArticleMaxBytes,
		MediaType: "application/pdf",
	}, log)
	profileSvc := service.NewProfileService(objStore, userRepo, validate.FilePolicy{
		MaxBytes:  cfg.Upload.AvatarMaxBytes,
		MediaType: "image/",
	}, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.ArticleMaxBytes) + 1<<20,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(middleware.Identity())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, articleSvc, profileSvc)

	addr := ":" + cfg.Port
	log.Info("starting server", "addr", addr, "db_driver", cfg.Database.Driver, "storage_backend", cfg.Storage.Backend)

	if err := app.Listen(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the application logger: human-readable tint output in dev,
// JSON in prod.
func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// openDatabase selects the metadata store by driver, runs the schema setup
// for it, and returns the repositories bound to it.
func openDatabase(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*sql.DB, repository.ArticleRepository, repository.UserRepository, error) {
	if cfg.Database.Driver == "sqlite" {
		db, err := database.NewSQLite(cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqliterepo.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return db, sqliterepo.NewArticleSQLite(db), sqliterepo.NewUserSQLite(db), nil
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return db, pgrepo.NewArticlePostgres(db), pgrepo.NewUserPostgres(db), nil
}

// openStorage selects the binary object store backend.
func openStorage(cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Backend == "fs" {
		return storage.NewFS(cfg.Dir)
	}
	return storage.NewMinIO(cfg.MinIO)
}
