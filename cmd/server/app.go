package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halcyonlab/genstudio-api/internal/config"
	"github.com/halcyonlab/genstudio-api/internal/job"
	"github.com/halcyonlab/genstudio-api/internal/platform/gemini"
	"github.com/halcyonlab/genstudio-api/internal/platform/imagerender"
	"github.com/halcyonlab/genstudio-api/internal/platform/objectstore"
	pgstore "github.com/halcyonlab/genstudio-api/internal/platform/postgres"
	"github.com/halcyonlab/genstudio-api/internal/platform/redisstore"
	"github.com/halcyonlab/genstudio-api/internal/service"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core infrastructure
	logger      *slog.Logger
	db          *sql.DB
	redisClient *redis.Client
	storage     *objectstore.Client

	// Stores (using interfaces for proper abstraction)
	jobStore      job.DescriptorStore
	statusStore   job.StatusStore
	documentStore store.DocumentStore
	chatStore     store.ChatStore
	podcastStore  store.PodcastStore
	taskLogStore  store.TaskLogStore

	// Generation pipeline
	renderer       *imagerender.Renderer
	generator      *gemini.PodcastGenerator
	podcastService service.PodcastService

	// Job handling
	registry *job.Registry
	runner   *job.Runner
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Redis-backed job status store, polled by callers
	app.redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := app.redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	statusTTL := time.Duration(cfg.Redis.StatusTTLSeconds) * time.Second
	app.statusStore = redisstore.NewStatusStore(
		app.redisClient,
		statusTTL,
		logger.With("component", "status_store"),
	)
	logger.Info("job status store initialized", "ttl", statusTTL)

	// Object storage for generated artifacts
	var err error
	app.storage, err = objectstore.NewClient(ctx, objectstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	}, logger.With("component", "object_storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// Postgres-backed stores
	app.jobStore = pgstore.NewPostgresJobStore(db, logger)
	app.documentStore = pgstore.NewPostgresDocumentStore(db, logger)
	app.chatStore = pgstore.NewPostgresChatStore(db, logger)
	app.podcastStore = pgstore.NewPostgresPodcastStore(db, logger)
	app.taskLogStore = pgstore.NewPostgresTaskLogStore(db, logger)

	// Placeholder image renderer
	app.renderer = imagerender.New()

	// Gemini-backed podcast transcript generator
	app.generator, err = gemini.NewPodcastGenerator(
		ctx,
		logger.With("component", "podcast_generator"),
		cfg.LLM,
		app.storage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize podcast generator: %w", err)
	}
	logger.Info("podcast generator initialized", "model", cfg.LLM.ModelName)

	// Podcast application service
	app.podcastService, err = service.NewPodcastService(
		db,
		app.documentStore,
		app.chatStore,
		app.podcastStore,
		app.taskLogStore,
		app.generator,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create podcast service: %w", err)
	}

	// Job registry: hydrators rebuild executable jobs from persisted
	// descriptors during crash recovery.
	presignTTL := time.Duration(cfg.Storage.PresignTTLHours) * time.Hour
	app.registry = job.NewRegistry()
	job.RegisterImageJobHydrator(
		app.registry,
		app.renderer,
		app.storage,
		app.taskLogStore,
		presignTTL,
		logger,
	)
	job.RegisterPodcastJobHydrator(app.registry, app.podcastService, logger)

	// Job runner
	app.runner = job.NewRunner(app.jobStore, app.statusStore, app.registry, job.RunnerConfig{
		WorkerCount:        cfg.Worker.WorkerCount,
		QueueSize:          cfg.Worker.QueueSize,
		StaleJobAge:        time.Duration(cfg.Worker.StaleJobAgeMinutes) * time.Minute,
		StaleCheckInterval: time.Duration(cfg.Worker.StaleCheckIntervalMin) * time.Minute,
	}, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the job runner and serves HTTP until shutdown. Start also
// requeues any work left over from a previous process.
func (app *application) Run(ctx context.Context) error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
