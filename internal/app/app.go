package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"NewsDebate/internal/config"
	"NewsDebate/internal/debate"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/infrastructure/archive"
	"NewsDebate/internal/infrastructure/content"
	"NewsDebate/internal/infrastructure/llm"
	"NewsDebate/internal/infrastructure/scheduler"
	"NewsDebate/internal/infrastructure/storage"
	"NewsDebate/internal/infrastructure/telegram"
	"NewsDebate/internal/logging"
	"NewsDebate/internal/ports"
	"NewsDebate/internal/transport/httpapi"
	"NewsDebate/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	articles ports.ArticleStore
	pipeline *usecase.Pipeline
	archive  *archive.GCSArchive
}

// New builds the application from configuration. The returned instance owns
// the database handle and the archive client until Close.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	var syntheses ports.SynthesisStore
	switch cfg.Database.Driver {
	case config.DriverMemory:
		repo := storage.NewMemoryRepository()
		a.articles, syntheses = repo, repo
	default:
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: open database: %w", domain.ErrPersistence, err)
		}
		a.db = db
		repo := storage.NewPostgresRepository(db)
		a.articles, syntheses = repo, repo
	}

	engine, err := llm.NewDefaultRegistry(cfg.Engine).Resolve(cfg.Engine.Provider)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrEngine, err)
	}

	session := debate.NewSession(engine, debate.Config{
		MaxRounds:   cfg.Debate.MaxRounds,
		Timeout:     cfg.Debate.Timeout,
		TurnTimeout: cfg.Engine.TurnTimeout,
		MaxWords:    cfg.Debate.MaxWordsPerMessage,
		Spanish:     cfg.Debate.Spanish(),
		RolePrompts: cfg.Debate.Roles,
	}, baseLogger.With("component", "debate", "engine", engine.Name()))

	deps := usecase.PipelineDeps{
		Articles:   a.articles,
		Syntheses:  syntheses,
		Debate:     session,
		Normalizer: content.NewNormalizer(cfg.Debate.ContentMaxTokens),
		Logger:     baseLogger.With("component", "pipeline"),
	}

	if cfg.Archive.Bucket != "" {
		gcs, err := archive.NewGCSArchive(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.archive = gcs
		deps.Archive = gcs
	}

	notifier := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	if notifier.Configured() {
		deps.Notifier = notifier
	}

	a.pipeline = usecase.NewPipeline(deps)
	return a, nil
}

// Pipeline exposes the batch orchestrator.
func (a *Application) Pipeline() *usecase.Pipeline { return a.pipeline }

// Articles exposes the article store for admin operations.
func (a *Application) Articles() ports.ArticleStore { return a.articles }

// Migrate creates the tables and indexes. It is a no-op for the memory driver.
func (a *Application) Migrate(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return storage.EnsureSchema(ctx, a.db)
}

// Run processes batches until the backlog is empty when drain is set, or a
// single batch otherwise.
func (a *Application) Run(ctx context.Context, size, workers int, drain bool) (domain.BatchResult, error) {
	if size <= 0 {
		size = a.cfg.Batch.Size
	}
	if workers <= 0 {
		workers = a.cfg.Batch.Workers
	}
	if drain {
		return a.pipeline.Drain(ctx, size, workers)
	}
	return a.pipeline.ProcessBatch(ctx, size)
}

// Serve runs the cron scheduler and the admin HTTP API until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	cron := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	if err := cron.Validate(); err != nil {
		return err
	}
	jobs := usecase.NewScheduler(cron, a.pipeline, a.cfg.Batch.Size, a.logger.With("component", "scheduler"))
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"next", cron.Next(time.Now()),
	)

	server := httpapi.NewServer(a.pipeline, a.articles, a.cfg.Batch.Size, a.logger.With("component", "httpapi")).
		HTTPServer(a.cfg.Server.Addr)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

// Close releases the database handle and the archive client.
func (a *Application) Close() error {
	var errs []error
	if a.archive != nil {
		errs = append(errs, a.archive.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
