// Command server runs the mailcraft HTTP API and its delivery workers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"github.com/dmitrymomot/mailcraft"
	"github.com/dmitrymomot/mailcraft/handlers"
	"github.com/dmitrymomot/mailcraft/internal/config"
	"github.com/dmitrymomot/mailcraft/internal/editor"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/scheduler"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/middlewares"
	"github.com/dmitrymomot/mailcraft/migrations"
	"github.com/dmitrymomot/mailcraft/pkg/cache"
	"github.com/dmitrymomot/mailcraft/pkg/db"
	"github.com/dmitrymomot/mailcraft/pkg/job"
	"github.com/dmitrymomot/mailcraft/pkg/jwt"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/mailer"
	"github.com/dmitrymomot/mailcraft/pkg/mailer/resend"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
	"github.com/dmitrymomot/mailcraft/pkg/redis"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor(), identity.LogExtractor)
	m := metrics.New("mailcraft")

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}

	// Until the app owns them, resources opened below are released here.
	shutdown := []func(context.Context) error{db.Shutdown(pool)}
	handedOver := false
	defer func() {
		if !handedOver {
			release(context.WithoutCancel(ctx), log, shutdown)
		}
	}()

	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
		return err
	}

	health := []mailcraft.HealthOption{
		mailcraft.WithReadinessCheck("postgres", db.Healthcheck(pool)),
	}

	// Base documents are shared across replicas when Redis is available.
	var documents cache.Cache[json.RawMessage]
	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		documents = cache.NewRedis[json.RawMessage](client, nil, cache.WithPrefix("mailcraft:"))
		health = append(health, mailcraft.WithReadinessCheck("redis", redis.Healthcheck(client)))
		shutdown = append(shutdown, redis.Shutdown(client))
	}

	sender, err := newSender(cfg, log)
	if err != nil {
		return err
	}

	svc := templates.NewService(templates.NewPostgres(pool),
		templates.WithOwnershipEnforced(cfg.Templates.EnforceOwnership),
		templates.WithLogger(log),
		templates.WithMetrics(m),
	)

	jobs, err := job.NewManager(pool,
		job.WithTask[scheduler.DeliveryPayload](scheduler.NewDeliveryTask(svc, mailer.New(sender, cfg.Mail),
			scheduler.WithDeliveryLogger(log),
			scheduler.WithDeliveryMetrics(m),
		)),
		job.WithScheduledTask(scheduler.NewPurgeAutosavesTask(svc,
			cfg.Templates.AutosaveRetention,
			cfg.Templates.PurgeSchedule,
			log,
		)),
		job.WithQueue(scheduler.Queue, cfg.Jobs.EmailWorkers),
		job.WithMaxWorkers(cfg.Jobs.DefaultWorkers),
		job.WithMaxAttempts(cfg.Jobs.MaxAttempts),
		job.WithJobTimeout(cfg.Jobs.Timeout),
		job.WithLogger(log),
		job.WithMigrations(),
	)
	if err != nil {
		return err
	}

	sched := scheduler.New(svc, jobs,
		scheduler.WithMaxAttempts(cfg.Jobs.MaxAttempts),
		scheduler.WithLogger(log),
		scheduler.WithMetrics(m),
	)

	editorOpts := []editor.Option{editor.WithTemplates(svc), editor.WithLogger(log)}
	if documents != nil {
		editorOpts = append(editorOpts, editor.WithDocumentCache(documents))
	}
	ed, err := editor.New(cfg.Editor, editorOpts...)
	if err != nil {
		return err
	}
	shutdown = append(shutdown, func(context.Context) error { return ed.Close() })

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return err
	}

	app := mailcraft.New(
		mailcraft.WithLogger(log),
		mailcraft.WithMetrics(m),
		mailcraft.WithJobs(jobs),
		mailcraft.WithRootMiddleware(
			middlewares.CORS(middlewares.WithAllowOrigins(cfg.HTTP.CORSOrigins...)),
		),
		mailcraft.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Metrics(m),
			middlewares.Recover(),
			middlewares.Identity(tokens, cfg.Templates.EnforceOwnership),
		),
		mailcraft.WithHandlers(
			handlers.NewTemplates(svc),
			handlers.NewSends(sched),
			handlers.NewEditor(ed, svc),
		),
		mailcraft.WithErrorHandler(handlers.ErrorHandler),
		mailcraft.WithHealthChecks(health...),
	)

	runOpts := []mailcraft.RunOption{
		mailcraft.Address(cfg.HTTP.Addr),
		mailcraft.Logger(log),
		mailcraft.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
	}
	for _, fn := range append(shutdown, logger.FlushSentry()) {
		runOpts = append(runOpts, mailcraft.ShutdownHook(fn))
	}
	handedOver = true
	return app.Run(runOpts...)
}

// release closes resources opened during a failed setup, newest first.
func release(ctx context.Context, log *slog.Logger, hooks []func(context.Context) error) {
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			log.ErrorContext(ctx, "release resource", slog.Any("error", err))
		}
	}
}

// newSender delivers through Resend when an API key is configured and
// logs messages otherwise.
func newSender(cfg *config.Config, log *slog.Logger) (mailer.Sender, error) {
	if cfg.Resend.APIKey == "" {
		log.Warn("RESEND_API_KEY is not set, emails will be logged instead of sent")
		return mailer.NewLogSender(log), nil
	}
	s, err := resend.New(cfg.Resend)
	if err != nil {
		return nil, errors.Join(config.ErrInvalidConfig, err)
	}
	return s, nil
}
