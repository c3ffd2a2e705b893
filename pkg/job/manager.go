package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/robfig/cron/v3"
)

const (
	defaultMaxWorkers = 100
	defaultQueue      = river.QueueDefault
)

// Manager processes jobs and, through the embedded Enqueuer, inserts them.
type Manager struct {
	*Enqueuer
	registry *taskRegistry
	logger   *slog.Logger
	migrate  bool

	mu      sync.Mutex
	started bool
}

// NewManager creates a job manager.
// The River client is created immediately, so jobs can be enqueued before Start.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}

	queues := map[string]river.QueueConfig{
		defaultQueue: {MaxWorkers: cfg.maxWorkers},
	}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}

	periodicJobs := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, sched := range cfg.schedules {
		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", sched.schedule, err)
		}

		name := sched.name
		periodicJobs = append(periodicJobs, river.NewPeriodicJob(
			schedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))
		cfg.registry.register(name, &scheduledTaskExecutor{handler: sched.handler})
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{
		registry: cfg.registry,
		logger:   cfg.logger,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		MaxAttempts:  cfg.maxAttempts,
		JobTimeout:   cfg.jobTimeout,
		Logger:       cfg.logger,
		ErrorHandler: &panicHandler{registry: cfg.registry, logger: cfg.logger},
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{
			pool:   pool,
			client: client,
			logger: cfg.logger,
		},
		registry: cfg.registry,
		logger:   cfg.logger,
		migrate:  cfg.migrate,
	}, nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	if m.migrate {
		if err := migrateRiver(ctx, m.pool); err != nil {
			return err
		}
	}

	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.Info("job manager started",
		slog.Any("tasks", m.registry.names()),
	)
	return nil
}

// Stop waits for running jobs to finish and shuts the client down.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}

	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

// EnqueueBatch atomically adds one job per payload for a registered task.
func (m *Manager) EnqueueBatch(ctx context.Context, name string, payloads []any, opts ...EnqueueOption) error {
	if err := m.checkRegistered(name); err != nil {
		return err
	}
	return m.Enqueuer.EnqueueBatch(ctx, name, payloads, opts...)
}

func (m *Manager) checkRegistered(name string) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return nil
}

// StartFunc returns a startup hook for the application.
func (m *Manager) StartFunc() func(context.Context) error {
	return m.Start
}

// Shutdown returns a shutdown hook for the application.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}

func migrateRiver(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("job: create migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("job: migrate: %w", err)
	}
	return nil
}

// taskArgs is the single River job kind for every registered task.
type taskArgs struct {
	TaskName string          `json:"task_name"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string {
	return "mailcraft:task"
}

// taskWorker dispatches every job to its task through the registry.
type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *taskRegistry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	name := job.Args.TaskName
	executor, ok := w.registry.get(name)
	if !ok || executor == nil {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, name))
	}

	log := w.logger.With(
		slog.String("task", name),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)
	log.DebugContext(ctx, "executing task")

	err := executor.Execute(ctx, job.Args.Payload)
	if err == nil {
		log.DebugContext(ctx, "task completed")
		return nil
	}

	if !isFinalAttempt(job.Attempt, job.MaxAttempts, err) {
		log.WarnContext(ctx, "task failed, will retry",
			slog.Int("max_attempts", job.MaxAttempts),
			slog.Any("error", err),
		)
		return err
	}

	notifyTerminal(ctx, log, executor, job.Args.Payload, err, "task failed permanently",
		slog.Int("max_attempts", job.MaxAttempts),
		slog.Any("error", err),
	)

	if errors.Is(err, ErrInvalidPayload) {
		return river.JobCancel(err)
	}
	return err
}

// isFinalAttempt reports whether a failed attempt will not be retried.
func isFinalAttempt(attempt, maxAttempts int, err error) bool {
	if errors.Is(err, ErrInvalidPayload) {
		return true
	}
	return attempt >= maxAttempts
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
