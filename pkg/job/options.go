package job

import (
	"context"
	"log/slog"
	"time"
)

// config holds manager configuration assembled from options.
type config struct {
	registry    *taskRegistry
	queues      map[string]int
	logger      *slog.Logger
	schedules   []scheduleConfig
	maxWorkers  int
	maxAttempts int
	jobTimeout  time.Duration
	migrate     bool
}

func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

type scheduleConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
}

// Option configures the Manager.
type Option func(*config)

// WithTask registers a task that receives a JSON payload of type P.
//
//	job.WithTask[scheduler.DeliveryPayload](scheduler.NewDeliveryTask(store, sender, log))
//
// P must be given explicitly; Go cannot infer it from the Handle method.
func WithTask[P any, T typedTask[P]](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), newTaskWrapper[P, T](task))
	}
}

// WithScheduledTask registers a periodic task.
// Schedule() must return a five-field cron expression.
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger used by the manager and River.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithMaxAttempts sets the default retry budget for jobs that do not
// specify MaxAttempts at enqueue time.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithJobTimeout bounds a single execution of any job.
func WithJobTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.jobTimeout = d
		}
	}
}

// WithMigrations makes Start apply River's schema migrations first.
func WithMigrations() Option {
	return func(c *config) {
		c.migrate = true
	}
}
