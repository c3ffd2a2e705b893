package internal

import "github.com/dmitrymomot/mailcraft/pkg/job"

// WithJobs attaches a River job manager. It is started before the server
// accepts requests, stopped after the server drains and reported as the
// "jobs" readiness check when health checks are enabled.
//
// Example:
//
//	jobs, err := job.NewManager(pool,
//	    job.WithTask[scheduler.DeliveryPayload](delivery),
//	    job.WithScheduledTask(purge),
//	    job.WithQueue(scheduler.Queue, 10),
//	)
//	app := mailcraft.New(mailcraft.WithJobs(jobs))
func WithJobs(m *job.Manager) Option {
	return func(a *App) {
		a.jobs = m
	}
}

// Jobs returns the configured job manager, or nil.
func (a *App) Jobs() *job.Manager {
	return a.jobs
}
