// Package job provides background job processing using River (Postgres-native queue).
//
// It wraps River with a small type-safe API: tasks are plain structs, payloads
// are JSON, and every task runs through a single River worker that dispatches
// by task name.
//
// # Task Definition
//
// Tasks are defined as structs with Name() and Handle() methods.
// No interface import is required:
//
//	type DeliverEmail struct {
//	    sender mailer.Sender
//	}
//
//	func (t *DeliverEmail) Name() string { return "deliver_email" }
//
//	func (t *DeliverEmail) Handle(ctx context.Context, p DeliveryPayload) error {
//	    return t.sender.Send(ctx, buildEmail(p))
//	}
//
// A task may also implement Failed(ctx, payload, err). It is called once,
// after the final attempt fails, so the task can record the terminal failure.
// Returning an error from Handle never affects other jobs.
//
// # Scheduled Tasks
//
// Periodic tasks have a Schedule() method returning a five-field cron
// expression and a payload-less Handle(ctx):
//
//	func (t *PurgeAutosaves) Schedule() string { return "0 3 * * *" }
//	func (t *PurgeAutosaves) Handle(ctx context.Context) error { ... }
//
// # Manager
//
//	jobs, err := job.NewManager(pool,
//	    job.WithTask[scheduler.DeliveryPayload](deliverTask),
//	    job.WithScheduledTask(purgeTask),
//	    job.WithQueue("email", 10),
//	    job.WithMaxAttempts(3),
//	    job.WithLogger(log),
//	)
//
// Jobs can be enqueued before Start. Start applies River's schema migrations
// when WithMigrations is set.
//
// # Enqueueing
//
//	err := jobs.EnqueueBatch(ctx, "deliver_email", payloads,
//	    job.InQueue("email"),
//	    job.ScheduledAt(sendAt),
//	)
//
// EnqueueBatch inserts several jobs of the same task in one transaction:
// either all are accepted or none are.
package job
