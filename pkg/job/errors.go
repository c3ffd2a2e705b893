package job

import "errors"

var (
	// ErrNotConfigured is returned when no job queue is configured.
	ErrNotConfigured = errors.New("job: not configured")

	// ErrUnknownTask is returned when enqueueing or executing a task that was never registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a payload cannot be decoded.
	// Jobs failing with it are cancelled instead of retried.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrTaskPanicked wraps the recovered value of a panicking task.
	ErrTaskPanicked = errors.New("job: task panicked")

	// ErrEmptyBatch is returned by EnqueueBatch when there is nothing to insert.
	ErrEmptyBatch = errors.New("job: empty batch")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")
)
