package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// panicHandler gives panicking tasks the same terminal-failure treatment as
// tasks returning an error. River recovers the panic and retries the job;
// on the last attempt the task's Failed hook runs.
type panicHandler struct {
	registry *taskRegistry
	logger   *slog.Logger
}

// HandleError leaves returned errors to River's default retry policy.
// taskWorker already reports them.
func (h *panicHandler) HandleError(context.Context, *rivertype.JobRow, error) *river.ErrorHandlerResult {
	return nil
}

func (h *panicHandler) HandlePanic(ctx context.Context, row *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	var args taskArgs
	if err := json.Unmarshal(row.EncodedArgs, &args); err != nil {
		h.logger.ErrorContext(ctx, "task panicked with undecodable args",
			slog.Int64("job_id", row.ID),
			slog.Any("panic", panicVal),
		)
		return nil
	}

	log := h.logger.With(
		slog.String("task", args.TaskName),
		slog.Int64("job_id", row.ID),
		slog.Int("attempt", row.Attempt),
	)
	err := fmt.Errorf("%w: %v", ErrTaskPanicked, panicVal)

	if row.Attempt < row.MaxAttempts {
		log.ErrorContext(ctx, "task panicked, will retry",
			slog.Any("error", err),
			slog.String("stack", trace),
		)
		return nil
	}

	executor, _ := h.registry.get(args.TaskName)
	notifyTerminal(ctx, log, executor, args.Payload, err, "task panicked on final attempt",
		slog.Any("error", err),
		slog.String("stack", trace),
	)
	return nil
}
