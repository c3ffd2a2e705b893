package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
)

// Enqueuer inserts jobs through the manager's River client.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueueBatch inserts one job per payload, all with the same task name and
// options, in a single transaction. Either every job is inserted or none is.
func (e *Enqueuer) EnqueueBatch(ctx context.Context, name string, payloads []any, opts ...EnqueueOption) error {
	params, err := buildBatchParams(name, payloads, opts...)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		_, err := e.client.InsertManyTx(ctx, tx, params)
		return err
	})
	if err != nil {
		return fmt.Errorf("job: enqueue batch: %w", err)
	}

	e.logger.DebugContext(ctx, "jobs enqueued",
		slog.String("task", name),
		slog.Int("count", len(params)),
	)
	return nil
}

// buildJobArgs creates River job arguments from the task name and payload.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
	}

	return &taskArgs{
		TaskName: name,
		Payload:  raw,
	}, buildInsertOpts(opts...), nil
}

func buildBatchParams(name string, payloads []any, opts ...EnqueueOption) ([]river.InsertManyParams, error) {
	if len(payloads) == 0 {
		return nil, ErrEmptyBatch
	}

	params := make([]river.InsertManyParams, 0, len(payloads))
	for i, payload := range payloads {
		args, insertOpts, err := buildJobArgs(name, payload, opts...)
		if err != nil {
			return nil, fmt.Errorf("job: batch item %d: %w", i, err)
		}
		params = append(params, river.InsertManyParams{Args: args, InsertOpts: insertOpts})
	}
	return params, nil
}
