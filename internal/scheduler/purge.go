package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailcraft/pkg/logger"
)

// AutosavePurger deletes stale autosaves. *templates.Service implements it.
type AutosavePurger interface {
	PurgeStaleAutosaves(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PurgeAutosavesTask is a periodic task that removes autosaves left behind
// by editing sessions that never ended with an explicit save.
type PurgeAutosavesTask struct {
	store     AutosavePurger
	logger    *slog.Logger
	schedule  string
	retention time.Duration
}

// NewPurgeAutosavesTask runs daily at 03:00 unless schedule is set.
func NewPurgeAutosavesTask(store AutosavePurger, retention time.Duration, schedule string, log *slog.Logger) *PurgeAutosavesTask {
	if schedule == "" {
		schedule = "0 3 * * *"
	}
	if log == nil {
		log = logger.NewNope()
	}
	return &PurgeAutosavesTask{store: store, retention: retention, schedule: schedule, logger: log}
}

func (t *PurgeAutosavesTask) Name() string {
	return "purge_autosaves"
}

func (t *PurgeAutosavesTask) Schedule() string {
	return t.schedule
}

func (t *PurgeAutosavesTask) Handle(ctx context.Context) error {
	n, err := t.store.PurgeStaleAutosaves(ctx, t.retention)
	if err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "stale autosaves purged",
		slog.Int64("deleted", n),
		slog.Duration("retention", t.retention),
	)
	return nil
}
