package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/mailcraft/pkg/logger"
)

// taskExecutor is the type-erased form of a registered task.
type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

// failureNotifier is implemented by executors whose task wants to be told
// about terminal failures. NotifyFailed reports whether a hook ran.
type failureNotifier interface {
	NotifyFailed(ctx context.Context, payload json.RawMessage, err error) bool
}

// taskRegistry stores registered task executors by name.
type taskRegistry struct {
	executors map[string]taskExecutor
	mu        sync.RWMutex
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{
		executors: make(map[string]taskExecutor),
	}
}

func (r *taskRegistry) register(name string, executor taskExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = executor
}

func (r *taskRegistry) get(name string) (taskExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	return executor, ok
}

func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.executors))
}

// typedTask is the structural contract for payload-carrying tasks.
type typedTask[P any] interface {
	Name() string
	Handle(context.Context, P) error
}

// failingTask is the optional terminal-failure hook of a typed task.
type failingTask[P any] interface {
	Failed(ctx context.Context, payload P, err error)
}

// taskWrapper decodes JSON payloads for a typed task.
type taskWrapper[P any, T typedTask[P]] struct {
	task T
}

func newTaskWrapper[P any, T typedTask[P]](task T) *taskWrapper[P, T] {
	return &taskWrapper[P, T]{task: task}
}

func (w *taskWrapper[P, T]) decode(raw json.RawMessage) (P, error) {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return payload, errors.Join(ErrInvalidPayload, err)
		}
	}
	return payload, nil
}

// Execute decodes the payload and calls the typed handler.
func (w *taskWrapper[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	payload, err := w.decode(raw)
	if err != nil {
		return err
	}
	return w.task.Handle(ctx, payload)
}

// NotifyFailed forwards a terminal failure to the task's Failed hook, if any.
// An undecodable payload is forwarded as the zero value.
func (w *taskWrapper[P, T]) NotifyFailed(ctx context.Context, raw json.RawMessage, err error) bool {
	ft, ok := any(w.task).(failingTask[P])
	if !ok {
		return false
	}
	payload, _ := w.decode(raw)
	ft.Failed(ctx, payload, err)
	return true
}

// notifyTerminal hands a terminal failure to the task's Failed hook. The hook
// owns alerting, so the failure is only escalated to critical here when no
// hook ran.
func notifyTerminal(ctx context.Context, log *slog.Logger, executor taskExecutor, payload json.RawMessage, err error, msg string, attrs ...any) {
	if n, ok := executor.(failureNotifier); ok && n.NotifyFailed(ctx, payload, err) {
		log.ErrorContext(ctx, msg, attrs...)
		return
	}
	logger.Critical(ctx, log, msg, attrs...)
}

// scheduledTaskExecutor adapts a payload-less periodic handler.
type scheduledTaskExecutor struct {
	handler func(context.Context) error
}

func (e *scheduledTaskExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}
