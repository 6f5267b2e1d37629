// Package shutdownqueue is a process-wide LIFO queue of named cleanup tasks.
//
// Components register their teardown as they start:
//
//	shutdownqueue.Add("postgres", func(context.Context) error { return db.Close() })
//
// and main drains the queue once on exit:
//
//	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
//	defer cancel()
//	err := shutdownqueue.Shutdown(ctx)
//
// Tasks run once, newest first, so a component is closed before anything it
// depends on. Panics are recovered. Errors are joined and carry the task name.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task should honor ctx and return an error if it cannot finish in time.
type Task func(ctx context.Context) error

type entry struct {
	name string
	run  Task
}

type queue struct {
	mu     sync.Mutex
	tasks  []entry
	closed bool
}

var q = &queue{tasks: make([]entry, 0, 8)}

// Add registers a task. Nil tasks and tasks added after Shutdown has started
// are ignored.
func Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, entry{name: name, run: t})
}

// Len reports how many tasks are waiting.
func Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains the queue. Later calls are no-ops. If ctx ends mid-drain
// the remaining tasks are skipped and the context error is included.
func Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", tasks[i].name, ctx.Err()))
			return errors.Join(errs...)
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, e entry) (err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("shutdown %s: panic: %v", e.name, r)
		}

		attrs := []any{slog.String("task", e.name), slog.Duration("took", time.Since(start))}
		if err != nil {
			slog.Error("shutdown task failed", append(attrs, slog.Any("err", err))...)
			return
		}

		slog.Info("shutdown task done", attrs...)
	}()

	err = e.run(ctx)
	if err != nil {
		return fmt.Errorf("shutdown %s: %w", e.name, err)
	}

	return nil
}
