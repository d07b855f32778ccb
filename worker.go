package executor

import (
	"context"
)

// Worker is one independently executable unit of work. Start runs the worker
// to completion; it should observe ctx and return early when ctx is canceled.
// The returned error is recorded for logging and metrics only: the scheduler
// treats errored and clean completions identically.
//
// Workers are used as map keys inside the scheduler, so implementations must
// be comparable (pointer receivers satisfy this naturally). The same Worker
// value must not be scheduled twice within one batch.
type Worker interface {
	Start(ctx context.Context) error
}

// WorkerFactory produces the initial batch of workers for one run.
// The returned slice must be non-empty; Start fails with ErrNoWorkers otherwise.
// Workers are dispatched in slice order.
type WorkerFactory interface {
	CreateWorkers(ctx context.Context) ([]Worker, error)
}

// WorkerFunc adapts a plain function to Worker. Each call returns a distinct
// identity, so the same function may back several scheduled workers.
func WorkerFunc(fn func(ctx context.Context) error) Worker {
	return &workerFunc{fn: fn}
}

type workerFunc struct {
	fn func(ctx context.Context) error
}

func (w *workerFunc) Start(ctx context.Context) error { return w.fn(ctx) }

// WorkerFactoryFunc adapts a function to WorkerFactory.
type WorkerFactoryFunc func(ctx context.Context) ([]Worker, error)

func (f WorkerFactoryFunc) CreateWorkers(ctx context.Context) ([]Worker, error) { return f(ctx) }

// StaticFactory returns a WorkerFactory that yields the given workers as-is.
// Each Start call receives the same slice, so a scheduler driven by a static
// factory is restartable only after the previous batch fully drained.
func StaticFactory(workers ...Worker) WorkerFactory {
	return WorkerFactoryFunc(func(context.Context) ([]Worker, error) {
		return workers, nil
	})
}
