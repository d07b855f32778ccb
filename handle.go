package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handle binds exactly one Worker to one goroutine. It owns the worker's
// execution context; kill cancels that context and nothing else. A worker
// that ignores cancellation simply finishes on its own schedule.
type handle struct {
	id      string
	worker  Worker
	cancel  context.CancelFunc
	started time.Time
}

// newHandle launches the worker on its own goroutine and returns immediately.
// onFinished is invoked exactly once from that goroutine when the worker
// returns or panics; a recovered panic is reported as ErrWorkerPanicked.
// Registration of the returned handle must happen before the scheduler lock
// is released, so the completion callback cannot outrun it.
func newHandle(ctx context.Context, w Worker, log *zap.Logger, onFinished func(*handle, error)) *handle {
	hctx, cancel := context.WithCancel(ctx)

	h := &handle{
		id:      uuid.NewString(),
		worker:  w,
		cancel:  cancel,
		started: time.Now(),
	}

	go func() {
		var err error
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%w: %v", ErrWorkerPanicked, rec)
				log.Warn("recovered worker panic", zap.String("handle", h.id), zap.Error(err))
			}
			cancel()
			onFinished(h, err)
		}()

		log.Debug("worker started", zap.String("handle", h.id))
		err = w.Start(hctx)
	}()

	return h
}

// kill requests cooperative cancellation. Best-effort: it never blocks, never
// errors, and gives no guarantee the worker stops promptly.
func (h *handle) kill() { h.cancel() }
