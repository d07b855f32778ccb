package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/traderknot/executor/metrics"
)

// Scheduler runs a batch of independent workers without ever exceeding a
// configured concurrency ceiling, replenishing the running set from a FIFO
// backlog as workers finish, and notifying registered observers exactly once
// when the batch drains. Methods are safe for concurrent use.
type Scheduler struct {
	// noCopy prevents accidental copying of the scheduler.
	//go:nocopy
	nc noCopy

	config  *config
	factory WorkerFactory
	log     *zap.Logger

	// mu guards pending, running, observers, active, ctx and batchStart.
	// The completion handler's remove -> quiescence check -> replenish-or-notify
	// sequence executes as a single critical section under it.
	mu         sync.Mutex
	pending    fifo[Worker]
	running    map[Worker]*handle
	observers  observerList
	active     bool
	ctx        context.Context
	batchStart time.Time

	// instruments
	dispatchedTotal metrics.Counter
	finishedTotal   metrics.Counter
	workerErrors    metrics.Counter
	runningWorkers  metrics.UpDownCounter
	pendingWorkers  metrics.UpDownCounter
	workerSeconds   metrics.Histogram
	batchSeconds    metrics.Histogram
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a Scheduler drawing its workers from factory, configured via
// functional options.
func New(factory WorkerFactory, opts ...Option) (*Scheduler, error) {
	if factory == nil {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "factory must not be nil"))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	s := &Scheduler{
		config:  &cfg,
		factory: factory,
		log:     cfg.Logger,
		running: make(map[Worker]*handle),
	}
	s.initInstruments(cfg.Metrics)
	return s, nil
}

func (s *Scheduler) initInstruments(p metrics.Provider) {
	s.dispatchedTotal = p.Counter("executor_workers_dispatched_total",
		metrics.WithDescription("Workers moved from the pending queue into execution"), metrics.WithUnit("1"))
	s.finishedTotal = p.Counter("executor_workers_finished_total",
		metrics.WithDescription("Workers that completed, regardless of outcome"), metrics.WithUnit("1"))
	s.workerErrors = p.Counter("executor_worker_errors_total",
		metrics.WithDescription("Workers that completed with an error or panic"), metrics.WithUnit("1"))
	s.runningWorkers = p.UpDownCounter("executor_workers_running",
		metrics.WithDescription("Workers currently executing"), metrics.WithUnit("1"))
	s.pendingWorkers = p.UpDownCounter("executor_workers_pending",
		metrics.WithDescription("Workers queued and not yet started"), metrics.WithUnit("1"))
	s.workerSeconds = p.Histogram("executor_worker_duration_seconds",
		metrics.WithDescription("Per-worker execution time"), metrics.WithUnit("seconds"))
	s.batchSeconds = p.Histogram("executor_batch_duration_seconds",
		metrics.WithDescription("Time from batch start to quiescence"), metrics.WithUnit("seconds"))
}

// Start invokes the factory, fills the pending queue with its workers in
// order, and dispatches up to the concurrency ceiling. It returns
// ErrNoWorkers when the factory yields an empty batch (no dispatch occurs and
// all containers stay empty) and ErrAlreadyStarted while a previous batch is
// still processing.
//
// ctx is the root context for every worker in the batch: canceling it
// signals cancellation to all running workers, though the batch still drains
// through their completion signals as usual.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	workers, err := s.factory.CreateWorkers(ctx)
	if err != nil {
		return fmt.Errorf(Namespace+": creating workers: %w", err)
	}
	if len(workers) == 0 {
		return ErrNoWorkers
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active || s.processing() {
		return ErrAlreadyStarted
	}

	s.ctx = ctx
	s.active = true
	s.batchStart = time.Now()
	for _, w := range workers {
		s.pending.Push(w)
	}
	s.pendingWorkers.Add(int64(len(workers)))

	s.log.Debug("batch initialized",
		zap.Int("workers", len(workers)),
		zap.Uint("max_workers", s.config.MaxWorkers))

	s.runJobs()
	return nil
}

// Stop requests cancellation on every running handle and resets all
// containers. It does not wait for cancellation acknowledgment; late
// completion signals from killed workers are ignored. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.running {
		h.kill()
	}
	s.reset()
	s.log.Debug("scheduler stopped")
}

// reset clears all containers in one step. Caller must hold mu.
func (s *Scheduler) reset() {
	s.runningWorkers.Add(-int64(len(s.running)))
	s.pendingWorkers.Add(-int64(s.pending.Len()))
	s.pending.Reset()
	s.running = make(map[Worker]*handle)
	s.active = false
}

// runJobs moves up to available-slot workers from the pending queue into the
// running set, FIFO. A no-op when the queue is empty or the ceiling is
// reached. Caller must hold mu: a freshly created handle must be registered
// before the lock is released, so its completion callback (which also takes
// mu) cannot observe an unregistered worker.
func (s *Scheduler) runJobs() {
	available := int(s.config.MaxWorkers) - len(s.running)
	for available > 0 && s.pending.Len() > 0 {
		w := s.pending.Pop()
		available--

		h := newHandle(s.ctx, w, s.log, s.onWorkerFinished)
		s.running[w] = h

		s.pendingWorkers.Add(-1)
		s.runningWorkers.Add(1)
		s.dispatchedTotal.Add(1)
		s.log.Debug("worker dispatched",
			zap.String("handle", h.id),
			zap.Int("running", len(s.running)),
			zap.Int("pending", s.pending.Len()))
	}
}

// onWorkerFinished is the completion handler, invoked from the finishing
// worker's own goroutine. Removal is idempotent: a duplicate or stale signal
// (same worker, different handle) leaves the running set untouched. The
// remove, quiescence check, and replenish-or-notify decision form one
// critical section, so two concurrent completions can never double-count a
// slot or both observe "not yet quiescent" and mutually skip the final
// notification.
func (s *Scheduler) onWorkerFinished(h *handle, err error) {
	s.mu.Lock()

	if cur, ok := s.running[h.worker]; ok && cur == h {
		delete(s.running, h.worker)
		s.runningWorkers.Add(-1)
		s.finishedTotal.Add(1)
		s.workerSeconds.Record(time.Since(h.started).Seconds())

		if err != nil {
			// Outcome is recorded here and nowhere else: observers see only
			// batch completion.
			s.workerErrors.Add(1)
			s.log.Warn("worker finished with error", zap.String("handle", h.id), zap.Error(err))
		} else {
			s.log.Debug("worker finished", zap.String("handle", h.id))
		}
	}

	if !s.active {
		// Stopped, or a duplicate signal after the batch already drained.
		s.mu.Unlock()
		return
	}

	if s.processing() {
		s.runJobs()
		s.mu.Unlock()
		return
	}

	// Quiescent: nothing pending, nothing running. Flip to idle before
	// releasing the lock so the notification cannot fire twice, then invoke
	// observers outside the lock so they may safely re-enter the scheduler.
	s.active = false
	elapsed := time.Since(s.batchStart)
	obs := s.observers.snapshot()
	s.mu.Unlock()

	s.batchSeconds.Record(elapsed.Seconds())
	s.log.Debug("batch completed", zap.Duration("elapsed", elapsed))
	for _, o := range obs {
		o.BatchCompleted()
	}
}

// processing reports whether any work is pending or running. Caller must hold mu.
func (s *Scheduler) processing() bool {
	return s.pending.Len() > 0 || len(s.running) > 0
}

// Processing reports whether the scheduler currently has pending or running
// workers. It is the sole termination-detection signal: the batch-complete
// notification fires on its true-to-false transition.
func (s *Scheduler) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing()
}

// Running returns the number of currently executing workers.
func (s *Scheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// Pending returns the number of queued, not-yet-started workers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// AddObserver registers an external batch-complete listener. Adding the same
// observer twice has no effect.
func (s *Scheduler) AddObserver(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers.add(o)
}

// RemoveObserver unregisters a previously added listener. Unknown observers
// are ignored.
func (s *Scheduler) RemoveObserver(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers.remove(o)
}
