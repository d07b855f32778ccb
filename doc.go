// Package executor runs a batch of independent workers under a fixed
// concurrency ceiling.
//
// A Scheduler is constructed with a WorkerFactory and options:
//
//	s, err := executor.New(factory, executor.WithMaxWorkers(4))
//
// Start invokes the factory, queues its workers FIFO, and dispatches up to
// the ceiling, each worker on its own goroutine. As workers finish, the
// scheduler pulls more from the queue; when nothing is pending or running,
// every registered Observer is notified exactly once. Stop cancels all
// running workers cooperatively and resets the scheduler.
//
// Ordering
//
// Dispatch order is the factory's slice order; completion order is whatever
// the workers' runtimes produce. Only dispatch order is deterministic.
//
// Worker outcomes
//
// A worker's returned error (or recovered panic) is logged and counted but
// otherwise treated like a clean return: it frees a slot and, at the end,
// contributes to the same single batch-complete notification. There is no
// automatic retry.
//
// Observability
//
// Logging goes through an injected zap.Logger (silent by default) and metrics
// through the metrics.Provider seam; metrics/prom adapts the seam to a
// Prometheus registry.
package executor
