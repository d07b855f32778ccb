package executor

import "errors"

const Namespace = "executor"

var (
	// ErrNoWorkers is returned by Start when the factory yields an empty batch.
	// No dispatch occurs in that case.
	ErrNoWorkers = errors.New(Namespace + ": worker factory produced no workers")

	// ErrAlreadyStarted is returned by Start while a previous batch is still processing.
	ErrAlreadyStarted = errors.New(Namespace + ": scheduler is already processing a batch")

	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
	ErrWorkerPanicked = errors.New(Namespace + ": worker panicked")
)
