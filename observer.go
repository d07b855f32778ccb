package executor

// Observer receives the one-shot batch-complete notification: it fires exactly
// once per run, when the last worker finishes and nothing remains pending.
// It carries no per-worker outcome; workers that errored and workers that
// returned cleanly are indistinguishable at this level.
//
// Observers are compared by identity in RemoveObserver, so implementations
// must be comparable (ObserverFunc returns a fresh identity per call).
type Observer interface {
	BatchCompleted()
}

// ObserverFunc adapts a plain function to Observer.
func ObserverFunc(fn func()) Observer {
	return &observerFunc{fn: fn}
}

type observerFunc struct {
	fn func()
}

func (o *observerFunc) BatchCompleted() { o.fn() }

// observerList is the external listener registry. Like the worker containers,
// it is guarded by the owning scheduler's lock; snapshot lets the scheduler
// invoke callbacks after releasing it.
type observerList struct {
	observers []Observer
}

func (l *observerList) add(o Observer) {
	for _, existing := range l.observers {
		if existing == o {
			return
		}
	}
	l.observers = append(l.observers, o)
}

func (l *observerList) remove(o Observer) {
	for i, existing := range l.observers {
		if existing == o {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

func (l *observerList) snapshot() []Observer {
	out := make([]Observer, len(l.observers))
	copy(out, l.observers)
	return out
}
