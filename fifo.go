package executor

// fifo is a slice-backed FIFO queue holding not-yet-started workers.
// It is not safe for concurrent use on its own; all access goes through
// the owning scheduler's lock.
type fifo[T any] struct {
	items []T
}

func (q *fifo[T]) Len() int { return len(q.items) }

func (q *fifo[T]) Push(v T) { q.items = append(q.items, v) }

// Pop removes and returns the oldest element. Callers must check Len first.
func (q *fifo[T]) Pop() T {
	v := q.items[0]
	q.items[0] = *new(T)
	q.items = q.items[1:]
	return v
}

func (q *fifo[T]) Reset() { q.items = nil }
