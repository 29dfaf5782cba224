package tts

// queueItem pairs a value with its priority and arrival order.
type queueItem[T any] struct {
	value    T
	priority int
	seq      uint64
}

// PriorityQueue is a FIFO queue with priorities: Dequeue returns the
// highest-priority item, oldest first within a priority. Not safe for
// concurrent use; the Player guards it with its own lock.
type PriorityQueue[T any] struct {
	items []queueItem[T]
	seq   uint64
}

// NewPriorityQueue creates an empty queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{}
}

// Enqueue adds an element with the given priority.
func (q *PriorityQueue[T]) Enqueue(value T, priority int) {
	q.seq++
	q.items = append(q.items, queueItem[T]{value: value, priority: priority, seq: q.seq})
}

// Dequeue removes and returns the best element. The boolean is false if
// the queue was empty. The queue stays short (pending speech requests),
// so a linear scan beats maintaining a heap.
func (q *PriorityQueue[T]) Dequeue() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	best := 0
	for i := 1; i < len(q.items); i++ {
		if q.items[i].priority > q.items[best].priority ||
			(q.items[i].priority == q.items[best].priority && q.items[i].seq < q.items[best].seq) {
			best = i
		}
	}

	item := q.items[best]
	q.items = append(q.items[:best], q.items[best+1:]...)
	return item.value, true
}

// Len returns the number of queued elements.
func (q *PriorityQueue[T]) Len() int {
	return len(q.items)
}

// Drain removes all queued elements and returns how many were dropped.
func (q *PriorityQueue[T]) Drain() int {
	n := len(q.items)
	q.items = q.items[:0]
	return n
}
