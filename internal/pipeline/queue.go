package pipeline

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("queue is closed")

// Queue is an unbounded FIFO of download tasks shared by one producer (the
// listing walker) and N consumer workers. A channel would cap the backlog;
// listing pages can outrun the workers by thousands of tasks, so the buffer
// grows as needed.
//
// The queue itself only tracks pending tasks. "Drained" - empty AND every
// dequeued task finished - is established by the Coordinator, which joins
// its workers after Dequeue starts reporting closure.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Task
	closed bool
}

// NewQueue creates an empty open queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a task to the tail.
func (q *Queue) Enqueue(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, t)
	q.cond.Signal()
	return nil
}

// Close marks the producer side done. Consumers keep draining what is left;
// once the queue is empty Dequeue reports closure. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
}

// Dequeue removes and returns the head task, blocking while the queue is
// empty but still open. ok is false once the queue is closed and empty -
// the worker's signal to exit.
func (q *Queue) Dequeue() (task Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Task{}, false
	}

	task = q.items[0]
	q.items = q.items[1:]
	return task, true
}

// Len returns the number of tasks currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
