// Package buffer holds the queue that sits between a streaming producer and
// its consumer.
package buffer

import "sync"

// Unbounded is a FIFO queue whose Send never blocks. A single pump goroutine
// forwards queued items to the channel returned by Receive, which is closed
// once the queue has been closed and emptied.
//
//	q := buffer.NewUnbounded[string]()
//	go produce(q) // q.Send(...) then q.Close()
//	for s := range q.Receive() {
//		...
//	}
type Unbounded[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool

	// wake has capacity 1 so a signal is never lost while the pump is busy.
	wake chan struct{}
	out  chan T
}

// NewUnbounded returns an open queue with its pump running.
func NewUnbounded[T any]() *Unbounded[T] {
	q := &Unbounded[T]{
		wake: make(chan struct{}, 1),
		out:  make(chan T),
	}
	go q.pump()
	return q
}

func (q *Unbounded[T]) pump() {
	defer close(q.out)
	for {
		batch, closed := q.take()
		for _, item := range batch {
			q.out <- item
		}
		if closed && len(batch) == 0 {
			return
		}
		if len(batch) == 0 {
			<-q.wake
		}
	}
}

// take swaps out everything queued so far.
func (q *Unbounded[T]) take() ([]T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.queue
	q.queue = nil
	return batch, q.closed
}

func (q *Unbounded[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Send enqueues item. Items sent after Close are dropped.
func (q *Unbounded[T]) Send(item T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.queue = append(q.queue, item)
	q.mu.Unlock()
	q.signal()
}

// Receive returns the output channel.
func (q *Unbounded[T]) Receive() <-chan T {
	return q.out
}

// Close stops accepting items. Already queued items are still delivered.
// Calling Close more than once is a no-op.
func (q *Unbounded[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Len reports how many items are waiting to be picked up by the pump.
func (q *Unbounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
