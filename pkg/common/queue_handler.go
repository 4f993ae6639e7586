package common

import (
	"sync"
)

// QueueProcessor is a function that processes a batch of items from the queue.
type QueueProcessor[V any] func(items []V)

// QueueHandler processes queued items in batches on a background goroutine,
// in the order they were added.
type QueueHandler[V any] struct {
	mu        sync.Mutex
	queue     []V
	processor QueueProcessor[V]
	chunkSize int
	wake      chan struct{}
	done      chan struct{}
	closed    bool
}

// NewQueueHandler creates a QueueHandler and starts processing.
func NewQueueHandler[V any](processor QueueProcessor[V], chunkSize int) *QueueHandler[V] {
	if chunkSize < 1 {
		chunkSize = 1
	}
	q := &QueueHandler[V]{
		processor: processor,
		chunkSize: chunkSize,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go q.processQueue()
	return q
}

// Add queues items. Items added after Close are dropped.
func (h *QueueHandler[V]) Add(item ...V) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.queue = append(h.queue, item...)
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
	return true
}

// Close processes what is queued and stops the handler.
func (h *QueueHandler[V]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		<-h.done
		return
	}
	h.closed = true
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
	<-h.done
}

func (h *QueueHandler[V]) next() ([]V, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil, h.closed
	}
	items := h.queue[:min(h.chunkSize, len(h.queue))]
	h.queue = h.queue[len(items):]
	return items, false
}

func (h *QueueHandler[V]) processQueue() {
	defer close(h.done)
	for {
		items, stop := h.next()
		if stop {
			return
		}
		if len(items) == 0 {
			<-h.wake
			continue
		}
		h.processor(items)
	}
}
