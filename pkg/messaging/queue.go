package messaging

import (
	"sync"
	"time"
)

// BatchProcessor handles one drained batch of queued messages.
type BatchProcessor[V any] func(items []V)

// OutboundQueue buffers messages and hands them to the processor in
// background batches, keeping publish latency off the caller.
type OutboundQueue[V any] struct {
	mu        sync.Mutex
	queue     []V
	processor BatchProcessor[V]
	chunkSize int
}

func NewOutboundQueue[V any](processor BatchProcessor[V], chunkSize int) *OutboundQueue[V] {
	q := &OutboundQueue[V]{
		queue:     make([]V, 0),
		processor: processor,
		chunkSize: chunkSize,
	}
	go q.processQueue()
	return q
}

// Add enqueues messages for background delivery.
func (h *OutboundQueue[V]) Add(item ...V) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, item...)
}

func (h *OutboundQueue[V]) processQueue() {
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.mu.Unlock()
			time.Sleep(time.Second)
			continue
		}

		items := h.queue[:min(h.chunkSize, len(h.queue))]
		h.queue = h.queue[len(items):]
		h.mu.Unlock()

		h.processor(items)
	}
}
