// Package queue defines the contract for buffering readings between the
// MQTT callback and the ingest loop.
//
// Ingestion is at-most-once: a full queue drops the reading rather than
// blocking the transport callback.
package queue

import (
	"context"
	"sync"

	"github.com/okian/waterline/internal/domain/model"
	"github.com/okian/waterline/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10_000
)

// Envelope is the payload type flowing through the queue.
type Envelope = model.Envelope

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a reading envelope to the queue.
	// Returns false if the queue is full and the envelope was not enqueued.
	Enqueue(ctx context.Context, e Envelope) bool

	// Dequeue returns a channel that will receive envelopes as they
	// become available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Envelope

	// Len returns the current number of queued envelopes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// envelopes can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	envelopes chan Envelope
	capacity  int
	mu        sync.RWMutex
	closed    bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.envelopes = make(chan Envelope, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a reading envelope to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Envelope) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.envelopes <- e:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.envelopes))
		return true
	case <-ctx.Done():
		return false
	default:
		metrics.RecordQueueFullDrop()
		return false
	}
}

// Dequeue returns a channel that will receive envelopes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Envelope {
	out := make(chan Envelope)
	go func() {
		defer close(out)
		for e := range q.envelopes {
			select {
			case out <- e:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.envelopes))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued envelopes.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.envelopes)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	close(q.envelopes)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
