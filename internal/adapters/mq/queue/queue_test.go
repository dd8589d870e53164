package queue

import (
	"context"
	"testing"
	"time"

	"github.com/okian/waterline/internal/domain/model"
)

func envelope(channel string, volume float64) Envelope {
	return Envelope{
		ChannelID: channel,
		Reading:   model.Reading{Timestamp: time.Now(), RawVolume: volume},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, envelope("trough1", 1000)) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	e := <-out
	if e.ChannelID != "trough1" {
		t.Errorf("expected trough1, got %v", e.ChannelID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_FullDrop(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, envelope("trough1", 1000)) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, envelope("trough1", 990)) {
		t.Error("expected enqueue to succeed")
	}

	// Full queue drops instead of blocking the transport callback.
	if q.Enqueue(ctx, envelope("trough1", 980)) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, envelope("trough1", 1000)) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}

	if q.Enqueue(ctx, envelope("trough1", 990)) {
		t.Error("expected enqueue to fail after close")
	}

	// Buffered envelope is still drained, then the channel closes.
	out := q.Dequeue(ctx)
	if e, ok := <-out; !ok || e.ChannelID != "trough1" {
		t.Errorf("expected buffered envelope, got ok=%v", ok)
	}
	if _, ok := <-out; ok {
		t.Error("expected dequeue channel to close")
	}

	// Closing twice is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("unexpected error on second close: %v", err)
	}
}
