package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trafficable/tia-backend/internal/domain"
)

func TestLocalQueueDeliversMessages(t *testing.T) {
	localQueue := NewLocalQueue(8, 3, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan domain.QueueMessage, 1)
	go func() {
		_ = localQueue.Consume(ctx, func(_ context.Context, message domain.QueueMessage) error {
			received <- message
			return nil
		})
	}()

	message := domain.QueueMessage{JobID: "job-1", Mode: domain.JobModeBulk, RequestedAt: time.Now()}
	if err := localQueue.Enqueue(ctx, message); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	select {
	case got := <-received:
		if got.JobID != "job-1" {
			t.Fatalf("unexpected message %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}

func TestLocalQueueRetriesThenDeadLetters(t *testing.T) {
	localQueue := NewLocalQueue(8, 3, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int32
	done := make(chan struct{})
	go func() {
		_ = localQueue.Consume(ctx, func(_ context.Context, _ domain.QueueMessage) error {
			if atomic.AddInt32(&attempts, 1) == 3 {
				close(done)
			}
			return errors.New("always fails")
		})
	}()

	if err := localQueue.Enqueue(ctx, domain.QueueMessage{JobID: "job-2"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected 3 attempts, got %d", atomic.LoadInt32(&attempts))
	}

	// The third failure moves the message to the DLQ.
	deadline := time.Now().Add(2 * time.Second)
	for localQueue.DLQSize() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if localQueue.DLQSize() != 1 {
		t.Fatalf("expected 1 dead-lettered message, got %d", localQueue.DLQSize())
	}
}

func TestLocalQueueConsumeStopsOnContextCancel(t *testing.T) {
	localQueue := NewLocalQueue(8, 3, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- localQueue.Consume(ctx, func(_ context.Context, _ domain.QueueMessage) error {
			return nil
		})
	}()

	cancel()
	select {
	case err := <-errChan:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("consume did not stop on cancel")
	}
}
