// Package queue dispatches report jobs from the API to the worker, either
// over Redis Streams or an in-process channel fallback.
package queue

import (
	"context"

	"github.com/trafficable/tia-backend/internal/domain"
)

// Producer enqueues report jobs.
type Producer interface {
	Enqueue(ctx context.Context, message domain.QueueMessage) error
}

// Consumer delivers report jobs to a handler. A handler error triggers a
// bounded number of redeliveries before the message is dead-lettered.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, domain.QueueMessage) error) error
}
