package notify

import (
	"context"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
)

type publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Queue hands notices to the notifier worker over the message broker.
// A failed publish means nobody was notified.
type Queue struct {
	pub publisher
}

func NewQueue(pub publisher) *Queue {
	return &Queue{pub: pub}
}

func (q *Queue) Notify(ctx context.Context, ev events.Makeup) error {
	if err := q.pub.PublishJSON(ctx, ev.Key, ev); err != nil {
		return &DeliveryError{Failed: ev.Recipients, Err: err}
	}
	return nil
}
