package worker

import (
	"context"
	"errors"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"github.com/Freeeeeet/makeup_scheduler/internal/notify"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type outcome int

const (
	ack        outcome = iota
	requeue            // nobody was notified yet, try once more
	deadLetter         // undecodable, or some recipients already got the notice
)

// Consumer turns makeup events from the queue into notifications
type Consumer struct {
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewConsumer(n notify.Notifier, logger *zap.Logger) *Consumer {
	return &Consumer{notifier: n, logger: logger}
}

// Run handles deliveries until ctx is done or the channel closes
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			switch c.handle(ctx, d.RoutingKey, d.Body, d.Redelivered) {
			case ack:
				_ = d.Ack(false)
			case requeue:
				_ = d.Nack(false, true)
			case deadLetter:
				_ = d.Nack(false, false)
			}
		}
	}
}

func (c *Consumer) handle(ctx context.Context, key string, body []byte, redelivered bool) outcome {
	switch key {
	case events.RKMakeupBooked, events.RKMakeupCancelled:
	default:
		c.logger.Warn("Skipping unknown routing key", zap.String("key", key))
		return ack
	}

	ev, err := events.Unmarshal[events.Makeup](body)
	if err != nil {
		c.logger.Error("Undecodable event", zap.String("key", key), zap.Error(err))
		return deadLetter
	}
	// the routing key is authoritative
	ev.Key = key

	err = c.notifier.Notify(ctx, ev)
	if err == nil {
		c.logger.Info("Event delivered",
			zap.String("event_id", ev.ID),
			zap.String("key", key),
			zap.Int("recipients", len(ev.Recipients)),
		)
		return ack
	}

	failed := notify.FailedRecipients(err)
	c.logger.Error("Event delivery failed",
		zap.String("event_id", ev.ID),
		zap.String("key", key),
		zap.Strings("failed", failed),
		zap.Bool("redelivered", redelivered),
		zap.Error(err),
	)

	var de *notify.DeliveryError
	allFailed := errors.As(err, &de) && len(failed) >= len(ev.Recipients)
	if allFailed && !redelivered {
		return requeue
	}
	return deadLetter
}
