// Package notify delivers makeup booking and cancellation notices.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, ev events.Makeup) error
}

// DeliveryError lists recipients that did not get a notice
type DeliveryError struct {
	Failed []string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed for %s: %v", strings.Join(e.Failed, ", "), e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// FailedRecipients collects the failed recipients from every DeliveryError in err
func FailedRecipients(err error) []string {
	var out []string
	for _, e := range multierr.Errors(err) {
		var de *DeliveryError
		if errors.As(e, &de) {
			out = append(out, de.Failed...)
		}
	}
	return out
}

// Multi fans a notice out to several notifiers and combines their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev events.Makeup) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, ev))
	}
	return err
}

// Log only records notices. Used in development and tests.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, ev events.Makeup) error {
	l.logger.Info("Makeup notice",
		zap.String("event_id", ev.ID),
		zap.String("key", ev.Key),
		zap.String("course", ev.Makeup.CourseName),
		zap.String("room", ev.Makeup.Room),
		zap.String("day", string(ev.Makeup.Day)),
		zap.Stringer("slot", ev.Makeup.Slot),
		zap.Int("recipients", len(ev.Recipients)),
	)
	return nil
}
