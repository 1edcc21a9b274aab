package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/google/uuid"
)

// Routing keys on the notification exchange
const (
	RKMakeupBooked    = "makeup.booked"
	RKMakeupCancelled = "makeup.cancelled"
)

// Makeup is published whenever a makeup is booked or cancelled. It carries
// everything a notifier needs so consumers never query the store.
type Makeup struct {
	ID         string            `json:"id"`
	Key        string            `json:"key"`
	Makeup     model.MakeupClass `json:"makeup"`
	Recipients []string          `json:"recipients"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewMakeup(key string, m model.MakeupClass, recipients []string) Makeup {
	return Makeup{
		ID:         uuid.NewString(),
		Key:        key,
		Makeup:     m,
		Recipients: recipients,
		OccurredAt: time.Now().UTC(),
	}
}

// Cancelled reports whether the event announces a cancellation
func (e Makeup) Cancelled() bool {
	return e.Key == RKMakeupCancelled
}

func Unmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
