package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminRecipient names the admin chat in DeliveryError lists
const AdminRecipient = "telegram:admin"

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram posts a one-line summary of every booking change to an admin chat
type Telegram struct {
	bot    messageSender
	chatID int64
}

func NewTelegram(b messageSender, chatID int64) *Telegram {
	return &Telegram{bot: b, chatID: chatID}
}

func (t *Telegram) Notify(ctx context.Context, ev events.Makeup) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   AdminSummary(ev),
	})
	if err != nil {
		return &DeliveryError{Failed: []string{AdminRecipient}, Err: err}
	}
	return nil
}

// AdminSummary renders an event as a short chat message
func AdminSummary(ev events.Makeup) string {
	m := ev.Makeup
	var sb strings.Builder
	if ev.Cancelled() {
		sb.WriteString("❌ Makeup cancelled\n")
	} else {
		sb.WriteString("📚 Makeup booked\n")
	}
	fmt.Fprintf(&sb, "Course: %s (%s %s)\n", m.CourseName, m.CourseDay, m.CourseSlot)
	fmt.Fprintf(&sb, "Room %s, %s %s\n", m.Room, m.Day, m.Slot)
	fmt.Fprintf(&sb, "Faculty: %s, students notified: %d", m.PID, len(ev.Recipients))
	return sb.String()
}
