package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/render"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// maxGreenListed caps the GREEN options echoed after a board
const maxGreenListed = 10

func (h *Handlers) sendError(ctx context.Context, m Messenger, chatID int64, text string) {
	_, err := m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

func (h *Handlers) sendMessage(ctx context.Context, m Messenger, chatID int64, text string) {
	_, err := m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// userMessage turns a service error into something a faculty member can act on
func userMessage(err error) string {
	switch service.KindOf(err) {
	case service.KindUnauthorized:
		return "❌ Invalid p_id or pin."
	case service.KindInvalid:
		var se *service.Error
		if errors.As(err, &se) && se.Err != nil {
			return "❌ " + se.Err.Error()
		}
		return "❌ Invalid request."
	case service.KindUpstream:
		return "⚠️ The service is unavailable right now. Try again in a minute."
	default:
		return "❌ Something went wrong. Try again later."
	}
}

// conversationKey scopes assistant history to one chat
func conversationKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func formatCourses(courses []model.TeacherCourse) string {
	var sb strings.Builder
	sb.WriteString("📚 Your courses:\n\n")
	for i, c := range courses {
		fmt.Fprintf(&sb, "%d. %s, %s %s, room %s\n", i+1, c.CourseName, c.Day, c.Slot, c.Room)
	}
	sb.WriteString("\nFind makeup slots with /slots <course#> <day>, e.g. /slots 1 Monday")
	return sb.String()
}

func formatGreen(res *service.FreeSlotsResult) string {
	green := res.GreenSlots()
	if len(green) == 0 {
		return fmt.Sprintf("No GREEN slots on %s. RED slots are still bookable but most students have a conflict.", res.TargetDay)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ GREEN options on %s:\n", res.TargetDay)
	for i, st := range green {
		if i == maxGreenListed {
			fmt.Fprintf(&sb, "…and %d more\n", len(green)-maxGreenListed)
			break
		}
		fmt.Fprintf(&sb, "• Room %s, %s (%d/%d students free)\n", st.Room, st.Slot, st.FreeStudents, st.EnrolledStudents)
	}
	sb.WriteString("\nAsk me anything about these slots.")
	return sb.String()
}

func boardFor(res *service.FreeSlotsResult) render.Board {
	b := render.Board{Day: res.TargetDay, Window: model.OperatingWindow}
	if res.Course != nil {
		b.Course = res.Course.Name
	}
	for _, room := range res.Rooms {
		col := render.Column{Room: room.Room, Statuses: room.Statuses}
		for _, f := range room.Free {
			col.Free = append(col.Free, f.Slot)
		}
		b.Columns = append(b.Columns, col)
	}
	return b
}
