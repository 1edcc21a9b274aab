package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/controller/state"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/render"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageHandler is a handler that works on plain messages
type MessageHandler func(ctx context.Context, m Messenger, msg *models.Message)

// Adapt turns a MessageHandler into a bot handler, skipping non-message updates
func Adapt(fn MessageHandler) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		fn(ctx, b, update.Message)
	}
}

// HandleStart handles /start
func (h *Handlers) HandleStart(ctx context.Context, m Messenger, msg *models.Message) {
	name := "there"
	if msg.From != nil && msg.From.FirstName != "" {
		name = msg.From.FirstName
	}

	welcomeText := fmt.Sprintf(
		"👋 Hi, %s!\n\n"+
			"I help faculty find lab rooms for makeup classes.\n\n"+
			"1. /link <p_id> <pin> - link your faculty account\n"+
			"2. /courses - list your courses\n"+
			"3. /slots <course#> <day> - see free rooms for a course\n\n"+
			"After /slots you can ask me questions about the options.\n"+
			"/help - all commands",
		name,
	)
	h.sendMessage(ctx, m, msg.Chat.ID, welcomeText)
}

// HandleHelp handles /help
func (h *Handlers) HandleHelp(ctx context.Context, m Messenger, msg *models.Message) {
	helpText := "📚 Commands:\n\n" +
		"/link <p_id> <pin> - link your faculty account\n" +
		"/courses - your assigned courses\n" +
		"/slots <course#> <day> - free rooms and GREEN/RED makeup slots\n" +
		"/reset - forget the current slot data and conversation\n" +
		"/unlink - sign out of this chat\n\n" +
		"GREEN means at least half of the enrolled students are free in that slot."
	h.sendMessage(ctx, m, msg.Chat.ID, helpText)
}

// HandleLink handles /link <p_id> <pin>
func (h *Handlers) HandleLink(ctx context.Context, m Messenger, msg *models.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.Text)
	if len(args) != 3 {
		h.sendError(ctx, m, chatID, "Usage: /link <p_id> <pin>")
		return
	}

	// the pin should not stay in the chat history
	if _, err := m.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID}); err != nil {
		h.logger.Warn("Failed to delete link message", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	_, cred, err := h.auth.Login(ctx, args[1], args[2])
	if err != nil {
		h.logger.Info("Link failed", zap.Int64("chat_id", chatID), zap.String("p_id", args[1]), zap.Error(err))
		h.sendError(ctx, m, chatID, userMessage(err))
		return
	}

	h.stateManager.ClearState(chatID)
	h.stateManager.SetState(chatID, state.StateLinked)
	h.stateManager.SetData(chatID, state.KeyPID, cred.PID)
	h.stateManager.SetData(chatID, state.KeyName, cred.RegisteredName)
	h.resetConversation(ctx, chatID)

	h.logger.Info("Chat linked", zap.Int64("chat_id", chatID), zap.String("p_id", cred.PID))
	h.sendMessage(ctx, m, chatID, fmt.Sprintf("✅ Linked as %s (%s).\n\nNext: /courses", cred.RegisteredName, cred.PID))
}

// HandleUnlink handles /unlink
func (h *Handlers) HandleUnlink(ctx context.Context, m Messenger, msg *models.Message) {
	chatID := msg.Chat.ID
	if h.stateManager.GetState(chatID) == state.StateNone {
		h.sendMessage(ctx, m, chatID, "This chat is not linked.")
		return
	}

	h.stateManager.ClearState(chatID)
	h.resetConversation(ctx, chatID)
	h.sendMessage(ctx, m, chatID, "👋 Unlinked. Use /link to sign in again.")
}

// HandleCourses handles /courses
func (h *Handlers) HandleCourses(ctx context.Context, m Messenger, msg *models.Message) {
	chatID := msg.Chat.ID
	pid, ok := h.requireLinked(ctx, m, msg)
	if !ok {
		return
	}

	courses, err := h.courses.Courses(ctx, pid)
	if err != nil {
		h.logger.Error("Failed to get courses", zap.String("p_id", pid), zap.Error(err))
		h.sendError(ctx, m, chatID, userMessage(err))
		return
	}
	if len(courses) == 0 {
		h.sendMessage(ctx, m, chatID, "You have no assigned courses.")
		return
	}

	h.stateManager.SetData(chatID, state.KeyCourses, courses)
	h.sendMessage(ctx, m, chatID, formatCourses(courses))
}

// HandleSlots handles /slots <course#> <day>
func (h *Handlers) HandleSlots(ctx context.Context, m Messenger, msg *models.Message) {
	chatID := msg.Chat.ID
	pid, ok := h.requireLinked(ctx, m, msg)
	if !ok {
		return
	}

	args := strings.Fields(msg.Text)
	if len(args) != 3 {
		h.sendError(ctx, m, chatID, "Usage: /slots <course#> <day>, e.g. /slots 1 Monday")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		h.sendError(ctx, m, chatID, "❌ Course number must be a number from /courses.")
		return
	}

	course, ok := h.courseAt(ctx, m, chatID, pid, n)
	if !ok {
		return
	}

	res, err := h.availability.FreeSlots(ctx, service.FreeSlotsQuery{
		TargetDay:           args[2],
		CourseName:          course.CourseName,
		CourseDay:           string(course.Day),
		CourseSlot:          course.Slot,
		SplitByCourseLength: true,
	})
	if err != nil {
		h.logger.Error("Failed to get free slots",
			zap.String("p_id", pid),
			zap.String("course", course.CourseName),
			zap.Error(err),
		)
		h.sendError(ctx, m, chatID, userMessage(err))
		return
	}

	if len(res.Rooms) == 0 {
		h.sendMessage(ctx, m, chatID, fmt.Sprintf("No free lab rooms on %s.", res.TargetDay))
		return
	}

	h.sendBoard(ctx, m, chatID, res)
	h.sendMessage(ctx, m, chatID, formatGreen(res))

	h.resetConversation(ctx, chatID)
	h.stateManager.SetState(chatID, state.StateExploring)
	h.stateManager.SetData(chatID, state.KeyCourseIndex, n)
	h.stateManager.SetData(chatID, state.KeyTargetDay, string(res.TargetDay))
	h.stateManager.SetData(chatID, state.KeyFreeSlotsInfo, service.FormatFreeSlots(res))
}

// HandleReset handles /reset
func (h *Handlers) HandleReset(ctx context.Context, m Messenger, msg *models.Message) {
	chatID := msg.Chat.ID
	if _, ok := h.requireLinked(ctx, m, msg); !ok {
		return
	}

	h.resetConversation(ctx, chatID)
	h.stateManager.DeleteData(chatID, state.KeyFreeSlotsInfo, state.KeyTargetDay, state.KeyCourseIndex)
	h.stateManager.SetState(chatID, state.StateLinked)
	h.sendMessage(ctx, m, chatID, "🧹 Cleared. Use /slots to start again.")
}

// HandleTextMessage forwards free text to the assistant once slot data is loaded
func (h *Handlers) HandleTextMessage(ctx context.Context, m Messenger, msg *models.Message) {
	if msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}

	chatID := msg.Chat.ID
	switch h.stateManager.GetState(chatID) {
	case state.StateNone:
		h.sendMessage(ctx, m, chatID, "Link your faculty account first: /link <p_id> <pin>")
		return
	case state.StateLinked:
		h.sendMessage(ctx, m, chatID, "Load some slots first: /slots <course#> <day>")
		return
	}

	reply, err := h.assistant.Reply(ctx, service.AssistantRequest{
		Conversation:  conversationKey(chatID),
		Message:       msg.Text,
		FreeSlotsInfo: h.stateManager.GetString(chatID, state.KeyFreeSlotsInfo),
	})
	if err != nil {
		h.logger.Warn("Assistant reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, m, chatID, userMessage(err))
		return
	}
	h.sendMessage(ctx, m, chatID, reply)
}

// courseAt resolves a 1-based course number, loading the course list if needed
func (h *Handlers) courseAt(ctx context.Context, m Messenger, chatID int64, pid string, n int) (model.TeacherCourse, bool) {
	v, _ := h.stateManager.GetData(chatID, state.KeyCourses)
	courses, _ := v.([]model.TeacherCourse)

	if courses == nil {
		var err error
		courses, err = h.courses.Courses(ctx, pid)
		if err != nil {
			h.logger.Error("Failed to get courses", zap.String("p_id", pid), zap.Error(err))
			h.sendError(ctx, m, chatID, userMessage(err))
			return model.TeacherCourse{}, false
		}
		h.stateManager.SetData(chatID, state.KeyCourses, courses)
	}

	if n < 1 || n > len(courses) {
		h.sendError(ctx, m, chatID, fmt.Sprintf("❌ Pick a course between 1 and %d, see /courses.", len(courses)))
		return model.TeacherCourse{}, false
	}
	return courses[n-1], true
}

func (h *Handlers) sendBoard(ctx context.Context, m Messenger, chatID int64, res *service.FreeSlotsResult) {
	img, err := render.RoomBoard(boardFor(res))
	if err != nil {
		h.logger.Error("Failed to render room board", zap.Error(err))
		return
	}

	_, err = m.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "rooms.png", Data: bytes.NewReader(img)},
		Caption: fmt.Sprintf("Lab rooms on %s", res.TargetDay),
	})
	if err != nil {
		h.logger.Error("Failed to send room board", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handlers) resetConversation(ctx context.Context, chatID int64) {
	if err := h.assistant.Reset(ctx, conversationKey(chatID)); err != nil {
		h.logger.Warn("Failed to reset assistant history", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
