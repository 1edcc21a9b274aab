package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/makeup_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	auth handlers.Authenticator,
	courses handlers.CourseReader,
	availability handlers.FreeSlotFinder,
	assistant handlers.Assistant,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		auth,
		courses,
		availability,
		assistant,
		state.NewManager(),
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers wires the commands and publishes the command menu
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.Adapt(h.HandleStart))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, handlers.Adapt(h.HandleHelp))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/link", bot.MatchTypePrefix, handlers.Adapt(h.HandleLink))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unlink", bot.MatchTypeExact, handlers.Adapt(h.HandleUnlink))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/courses", bot.MatchTypeExact, handlers.Adapt(h.HandleCourses))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypePrefix, handlers.Adapt(h.HandleSlots))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypeExact, handlers.Adapt(h.HandleReset))

	// free text, registered last so commands match first
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, handlers.Adapt(h.HandleTextMessage))

	return c.setCommands(ctx)
}

func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Get started"},
		{Command: "help", Description: "❓ Commands"},
		{Command: "link", Description: "🔑 Link your faculty account"},
		{Command: "courses", Description: "📚 Your courses"},
		{Command: "slots", Description: "🗓 Free rooms for a makeup"},
		{Command: "reset", Description: "🧹 Clear slot data and conversation"},
		{Command: "unlink", Description: "👋 Sign out"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start blocks polling updates until ctx is done
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}

// LogUpdates logs every message update and how long it took to handle
func LogUpdates(logger *zap.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			next(ctx, b, update)

			if update.Message == nil {
				return
			}
			logger.Debug("Update handled",
				zap.Int64("update_id", update.ID),
				zap.Int64("chat_id", update.Message.Chat.ID),
				zap.String("command", commandOf(update.Message.Text)),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}
}

// commandOf keeps the command word only, arguments may hold a pin
func commandOf(text string) string {
	if len(text) == 0 || text[0] != '/' {
		return ""
	}
	for i, r := range text {
		if r == ' ' {
			return text[:i]
		}
	}
	return text
}
