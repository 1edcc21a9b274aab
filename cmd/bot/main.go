package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/makeup_scheduler/internal/app"
	"github.com/Freeeeeet/makeup_scheduler/internal/config"
	"github.com/Freeeeeet/makeup_scheduler/internal/controller"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required for the bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer pool.Close()

	// the bot only reads, bookings go through the HTTP API
	services, err := app.NewServices(ctx, cfg, repository.NewStore(pool), nil, logger)
	if err != nil {
		logger.Fatal("Failed to build services", zap.Error(err))
	}
	defer services.Close()

	b, err := bot.New(cfg.TelegramToken, bot.WithMiddlewares(controller.LogUpdates(logger)))
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	c := controller.NewBotController(b, services.Auth, services.Courses, services.Availability, services.Assistant, logger)
	if err := c.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot command menu not set", zap.Error(err))
	}

	logger.Sugar().Infow("Starting makeup assistant bot",
		"environment", cfg.Environment,
		"weekdays", cfg.Weekdays,
	)
	if err := c.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
}
