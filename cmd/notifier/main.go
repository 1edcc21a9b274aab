package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/makeup_scheduler/internal/app"
	"github.com/Freeeeeet/makeup_scheduler/internal/config"
	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"github.com/Freeeeeet/makeup_scheduler/internal/mq"
	"github.com/Freeeeeet/makeup_scheduler/internal/notify"
	"github.com/Freeeeeet/makeup_scheduler/internal/worker"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	email, err := notify.NewEmail(app.SMTPConfig(cfg), logger)
	if err != nil {
		logger.Fatal("Failed to create email notifier", zap.Error(err))
	}

	cons, err := mq.NewConsumer(ctx, mq.ConsumerConfig{
		URL:        cfg.RabbitURL,
		Exchange:   cfg.NotifyExchange,
		Queue:      cfg.NotifyQueue,
		Bindings:   []string{events.RKMakeupBooked, events.RKMakeupCancelled},
		Prefetch:   16,
		DeadLetter: cfg.NotifyExchange + ".dlx",
	})
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer cons.Close()

	msgs, err := cons.Deliveries(ctx, "makeup-notifier")
	if err != nil {
		logger.Fatal("Failed to start consuming", zap.Error(err))
	}

	logger.Info("Notifier started",
		zap.String("queue", cfg.NotifyQueue),
		zap.String("exchange", cfg.NotifyExchange),
	)

	if err := worker.NewConsumer(email, logger).Run(ctx, msgs); err != nil {
		logger.Error("Notifier stopped with error", zap.Error(err))
	}
	logger.Info("Notifier stopped")
}
