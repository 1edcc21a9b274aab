package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/auth"
	"github.com/Freeeeeet/makeup_scheduler/internal/config"
	"github.com/Freeeeeet/makeup_scheduler/internal/history"
	"github.com/Freeeeeet/makeup_scheduler/internal/llm"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/mq"
	"github.com/Freeeeeet/makeup_scheduler/internal/notify"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// assistantTurns is how many question/answer pairs a conversation keeps
const assistantTurns = 10

// Services is the application layer shared by the HTTP server and the bot
type Services struct {
	Calendar     *model.Calendar
	Tokens       *auth.Issuer
	Auth         *service.AuthService
	Courses      *service.CourseService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Assistant    *service.AssistantService

	closers []func() error
}

// NewServices builds every service on top of store. The notifier may be nil
// for processes that never book.
func NewServices(ctx context.Context, cfg *config.Config, store *repository.Store, notifier notify.Notifier, logger *zap.Logger) (*Services, error) {
	calendar, err := model.NewCalendar(cfg.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("weekdays: %w", err)
	}

	s := &Services{
		Calendar: calendar,
		Tokens:   auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
	}
	s.Auth = service.NewAuthService(store.Credentials, s.Tokens, logger)
	s.Courses = service.NewCourseService(store.Courses, store.Makeups, logger)
	s.Availability = service.NewAvailabilityService(
		store.Reservations,
		store.Enrollments,
		calendar,
		service.AvailabilityOptions{
			Concurrency: cfg.FreeSlotConcurrency,
			ReadRetries: cfg.StoreReadRetries,
		},
		logger,
	)

	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	s.Bookings = service.NewBookingService(
		store,
		store.Enrollments,
		notifier,
		calendar,
		service.BookingOptions{
			Guard:       cfg.BookingGuard == config.GuardAdvisory,
			ReadRetries: cfg.StoreReadRetries,
		},
		logger,
	)

	if err := s.initAssistant(ctx, cfg, logger); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Services) initAssistant(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var completer service.Completer
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, client.Close)
		completer = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant is disabled")
	}

	var store service.HistoryStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("ping redis: %w", err)
		}
		s.closers = append(s.closers, rdb.Close)
		store = history.NewRedisStore(rdb, cfg.AssistantHistoryTTL)
	}

	s.Assistant = service.NewAssistantService(completer, store, assistantTurns, logger)
	return nil
}

// Close releases the clients the services were built on
func (s *Services) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// NewNotifier picks the delivery path from NOTIFY_MODE and adds the admin
// Telegram alert when configured. The returned func closes what was opened.
func NewNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (notify.Notifier, func(), error) {
	var (
		primary notify.Notifier
		cleanup = func() {}
	)

	switch cfg.NotifyMode {
	case config.NotifySMTP:
		email, err := notify.NewEmail(SMTPConfig(cfg), logger)
		if err != nil {
			return nil, nil, err
		}
		primary = email
	case config.NotifyAMQP:
		pub, err := mq.NewPublisher(ctx, cfg.RabbitURL, cfg.NotifyExchange)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := pub.Close(); err != nil {
				logger.Warn("Failed to close publisher", zap.Error(err))
			}
		}
		primary = notify.NewQueue(pub)
	default:
		primary = notify.NewLog(logger)
	}

	if cfg.TelegramToken == "" || cfg.TelegramAdminChatID == 0 {
		return primary, cleanup, nil
	}

	// no polling, the client only sends
	b, err := bot.New(cfg.TelegramToken, bot.WithSkipGetMe())
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create telegram client: %w", err)
	}
	logger.Info("Admin Telegram alerts enabled", zap.Int64("chat_id", cfg.TelegramAdminChatID))
	return notify.Multi{primary, notify.NewTelegram(b, cfg.TelegramAdminChatID)}, cleanup, nil
}

func SMTPConfig(cfg *config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		Timeout:  cfg.SMTPTimeout,
	}
}
