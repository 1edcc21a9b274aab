package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/app"
	"github.com/Freeeeeet/makeup_scheduler/internal/config"
	transport "github.com/Freeeeeet/makeup_scheduler/internal/http"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
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

	pool, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer pool.Close()

	notifier, closeNotifier, err := app.NewNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up notifications", zap.Error(err))
	}
	defer closeNotifier()

	services, err := app.NewServices(ctx, cfg, repository.NewStore(pool), notifier, logger)
	if err != nil {
		logger.Fatal("Failed to build services", zap.Error(err))
	}
	defer services.Close()

	server := transport.NewServer(transport.Deps{
		Auth:                services.Auth,
		Courses:             services.Courses,
		Availability:        services.Availability,
		Bookings:            services.Bookings,
		Assistant:           services.Assistant,
		Tokens:              services.Tokens,
		AssistantRatePerMin: cfg.AssistantRatePerMin,
		Logger:              logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
	}

	go func() {
		logger.Info("Makeup server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
			zap.String("notify_mode", cfg.NotifyMode),
			zap.String("booking_guard", cfg.BookingGuard),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
