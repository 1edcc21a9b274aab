package handlers

import (
	"context"

	"github.com/Freeeeeet/makeup_scheduler/internal/controller/state"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Messenger is the part of the Telegram client the handlers talk to
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

type Authenticator interface {
	Login(ctx context.Context, pid, pin string) (string, *model.Credential, error)
}

type CourseReader interface {
	Courses(ctx context.Context, pid string) ([]model.TeacherCourse, error)
}

type FreeSlotFinder interface {
	FreeSlots(ctx context.Context, q service.FreeSlotsQuery) (*service.FreeSlotsResult, error)
}

type Assistant interface {
	Reply(ctx context.Context, req service.AssistantRequest) (string, error)
	Reset(ctx context.Context, conversation string) error
}

// Handlers serves the faculty assistant bot
type Handlers struct {
	auth         Authenticator
	courses      CourseReader
	availability FreeSlotFinder
	assistant    Assistant
	stateManager *state.Manager
	logger       *zap.Logger
}

func NewHandlers(
	auth Authenticator,
	courses CourseReader,
	availability FreeSlotFinder,
	assistant Assistant,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		auth:         auth,
		courses:      courses,
		availability: availability,
		assistant:    assistant,
		stateManager: stateManager,
		logger:       logger,
	}
}
