package http

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/makeup_scheduler/internal/auth"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const banner = "Makeup Application Server is running"

type Authenticator interface {
	Register(ctx context.Context, pid, name, pin string) error
	Login(ctx context.Context, pid, pin string) (string, *model.Credential, error)
}

type CourseReader interface {
	Courses(ctx context.Context, pid string) ([]model.TeacherCourse, error)
	Makeups(ctx context.Context, pid string) ([]model.MakeupClass, error)
}

type FreeSlotFinder interface {
	FreeSlots(ctx context.Context, q service.FreeSlotsQuery) (*service.FreeSlotsResult, error)
}

type MakeupBooker interface {
	Book(ctx context.Context, req service.MakeupRequest) (*service.BookingResult, error)
	Remove(ctx context.Context, req service.MakeupRequest) (*service.BookingResult, error)
}

type Assistant interface {
	Reply(ctx context.Context, req service.AssistantRequest) (string, error)
}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type Deps struct {
	Auth         Authenticator
	Courses      CourseReader
	Availability FreeSlotFinder
	Bookings     MakeupBooker
	Assistant    Assistant
	Tokens       TokenParser
	// AssistantRatePerMin limits assistant calls per faculty member, 0 disables it
	AssistantRatePerMin int
	Logger              *zap.Logger
}

type Server struct {
	auth         Authenticator
	courses      CourseReader
	availability FreeSlotFinder
	bookings     MakeupBooker
	assistant    Assistant
	tokens       TokenParser
	limiter      *limiter
	metrics      *metrics
	logger       *zap.Logger
}

func NewServer(d Deps) *Server {
	return &Server{
		auth:         d.Auth,
		courses:      d.Courses,
		availability: d.Availability,
		bookings:     d.Bookings,
		assistant:    d.Assistant,
		tokens:       d.Tokens,
		limiter:      newLimiter(d.AssistantRatePerMin),
		metrics:      newMetrics(),
		logger:       d.Logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, banner)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.handler())

	r.Post("/login", s.handleLogin)
	r.Post("/account-create", s.handleAccountCreate)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/get-courses", s.handleGetCourses)
		r.Post("/get-makeups", s.handleGetMakeups)
		r.Post("/get-free-slots", s.handleGetFreeSlots)
		r.Post("/book-makeup", s.handleBookMakeup)
		r.Post("/remove-booked-makeup", s.handleRemoveMakeup)
		r.With(s.rateLimit).Post("/generate-response", s.handleGenerateResponse)
	})

	return r
}
