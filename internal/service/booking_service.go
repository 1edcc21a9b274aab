package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/notify"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
	"go.uber.org/zap"
)

type BookingStore interface {
	WithTx(ctx context.Context, fn func(tx repository.BookingTx) error) error
}

type RecipientLister interface {
	ListStudentEmails(ctx context.Context, course model.CourseContext) ([]string, error)
}

// MakeupRequest identifies a makeup by its room slot and the regular meeting it replaces
type MakeupRequest struct {
	PID        string
	Room       string
	Day        string
	Slot       model.TimeSlot
	CourseName string
	CourseDay  string
	CourseSlot model.TimeSlot
}

type BookingResult struct {
	Makeup   model.MakeupClass `json:"makeup"`
	Notified int               `json:"notified"`
	Failed   []string          `json:"failed,omitempty"`
}

type BookingOptions struct {
	// Guard takes a room/day lock and rejects overlaps before inserting
	Guard       bool
	ReadRetries uint64
}

type BookingService struct {
	store    BookingStore
	students RecipientLister
	notifier notify.Notifier
	calendar *model.Calendar
	opts     BookingOptions
	reads    readPolicy
	logger   *zap.Logger
}

func NewBookingService(
	store BookingStore,
	students RecipientLister,
	notifier notify.Notifier,
	calendar *model.Calendar,
	opts BookingOptions,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:    store,
		students: students,
		notifier: notifier,
		calendar: calendar,
		opts:     opts,
		reads:    readPolicy{retries: opts.ReadRetries, logger: logger},
		logger:   logger,
	}
}

// Book reserves the room and records the makeup in one transaction, then
// emails the course's students. A notification failure after commit returns
// the result together with a KindPartialWrite error.
func (s *BookingService) Book(ctx context.Context, req MakeupRequest) (*BookingResult, error) {
	const op = "book-makeup"

	m, err := s.makeup(op, req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.BookingTx) error {
		if s.opts.Guard {
			if err := tx.LockRoomDay(ctx, m.Room, m.Day); err != nil {
				return err
			}
			existing, err := tx.ListByRoomDay(ctx, m.Room, m.Day)
			if err != nil {
				return err
			}
			for _, r := range existing {
				if r.Slot.Overlaps(m.Slot) {
					s.logger.Info("Booking rejected, slot taken",
						zap.String("room", m.Room),
						zap.String("day", string(m.Day)),
						zap.Stringer("requested", m.Slot),
						zap.Stringer("reserved", r.Slot),
						zap.String("reserved_by", r.CourseName),
					)
					return E(KindAlreadyExists, op, ErrSlotTaken)
				}
			}
		}

		if err := tx.InsertMakeup(ctx, &m); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, m.Reservation())
	})
	if err != nil {
		return nil, s.txError(op, err)
	}

	s.logger.Info("Makeup booked",
		zap.String("p_id", m.PID),
		zap.String("course", m.CourseName),
		zap.String("room", m.Room),
		zap.String("day", string(m.Day)),
		zap.Stringer("slot", m.Slot),
	)

	return s.announce(ctx, op, events.RKMakeupBooked, m)
}

// Remove deletes the makeup record and then its reservation in one
// transaction and sends cancellation notices.
func (s *BookingService) Remove(ctx context.Context, req MakeupRequest) (*BookingResult, error) {
	const op = "remove-booked-makeup"

	m, err := s.makeup(op, req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.BookingTx) error {
		if s.opts.Guard {
			if err := tx.LockRoomDay(ctx, m.Room, m.Day); err != nil {
				return err
			}
		}

		n, err := tx.DeleteMakeup(ctx, m)
		if err != nil {
			return err
		}
		if n == 0 {
			return E(KindNotFound, op, ErrMakeupNotFound)
		}

		n, err = tx.DeleteReservation(ctx, m.Reservation())
		if err != nil {
			return err
		}
		if n == 0 {
			s.logger.Warn("Makeup had no room reservation",
				zap.String("room", m.Room),
				zap.String("day", string(m.Day)),
				zap.Stringer("slot", m.Slot),
			)
		}
		return nil
	})
	if err != nil {
		return nil, s.txError(op, err)
	}

	s.logger.Info("Makeup removed",
		zap.String("p_id", m.PID),
		zap.String("course", m.CourseName),
		zap.String("room", m.Room),
		zap.String("day", string(m.Day)),
		zap.Stringer("slot", m.Slot),
	)

	return s.announce(ctx, op, events.RKMakeupCancelled, m)
}

func (s *BookingService) announce(ctx context.Context, op, key string, m model.MakeupClass) (*BookingResult, error) {
	result := &BookingResult{Makeup: m}

	var recipients []string
	err := s.reads.do(ctx, func(ctx context.Context) error {
		var err error
		recipients, err = s.students.ListStudentEmails(ctx, m.Course())
		return err
	})
	if err != nil {
		s.logger.Error("Failed to load recipients after commit", zap.String("op", op), zap.Error(err))
		return result, &Error{Kind: KindPartialWrite, Op: op, Err: err}
	}

	ev := events.NewMakeup(key, m, recipients)
	if err := s.notifier.Notify(ctx, ev); err != nil {
		failed := notify.FailedRecipients(err)
		if len(failed) == 0 {
			failed = recipients
		}
		// the admin alert is best effort; only student deliveries make a partial write
		failed = withoutAdmin(failed)
		if len(failed) == 0 {
			s.logger.Warn("Admin alert failed after commit",
				zap.String("op", op),
				zap.String("event_id", ev.ID),
				zap.Error(err),
			)
			result.Notified = len(recipients)
			return result, nil
		}
		result.Failed = failed
		result.Notified = countDelivered(recipients, failed)
		s.logger.Error("Notifications failed after commit",
			zap.String("op", op),
			zap.String("event_id", ev.ID),
			zap.Strings("failed", failed),
			zap.Error(err),
		)
		return result, &Error{Kind: KindPartialWrite, Op: op, Err: err, Failed: failed}
	}

	result.Notified = len(recipients)
	return result, nil
}

func withoutAdmin(recipients []string) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r != notify.AdminRecipient {
			out = append(out, r)
		}
	}
	return out
}

func (s *BookingService) makeup(op string, req MakeupRequest) (model.MakeupClass, error) {
	pid := strings.TrimSpace(req.PID)
	room := strings.TrimSpace(req.Room)
	course := strings.TrimSpace(req.CourseName)
	if pid == "" || room == "" || course == "" {
		return model.MakeupClass{}, Invalid(op, "p_id, booked_lr and course_name are required")
	}

	day, err := s.calendar.Normalize(req.Day)
	if err != nil {
		return model.MakeupClass{}, E(KindInvalid, op, err)
	}
	courseDay, err := s.calendar.Normalize(req.CourseDay)
	if err != nil {
		return model.MakeupClass{}, E(KindInvalid, op, err)
	}

	if !req.Slot.Valid() || !req.Slot.Within(model.OperatingWindow) {
		return model.MakeupClass{}, Invalid(op, "booked slot %s must lie within %s", req.Slot, model.OperatingWindow)
	}
	if !req.CourseSlot.Valid() {
		return model.MakeupClass{}, Invalid(op, "course slot %s is not a valid time range", req.CourseSlot)
	}

	return model.MakeupClass{
		PID:        pid,
		Room:       room,
		Day:        day,
		Slot:       req.Slot,
		CourseName: course,
		CourseDay:  courseDay,
		CourseSlot: req.CourseSlot,
	}, nil
}

func (s *BookingService) txError(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return E(KindAlreadyExists, op, ErrSlotTaken)
	}
	s.logger.Error("Booking transaction failed", zap.String("op", op), zap.Error(err))
	return E(KindUpstream, op, err)
}

func countDelivered(recipients, failed []string) int {
	bad := make(map[string]struct{}, len(failed))
	for _, f := range failed {
		bad[f] = struct{}{}
	}
	n := 0
	for _, r := range recipients {
		if _, ok := bad[r]; !ok {
			n++
		}
	}
	return n
}
