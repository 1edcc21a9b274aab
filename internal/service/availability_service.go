package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/availability"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ReservationReader interface {
	ListRooms(ctx context.Context) ([]string, error)
	ListByRoomDay(ctx context.Context, room string, day model.Weekday) ([]model.Reservation, error)
}

type CommitmentReader interface {
	ListCommitments(ctx context.Context, course model.CourseContext, day model.Weekday) ([]model.Enrollment, error)
}

type AvailabilityOptions struct {
	// Concurrency bounds how many rooms are fetched at once
	Concurrency int
	// ReadRetries is the number of extra attempts for each store read
	ReadRetries uint64
	RetryBase   time.Duration
}

// FreeSlotsQuery is a free-slot request. An empty CourseName asks for free
// intervals only, without classification.
type FreeSlotsQuery struct {
	TargetDay           string
	CourseName          string
	CourseDay           string
	CourseSlot          model.TimeSlot
	SplitByCourseLength bool
}

type RoomAvailability struct {
	Room     string               `json:"lr"`
	Free     []model.FreeInterval `json:"free"`
	Statuses []model.SlotStatus   `json:"statuses,omitempty"`
}

type FreeSlotsResult struct {
	TargetDay model.Weekday        `json:"target_day"`
	Course    *model.CourseContext `json:"course,omitempty"`
	Rooms     []RoomAvailability   `json:"rooms"`
}

// GreenSlots flattens the recommended slots across rooms
func (r *FreeSlotsResult) GreenSlots() []model.SlotStatus {
	var out []model.SlotStatus
	for _, room := range r.Rooms {
		for _, st := range room.Statuses {
			if st.IsGreen() {
				out = append(out, st)
			}
		}
	}
	return out
}

type AvailabilityService struct {
	reservations ReservationReader
	commitments  CommitmentReader
	calendar     *model.Calendar
	window       model.TimeSlot
	opts         AvailabilityOptions
	logger       *zap.Logger
}

func NewAvailabilityService(
	reservations ReservationReader,
	commitments CommitmentReader,
	calendar *model.Calendar,
	opts AvailabilityOptions,
	logger *zap.Logger,
) *AvailabilityService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &AvailabilityService{
		reservations: reservations,
		commitments:  commitments,
		calendar:     calendar,
		window:       model.OperatingWindow,
		opts:         opts,
		logger:       logger,
	}
}

// Calendar returns the weekdays this service accepts
func (s *AvailabilityService) Calendar() *model.Calendar {
	return s.calendar
}

// FreeSlots computes every room's free intervals on the target day and, when a
// course is given, labels them GREEN or RED for that course's students.
func (s *AvailabilityService) FreeSlots(ctx context.Context, q FreeSlotsQuery) (*FreeSlotsResult, error) {
	const op = "get-free-slots"

	targetDay, err := s.calendar.Normalize(q.TargetDay)
	if err != nil {
		return nil, E(KindInvalid, op, err)
	}

	result := &FreeSlotsResult{TargetDay: targetDay}

	var enrollments []model.Enrollment
	if strings.TrimSpace(q.CourseName) != "" {
		course, err := s.courseContext(q)
		if err != nil {
			return nil, E(KindInvalid, op, err)
		}
		result.Course = &course

		err = s.read(ctx, func(ctx context.Context) error {
			var err error
			enrollments, err = s.commitments.ListCommitments(ctx, course, targetDay)
			return err
		})
		if err != nil {
			return nil, E(KindUpstream, op, err)
		}
	}

	var rooms []string
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		rooms, err = s.reservations.ListRooms(ctx)
		return err
	})
	if err != nil {
		return nil, E(KindUpstream, op, err)
	}

	perRoom := make([]RoomAvailability, len(rooms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, room := range rooms {
		g.Go(func() error {
			ra, err := s.roomAvailability(gctx, room, targetDay, result.Course, enrollments, q.SplitByCourseLength)
			if err != nil {
				return err
			}
			perRoom[i] = ra
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, E(KindUpstream, op, err)
	}

	result.Rooms = make([]RoomAvailability, 0, len(perRoom))
	for _, ra := range perRoom {
		// with a course only classified candidates count; a split may leave none
		if result.Course != nil && len(ra.Statuses) == 0 {
			continue
		}
		if len(ra.Free) == 0 {
			continue
		}
		result.Rooms = append(result.Rooms, ra)
	}

	s.logger.Debug("Free slots computed",
		zap.String("target_day", string(targetDay)),
		zap.Int("rooms", len(rooms)),
		zap.Int("rooms_with_free_slots", len(result.Rooms)),
	)

	return result, nil
}

// RoomFreeSlots returns one room's free intervals on a day
func (s *AvailabilityService) RoomFreeSlots(ctx context.Context, room, day string) ([]model.FreeInterval, error) {
	const op = "room-free-slots"

	targetDay, err := s.calendar.Normalize(day)
	if err != nil {
		return nil, E(KindInvalid, op, err)
	}
	room = strings.TrimSpace(room)
	if room == "" {
		return nil, Invalid(op, "room is required")
	}

	ra, err := s.roomAvailability(ctx, room, targetDay, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return ra.Free, nil
}

func (s *AvailabilityService) roomAvailability(
	ctx context.Context,
	room string,
	day model.Weekday,
	course *model.CourseContext,
	enrollments []model.Enrollment,
	split bool,
) (RoomAvailability, error) {
	const op = "room-availability"

	var reservations []model.Reservation
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		reservations, err = s.reservations.ListByRoomDay(ctx, room, day)
		return err
	})
	if err != nil {
		return RoomAvailability{}, E(KindUpstream, op, err)
	}

	slots := make([]model.TimeSlot, len(reservations))
	for i, r := range reservations {
		slots[i] = r.Slot
	}
	if oerr := availability.CheckOrder(slots); oerr != nil {
		if !oerr.Overlap {
			s.logger.Error("Reservations out of order",
				zap.String("room", room),
				zap.String("day", string(day)),
				zap.Error(oerr),
			)
			return RoomAvailability{}, E(KindInputOrder, op, oerr)
		}
		s.logger.Warn("Overlapping reservations",
			zap.String("room", room),
			zap.String("day", string(day)),
			zap.Error(oerr),
		)
	}

	free := availability.RoomFreeIntervals(room, day, reservations, s.window)
	ra := RoomAvailability{Room: room, Free: free}
	if course == nil {
		return ra, nil
	}

	candidates := free
	if split {
		candidates = availability.Partition(free, course.Slot.Length())
	}
	ra.Statuses = availability.Classify(candidates, *course, enrollments)
	return ra, nil
}

func (s *AvailabilityService) courseContext(q FreeSlotsQuery) (model.CourseContext, error) {
	day, err := s.calendar.Normalize(q.CourseDay)
	if err != nil {
		return model.CourseContext{}, err
	}
	if !q.CourseSlot.Valid() {
		return model.CourseContext{}, errors.New("course slot must satisfy 0 <= start < end <= 24")
	}
	return model.CourseContext{
		Name: strings.TrimSpace(q.CourseName),
		Day:  day,
		Slot: q.CourseSlot,
	}, nil
}

func (s *AvailabilityService) read(ctx context.Context, fn func(ctx context.Context) error) error {
	return readPolicy{retries: s.opts.ReadRetries, base: s.opts.RetryBase, logger: s.logger}.do(ctx, fn)
}
