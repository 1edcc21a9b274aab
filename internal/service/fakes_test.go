package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory stand-in for the Postgres store
type memStore struct {
	mu           sync.Mutex
	reservations []model.Reservation
	makeups      []model.MakeupClass
	commitments  []model.Enrollment
	students     map[string][]string // course name -> emails

	// failReads fails that many reads before succeeding
	failReads int
	// failInsertReservation makes the second insert of a booking fail
	failInsertReservation bool
	locks                 int
}

func newMemStore(res ...model.Reservation) *memStore {
	return &memStore{reservations: res, students: map[string][]string{}}
}

func (s *memStore) readFault() error {
	if s.failReads > 0 {
		s.failReads--
		return errStoreDown
	}
	return nil
}

func (s *memStore) ListRooms(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readFault(); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var rooms []string
	for _, r := range s.reservations {
		if !seen[r.Room] {
			seen[r.Room] = true
			rooms = append(rooms, r.Room)
		}
	}
	sort.Strings(rooms)
	return rooms, nil
}

func (s *memStore) ListByRoomDay(_ context.Context, room string, day model.Weekday) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readFault(); err != nil {
		return nil, err
	}
	return s.byRoomDay(room, day), nil
}

func (s *memStore) byRoomDay(room string, day model.Weekday) []model.Reservation {
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.Room == room && r.Day == day {
			out = append(out, r)
		}
	}
	return out
}

func (s *memStore) ListCommitments(_ context.Context, _ model.CourseContext, _ model.Weekday) ([]model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readFault(); err != nil {
		return nil, err
	}
	return s.commitments, nil
}

func (s *memStore) ListStudentEmails(_ context.Context, course model.CourseContext) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readFault(); err != nil {
		return nil, err
	}
	return s.students[course.Name], nil
}

// WithTx works on a copy and publishes it only when fn succeeds
func (s *memStore) WithTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:        s,
		reservations: append([]model.Reservation(nil), s.reservations...),
		makeups:      append([]model.MakeupClass(nil), s.makeups...),
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.reservations = tx.reservations
	s.makeups = tx.makeups
	return nil
}

type memTx struct {
	store        *memStore
	reservations []model.Reservation
	makeups      []model.MakeupClass
}

func (t *memTx) LockRoomDay(context.Context, string, model.Weekday) error {
	t.store.locks++
	return nil
}

func (t *memTx) ListByRoomDay(_ context.Context, room string, day model.Weekday) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.reservations {
		if r.Room == room && r.Day == day {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) InsertReservation(_ context.Context, res model.Reservation) error {
	if t.store.failInsertReservation {
		return errStoreDown
	}
	for _, r := range t.reservations {
		if r.Room == res.Room && r.Day == res.Day && r.Slot.Start == res.Slot.Start {
			return repository.ErrDuplicate
		}
	}
	t.reservations = append(t.reservations, res)
	return nil
}

func (t *memTx) DeleteReservation(_ context.Context, res model.Reservation) (int64, error) {
	for i, r := range t.reservations {
		if r == res {
			t.reservations = append(t.reservations[:i], t.reservations[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (t *memTx) InsertMakeup(_ context.Context, m *model.MakeupClass) error {
	t.makeups = append(t.makeups, *m)
	return nil
}

func (t *memTx) DeleteMakeup(_ context.Context, m model.MakeupClass) (int64, error) {
	for i, existing := range t.makeups {
		existing.CreatedAt = m.CreatedAt
		if existing == m {
			t.makeups = append(t.makeups[:i], t.makeups[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type recordingNotifier struct {
	events []events.Makeup
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev events.Makeup) error {
	n.events = append(n.events, ev)
	return n.err
}

type memCredentials struct {
	byPID map[string]model.Credential
	err   error
}

func (m *memCredentials) Create(_ context.Context, c *model.Credential) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byPID[c.PID]; ok {
		return repository.ErrDuplicate
	}
	m.byPID[c.PID] = *c
	return nil
}

func (m *memCredentials) GetByPID(_ context.Context, pid string) (*model.Credential, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.byPID[pid]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type staticTokens struct{}

func (staticTokens) Issue(pid, name string) (string, error) {
	return "token-for-" + pid, nil
}

func reservation(room string, day model.Weekday, start, end int, course string) model.Reservation {
	return model.Reservation{Room: room, Day: day, Slot: model.TimeSlot{Start: start, End: end}, CourseName: course}
}
