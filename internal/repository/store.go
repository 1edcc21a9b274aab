package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingTx is what a booking or removal may touch inside one transaction.
type BookingTx interface {
	LockRoomDay(ctx context.Context, room string, day model.Weekday) error
	ListByRoomDay(ctx context.Context, room string, day model.Weekday) ([]model.Reservation, error)
	InsertReservation(ctx context.Context, res model.Reservation) error
	DeleteReservation(ctx context.Context, res model.Reservation) (int64, error)
	InsertMakeup(ctx context.Context, m *model.MakeupClass) error
	DeleteMakeup(ctx context.Context, m model.MakeupClass) (int64, error)
}

// Store groups the repositories that share one pool.
type Store struct {
	pool         *pgxpool.Pool
	Credentials  *CredentialRepository
	Courses      *CourseRepository
	Enrollments  *EnrollmentRepository
	Reservations *ReservationRepository
	Makeups      *MakeupRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		Credentials:  NewCredentialRepository(pool),
		Courses:      NewCourseRepository(pool),
		Enrollments:  NewEnrollmentRepository(pool),
		Reservations: NewReservationRepository(pool),
		Makeups:      NewMakeupRepository(pool),
	}
}

// WithTx runs fn in a transaction. fn's error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(tx BookingTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newTxRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txRepos struct {
	reservations *ReservationRepository
	makeups      *MakeupRepository
}

func newTxRepos(tx pgx.Tx) *txRepos {
	return &txRepos{
		reservations: NewReservationRepository(tx),
		makeups:      NewMakeupRepository(tx),
	}
}

func (t *txRepos) LockRoomDay(ctx context.Context, room string, day model.Weekday) error {
	return t.reservations.LockRoomDay(ctx, room, day)
}

func (t *txRepos) ListByRoomDay(ctx context.Context, room string, day model.Weekday) ([]model.Reservation, error) {
	return t.reservations.ListByRoomDay(ctx, room, day)
}

func (t *txRepos) InsertReservation(ctx context.Context, res model.Reservation) error {
	return t.reservations.Insert(ctx, res)
}

func (t *txRepos) DeleteReservation(ctx context.Context, res model.Reservation) (int64, error) {
	return t.reservations.Delete(ctx, res)
}

func (t *txRepos) InsertMakeup(ctx context.Context, m *model.MakeupClass) error {
	return t.makeups.Insert(ctx, m)
}

func (t *txRepos) DeleteMakeup(ctx context.Context, m model.MakeupClass) (int64, error) {
	return t.makeups.Delete(ctx, m)
}
