package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository/base"
)

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(db base.DBTX) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(db)}
}

// ListRooms returns every room that has at least one reservation
func (r *ReservationRepository) ListRooms(ctx context.Context) ([]string, error) {
	rows, err := r.Query(ctx, `SELECT DISTINCT lr FROM lr_reserved ORDER BY lr`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []string
	for rows.Next() {
		var room string
		if err := rows.Scan(&room); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	return rooms, nil
}

// ListByRoomDay returns a room's reservations for a weekday ordered by start time
func (r *ReservationRepository) ListByRoomDay(ctx context.Context, room string, day model.Weekday) ([]model.Reservation, error) {
	query := `
		SELECT lr, day, start_time, end_time, course_name
		FROM lr_reserved
		WHERE lr = $1 AND day = $2
		ORDER BY start_time, end_time
	`

	rows, err := r.Query(ctx, query, room, day)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var res model.Reservation
		err := rows.Scan(
			&res.Room,
			&res.Day,
			&res.Slot.Start,
			&res.Slot.End,
			&res.CourseName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}

// Insert creates a reservation row
func (r *ReservationRepository) Insert(ctx context.Context, res model.Reservation) error {
	query := `
		INSERT INTO lr_reserved (lr, course_name, day, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.ExecAffected(ctx, query, res.Room, res.CourseName, res.Day, res.Slot.Start, res.Slot.End)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("insert reservation %s %s %s: %w", res.Room, res.Day, res.Slot, ErrDuplicate)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

// Delete removes a reservation and returns how many rows matched
func (r *ReservationRepository) Delete(ctx context.Context, res model.Reservation) (int64, error) {
	query := `
		DELETE FROM lr_reserved
		WHERE lr = $1 AND course_name = $2 AND day = $3 AND start_time = $4 AND end_time = $5
	`

	n, err := r.ExecAffected(ctx, query, res.Room, res.CourseName, res.Day, res.Slot.Start, res.Slot.End)
	if err != nil {
		return 0, fmt.Errorf("delete reservation: %w", err)
	}

	return n, nil
}

// LockRoomDay serialises bookings of one room/day until the transaction ends.
// Only meaningful inside a transaction.
func (r *ReservationRepository) LockRoomDay(ctx context.Context, room string, day model.Weekday) error {
	_, err := r.ExecAffected(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || '|' || $2))`, room, string(day))
	if err != nil {
		return fmt.Errorf("lock room %s %s: %w", room, day, err)
	}
	return nil
}
