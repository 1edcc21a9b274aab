package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository/base"
)

type MakeupRepository struct {
	*base.Repository
}

func NewMakeupRepository(db base.DBTX) *MakeupRepository {
	return &MakeupRepository{Repository: base.NewRepository(db)}
}

// Insert creates the makeup request record
func (r *MakeupRepository) Insert(ctx context.Context, m *model.MakeupClass) error {
	query := `
		INSERT INTO makeup_classes (p_id, lr, day, start_time, end_time,
			course_name, course_day, course_start_time, course_end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		m.PID,
		m.Room,
		m.Day,
		m.Slot.Start,
		m.Slot.End,
		m.CourseName,
		m.CourseDay,
		m.CourseSlot.Start,
		m.CourseSlot.End,
	).Scan(&m.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert makeup: %w", err)
	}

	return nil
}

// Delete removes the makeup record matching every field and returns the row count
func (r *MakeupRepository) Delete(ctx context.Context, m model.MakeupClass) (int64, error) {
	query := `
		DELETE FROM makeup_classes
		WHERE p_id = $1 AND lr = $2 AND day = $3 AND start_time = $4 AND end_time = $5
		  AND course_name = $6 AND course_day = $7 AND course_start_time = $8 AND course_end_time = $9
	`

	n, err := r.ExecAffected(
		ctx, query,
		m.PID,
		m.Room,
		m.Day,
		m.Slot.Start,
		m.Slot.End,
		m.CourseName,
		m.CourseDay,
		m.CourseSlot.Start,
		m.CourseSlot.End,
	)
	if err != nil {
		return 0, fmt.Errorf("delete makeup: %w", err)
	}

	return n, nil
}

// ListByTeacher returns a faculty member's makeups, newest first
func (r *MakeupRepository) ListByTeacher(ctx context.Context, pid string) ([]model.MakeupClass, error) {
	query := `
		SELECT p_id, lr, day, start_time, end_time,
			course_name, course_day, course_start_time, course_end_time, created_at
		FROM makeup_classes
		WHERE p_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, pid)
	if err != nil {
		return nil, fmt.Errorf("list makeups: %w", err)
	}
	defer rows.Close()

	var makeups []model.MakeupClass
	for rows.Next() {
		var m model.MakeupClass
		err := rows.Scan(
			&m.PID,
			&m.Room,
			&m.Day,
			&m.Slot.Start,
			&m.Slot.End,
			&m.CourseName,
			&m.CourseDay,
			&m.CourseSlot.Start,
			&m.CourseSlot.End,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan makeup: %w", err)
		}
		makeups = append(makeups, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate makeups: %w", err)
	}

	return makeups, nil
}
