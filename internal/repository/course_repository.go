package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository/base"
)

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(db base.DBTX) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(db)}
}

// ListByTeacher returns the regular course meetings assigned to a faculty member
func (r *CourseRepository) ListByTeacher(ctx context.Context, pid string) ([]model.TeacherCourse, error) {
	query := `
		SELECT p_id, course_name, day, start_time, end_time, lr
		FROM teachers_assigned_courses
		WHERE p_id = $1
		ORDER BY day, start_time
	`

	rows, err := r.Query(ctx, query, pid)
	if err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	defer rows.Close()

	var courses []model.TeacherCourse
	for rows.Next() {
		var c model.TeacherCourse
		err := rows.Scan(
			&c.PID,
			&c.CourseName,
			&c.Day,
			&c.Slot.Start,
			&c.Slot.End,
			&c.Room,
		)
		if err != nil {
			return nil, fmt.Errorf("scan teacher course: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teacher courses: %w", err)
	}

	return courses, nil
}
