package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository/base"
)

type EnrollmentRepository struct {
	*base.Repository
}

func NewEnrollmentRepository(db base.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{Repository: base.NewRepository(db)}
}

// ListStudentEmails returns the students enrolled in one regular course meeting
func (r *EnrollmentRepository) ListStudentEmails(ctx context.Context, course model.CourseContext) ([]string, error) {
	query := `
		SELECT DISTINCT s_mail
		FROM students_assigned_courses
		WHERE course_assigned = $1 AND day = $2 AND start_time = $3 AND end_time = $4
		ORDER BY s_mail
	`

	rows, err := r.Query(ctx, query, course.Name, course.Day, course.Slot.Start, course.Slot.End)
	if err != nil {
		return nil, fmt.Errorf("list student emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan student email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student emails: %w", err)
	}

	return emails, nil
}

// ListCommitments returns the course's own meeting rows plus everything its
// students attend on day: regular meetings and makeups booked for their courses.
func (r *EnrollmentRepository) ListCommitments(ctx context.Context, course model.CourseContext, day model.Weekday) ([]model.Enrollment, error) {
	query := `
		WITH enrolled AS (
			SELECT DISTINCT s_mail
			FROM students_assigned_courses
			WHERE course_assigned = $1 AND day = $2 AND start_time = $3 AND end_time = $4
		)
		SELECT s.s_mail, s.course_assigned, s.day, s.start_time, s.end_time
		FROM students_assigned_courses s
		JOIN enrolled e ON e.s_mail = s.s_mail
		WHERE s.day = $5
		   OR (s.course_assigned = $1 AND s.day = $2 AND s.start_time = $3 AND s.end_time = $4)
		UNION ALL
		SELECT s.s_mail, m.course_name, m.day, m.start_time, m.end_time
		FROM makeup_classes m
		JOIN students_assigned_courses s
		  ON s.course_assigned = m.course_name
		 AND s.day = m.course_day
		 AND s.start_time = m.course_start_time
		 AND s.end_time = m.course_end_time
		JOIN enrolled e ON e.s_mail = s.s_mail
		WHERE m.day = $5
	`

	rows, err := r.Query(ctx, query, course.Name, course.Day, course.Slot.Start, course.Slot.End, day)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	defer rows.Close()

	var out []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		err := rows.Scan(
			&e.StudentEmail,
			&e.CourseName,
			&e.Day,
			&e.Slot.Start,
			&e.Slot.End,
		)
		if err != nil {
			return nil, fmt.Errorf("scan commitment: %w", err)
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commitments: %w", err)
	}

	return out, nil
}
