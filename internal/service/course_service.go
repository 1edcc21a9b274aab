package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"go.uber.org/zap"
)

type CourseLister interface {
	ListByTeacher(ctx context.Context, pid string) ([]model.TeacherCourse, error)
}

type MakeupLister interface {
	ListByTeacher(ctx context.Context, pid string) ([]model.MakeupClass, error)
}

// CourseService serves a faculty member's own records
type CourseService struct {
	courses CourseLister
	makeups MakeupLister
	logger  *zap.Logger
}

func NewCourseService(courses CourseLister, makeups MakeupLister, logger *zap.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		makeups: makeups,
		logger:  logger,
	}
}

// Courses returns the regular meetings assigned to pid
func (s *CourseService) Courses(ctx context.Context, pid string) ([]model.TeacherCourse, error) {
	const op = "get-courses"

	if strings.TrimSpace(pid) == "" {
		return nil, Invalid(op, "p_id is required")
	}

	courses, err := s.courses.ListByTeacher(ctx, pid)
	if err != nil {
		s.logger.Error("Failed to list courses", zap.String("p_id", pid), zap.Error(err))
		return nil, E(KindUpstream, op, err)
	}
	if courses == nil {
		courses = []model.TeacherCourse{}
	}

	return courses, nil
}

// Makeups returns the makeups pid has booked, newest first
func (s *CourseService) Makeups(ctx context.Context, pid string) ([]model.MakeupClass, error) {
	const op = "get-makeups"

	if strings.TrimSpace(pid) == "" {
		return nil, Invalid(op, "p_id is required")
	}

	makeups, err := s.makeups.ListByTeacher(ctx, pid)
	if err != nil {
		s.logger.Error("Failed to list makeups", zap.String("p_id", pid), zap.Error(err))
		return nil, E(KindUpstream, op, err)
	}
	if makeups == nil {
		makeups = []model.MakeupClass{}
	}

	return makeups, nil
}
