package availability

import "github.com/Freeeeeet/makeup_scheduler/internal/model"

// Classify labels each candidate slot GREEN or RED for the given course.
//
// enrollments must contain the course's own meetings (to find who is enrolled)
// and every other meeting of those students; unrelated rows are ignored.
// Statuses come back in candidate order.
func Classify(candidates []model.FreeInterval, course model.CourseContext, enrollments []model.Enrollment) []model.SlotStatus {
	students := enrolledStudents(course, enrollments)

	// other meetings per student, grouped by weekday
	others := make(map[string][]model.Enrollment, len(students))
	for _, e := range enrollments {
		if _, ok := students[e.StudentEmail]; !ok || e.CourseName == course.Name {
			continue
		}
		others[e.StudentEmail] = append(others[e.StudentEmail], e)
	}

	statuses := make([]model.SlotStatus, len(candidates))
	for i, c := range candidates {
		free := 0
		for student := range students {
			if !conflicted(others[student], c) {
				free++
			}
		}
		statuses[i] = status(c, free, len(students))
	}
	return statuses
}

func enrolledStudents(course model.CourseContext, enrollments []model.Enrollment) map[string]struct{} {
	students := make(map[string]struct{})
	for _, e := range enrollments {
		if course.Matches(e) {
			students[e.StudentEmail] = struct{}{}
		}
	}
	return students
}

func conflicted(meetings []model.Enrollment, candidate model.FreeInterval) bool {
	for _, m := range meetings {
		if m.Day == candidate.Day && m.Slot.Overlaps(candidate.Slot) {
			return true
		}
	}
	return false
}

func status(c model.FreeInterval, free, enrolled int) model.SlotStatus {
	s := model.SlotStatus{
		Room:             c.Room,
		Day:              c.Day,
		Slot:             c.Slot,
		FreeStudents:     free,
		EnrolledStudents: enrolled,
		FreeFraction:     1.0,
		Label:            model.SlotLabelGreen,
	}
	if enrolled == 0 {
		return s
	}

	s.FreeFraction = float64(free) / float64(enrolled)
	// free/enrolled >= 1/2 without going through floats
	if 2*free < enrolled {
		s.Label = model.SlotLabelRed
	}
	return s
}
