package model

// Reservation is one committed occupancy of a room on a weekday (lr_reserved).
type Reservation struct {
	Room       string   `json:"lr"`
	Day        Weekday  `json:"day"`
	Slot       TimeSlot `json:"slot"`
	CourseName string   `json:"course_name"`
}

// FreeInterval is a gap in a room's calendar. It is recomputed on every query.
type FreeInterval struct {
	Room string   `json:"lr"`
	Day  Weekday  `json:"day"`
	Slot TimeSlot `json:"slot"`
}

// Enrollment is a student's regular meeting of a course (students_assigned_courses).
type Enrollment struct {
	StudentEmail string   `json:"s_mail"`
	CourseName   string   `json:"course_assigned"`
	Day          Weekday  `json:"day"`
	Slot         TimeSlot `json:"slot"`
}

// CourseContext identifies the regular meeting a makeup substitutes for.
type CourseContext struct {
	Name string   `json:"course_name"`
	Day  Weekday  `json:"course_day"`
	Slot TimeSlot `json:"course_slot"`
}

// Matches reports whether e is the regular meeting described by c.
func (c CourseContext) Matches(e Enrollment) bool {
	return e.CourseName == c.Name && e.Day == c.Day && e.Slot == c.Slot
}
