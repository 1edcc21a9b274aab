package model

import "time"

// Credential is a faculty login record. PinHash holds the bcrypt hash, never the pin.
type Credential struct {
	PID            string `json:"p_id"`
	RegisteredName string `json:"registered_name"`
	PinHash        string `json:"-"`
}

// TeacherCourse is a regular course meeting assigned to a faculty member.
type TeacherCourse struct {
	PID        string   `json:"p_id"`
	CourseName string   `json:"course_name"`
	Day        Weekday  `json:"day"`
	Slot       TimeSlot `json:"slot"`
	Room       string   `json:"lr"`
}

// Context returns the course meeting as a classification context.
func (c TeacherCourse) Context() CourseContext {
	return CourseContext{Name: c.CourseName, Day: c.Day, Slot: c.Slot}
}

// MakeupClass is the request record stored alongside the room reservation.
type MakeupClass struct {
	PID        string    `json:"p_id"`
	Room       string    `json:"lr"`
	Day        Weekday   `json:"day"`
	Slot       TimeSlot  `json:"slot"`
	CourseName string    `json:"course_name"`
	CourseDay  Weekday   `json:"course_day"`
	CourseSlot TimeSlot  `json:"course_slot"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reservation returns the lr_reserved row that backs this makeup.
func (m MakeupClass) Reservation() Reservation {
	return Reservation{Room: m.Room, Day: m.Day, Slot: m.Slot, CourseName: m.CourseName}
}

// Course returns the regular meeting the makeup replaces.
func (m MakeupClass) Course() CourseContext {
	return CourseContext{Name: m.CourseName, Day: m.CourseDay, Slot: m.CourseSlot}
}
