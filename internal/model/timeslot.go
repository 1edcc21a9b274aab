package model

import "fmt"

// OperatingWindow is the daily range during which lab rooms can be booked.
var OperatingWindow = TimeSlot{Start: 8, End: 18}

// TimeSlot is a half-open range of whole hours [Start, End) on a 24h clock.
type TimeSlot struct {
	Start int `json:"start_time"`
	End   int `json:"end_time"`
}

// Valid checks 0 <= Start < End <= 24
func (s TimeSlot) Valid() bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= 24
}

// Within reports whether s lies entirely inside w.
func (s TimeSlot) Within(w TimeSlot) bool {
	return s.Start >= w.Start && s.End <= w.End
}

// Overlaps reports whether two half-open slots share at least one hour.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start < o.End && o.Start < s.End
}

// Length returns the slot duration in hours.
func (s TimeSlot) Length() int {
	return s.End - s.Start
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", s.Start, s.End)
}
