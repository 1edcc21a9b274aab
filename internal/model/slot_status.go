package model

type SlotLabel string

const (
	SlotLabelGreen SlotLabel = "GREEN" // at least half of the enrolled students are free
	SlotLabelRed   SlotLabel = "RED"   // most enrolled students have a conflict
)

// SlotStatus is the classification of one candidate makeup slot.
type SlotStatus struct {
	Room             string    `json:"lr"`
	Day              Weekday   `json:"day"`
	Slot             TimeSlot  `json:"slot"`
	Label            SlotLabel `json:"label"`
	FreeFraction     float64   `json:"free_fraction"`
	FreeStudents     int       `json:"free_students"`
	EnrolledStudents int       `json:"enrolled_students"`
}

// IsGreen checks if the slot is recommended
func (s SlotStatus) IsGreen() bool {
	return s.Label == SlotLabelGreen
}
