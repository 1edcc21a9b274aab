// Package availability computes free intervals in a room's day and labels them
// by how many enrolled students could attend a makeup there.
package availability

import (
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
)

// FreeIntervals returns the gaps of window not covered by reservations.
//
// reservations must be sorted by Start. Overlapping entries are tolerated because
// the cursor only moves forward, but unsorted input gives meaningless output; use
// CheckOrder when the source is not trusted.
func FreeIntervals(reservations []model.TimeSlot, window model.TimeSlot) []model.TimeSlot {
	free := make([]model.TimeSlot, 0, len(reservations)+1)
	cursor := window.Start

	for _, r := range reservations {
		if cursor < r.Start {
			free = append(free, model.TimeSlot{Start: cursor, End: r.Start})
		}
		if r.End > cursor {
			cursor = r.End
		}
	}

	if cursor < window.End {
		free = append(free, model.TimeSlot{Start: cursor, End: window.End})
	}

	return free
}

// RoomFreeIntervals runs FreeIntervals over one room's reservations for a day.
func RoomFreeIntervals(room string, day model.Weekday, reservations []model.Reservation, window model.TimeSlot) []model.FreeInterval {
	slots := make([]model.TimeSlot, len(reservations))
	for i, r := range reservations {
		slots[i] = r.Slot
	}

	gaps := FreeIntervals(slots, window)
	out := make([]model.FreeInterval, len(gaps))
	for i, g := range gaps {
		out[i] = model.FreeInterval{Room: room, Day: day, Slot: g}
	}
	return out
}

// OrderError describes reservations that break the engine's precondition.
type OrderError struct {
	Index    int
	Previous model.TimeSlot
	Current  model.TimeSlot
	Overlap  bool // sorted, but Current starts before Previous ends
}

func (e *OrderError) Error() string {
	if e.Overlap {
		return fmt.Sprintf("reservation %d %s overlaps %s", e.Index, e.Current, e.Previous)
	}
	return fmt.Sprintf("reservation %d %s starts before %s", e.Index, e.Current, e.Previous)
}

// CheckOrder returns the first precondition violation in reservations, or nil.
// Unsorted input is reported before any overlap.
func CheckOrder(reservations []model.TimeSlot) *OrderError {
	var overlap *OrderError
	for i := 1; i < len(reservations); i++ {
		prev, cur := reservations[i-1], reservations[i]
		if cur.Start < prev.Start {
			return &OrderError{Index: i, Previous: prev, Current: cur}
		}
		if overlap == nil && cur.Start < prev.End {
			overlap = &OrderError{Index: i, Previous: prev, Current: cur, Overlap: true}
		}
	}
	return overlap
}

// Partition splits free intervals into consecutive candidates of length hours.
// A tail shorter than length is dropped. length <= 0 returns free unchanged.
func Partition(free []model.FreeInterval, length int) []model.FreeInterval {
	if length <= 0 {
		return free
	}

	var out []model.FreeInterval
	for _, f := range free {
		for start := f.Slot.Start; start+length <= f.Slot.End; start += length {
			out = append(out, model.FreeInterval{
				Room: f.Room,
				Day:  f.Day,
				Slot: model.TimeSlot{Start: start, End: start + length},
			})
		}
	}
	return out
}
