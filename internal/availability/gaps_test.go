package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
)

func slots(pairs ...[2]int) []model.TimeSlot {
	out := make([]model.TimeSlot, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.TimeSlot{Start: p[0], End: p[1]})
	}
	return out
}

func TestFreeIntervals(t *testing.T) {
	window := model.OperatingWindow

	cases := []struct {
		name         string
		reservations []model.TimeSlot
		want         []model.TimeSlot
	}{
		{"no reservations", nil, slots([2]int{8, 18})},
		{"full coverage", slots([2]int{8, 18}), slots()},
		{"gaps around reservations", slots([2]int{10, 12}, [2]int{14, 16}), slots([2]int{8, 10}, [2]int{12, 14}, [2]int{16, 18})},
		{"reservation at window start", slots([2]int{8, 10}), slots([2]int{10, 18})},
		{"flush to window end", slots([2]int{8, 16}), slots([2]int{16, 18})},
		{"touching reservations", slots([2]int{9, 11}, [2]int{11, 13}), slots([2]int{8, 9}, [2]int{13, 18})},
		{"reservation past window end", slots([2]int{15, 20}), slots([2]int{8, 15})},
		{"reservation before window start", slots([2]int{6, 9}), slots([2]int{9, 18})},
		{"overlapping but sorted", slots([2]int{9, 13}, [2]int{11, 12}, [2]int{12, 14}), slots([2]int{8, 9}, [2]int{14, 18})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FreeIntervals(tc.reservations, window))
		})
	}
}

func TestFreeIntervalsCoverWindowExactly(t *testing.T) {
	window := model.OperatingWindow
	inputs := [][]model.TimeSlot{
		nil,
		slots([2]int{8, 18}),
		slots([2]int{10, 12}, [2]int{14, 16}),
		slots([2]int{8, 9}, [2]int{9, 10}, [2]int{17, 18}),
		slots([2]int{12, 13}),
	}

	for _, reservations := range inputs {
		free := FreeIntervals(reservations, window)

		covered := make(map[int]int)
		for _, s := range append(append([]model.TimeSlot{}, reservations...), free...) {
			for h := s.Start; h < s.End; h++ {
				covered[h]++
			}
		}
		for h := window.Start; h < window.End; h++ {
			require.Equalf(t, 1, covered[h], "hour %d in %v / %v", h, reservations, free)
		}

		for i := 1; i < len(free); i++ {
			assert.Less(t, free[i-1].End, free[i].Start, "free intervals must be ordered and separated")
		}
	}
}

func TestRoomFreeIntervals(t *testing.T) {
	reservations := []model.Reservation{
		{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 10, End: 12}, CourseName: "Networks"},
		{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 14, End: 16}, CourseName: "Databases"},
	}

	got := RoomFreeIntervals("12", "Monday", reservations, model.OperatingWindow)

	want := []model.FreeInterval{
		{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 8, End: 10}},
		{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 12, End: 14}},
		{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 16, End: 18}},
	}
	assert.Equal(t, want, got)
}

func TestCheckOrder(t *testing.T) {
	assert.Nil(t, CheckOrder(nil))
	assert.Nil(t, CheckOrder(slots([2]int{8, 10}, [2]int{10, 12})))

	err := CheckOrder(slots([2]int{12, 14}, [2]int{8, 10}))
	require.NotNil(t, err)
	assert.False(t, err.Overlap)
	assert.Equal(t, 1, err.Index)

	err = CheckOrder(slots([2]int{8, 11}, [2]int{10, 12}))
	require.NotNil(t, err)
	assert.True(t, err.Overlap)
	assert.Contains(t, err.Error(), "overlaps")

	// unsorted wins over an earlier overlap
	err = CheckOrder(slots([2]int{8, 11}, [2]int{10, 12}, [2]int{9, 10}))
	require.NotNil(t, err)
	assert.False(t, err.Overlap)
	assert.Equal(t, 2, err.Index)
}

func TestPartition(t *testing.T) {
	free := []model.FreeInterval{
		{Room: "36", Day: "Tuesday", Slot: model.TimeSlot{Start: 8, End: 14}},
		{Room: "36", Day: "Tuesday", Slot: model.TimeSlot{Start: 15, End: 17}},
	}

	got := Partition(free, 3)
	require.Len(t, got, 2)
	assert.Equal(t, model.TimeSlot{Start: 8, End: 11}, got[0].Slot)
	assert.Equal(t, model.TimeSlot{Start: 11, End: 14}, got[1].Slot)

	assert.Equal(t, free, Partition(free, 0))
	assert.Len(t, Partition(free, 1), 8)
}
