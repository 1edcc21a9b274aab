package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func rgbaAt(img image.Image, x, y float64) color.RGBA {
	return color.RGBAModel.Convert(img.At(int(x), int(y))).(color.RGBA)
}

func TestRoomBoardRendersPNG(t *testing.T) {
	b := Board{
		Day:    "Monday",
		Course: "CS-101",
		Columns: []Column{
			{
				Room: "12",
				Free: []model.TimeSlot{{Start: 8, End: 10}, {Start: 12, End: 14}, {Start: 16, End: 18}},
				Statuses: []model.SlotStatus{
					{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 8, End: 10}, Label: model.SlotLabelGreen, FreeStudents: 3, EnrolledStudents: 4},
					{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 12, End: 14}, Label: model.SlotLabelRed, FreeStudents: 1, EnrolledStudents: 4},
				},
			},
			{Room: "14", Free: []model.TimeSlot{{Start: 8, End: 18}}},
		},
	}

	data, err := RoomBoard(b)
	require.NoError(t, err)
	img := decode(t, data)

	g := newGeometry(Board{Window: model.OperatingWindow, Columns: b.Columns})
	assert.Equal(t, g.width, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())

	mid := g.columnX(0) + columnWidth/2
	reservedY := g.hourY(10) + g.cellHeight/2
	assert.Equal(t, reservedColor, rgbaAt(img, mid, reservedY))

	freeY := g.hourY(16) + g.cellHeight*1.5
	assert.NotEqual(t, reservedColor, rgbaAt(img, mid, freeY))

	// room 14 is free all day
	assert.NotEqual(t, reservedColor, rgbaAt(img, g.columnX(1)+columnWidth/2, reservedY))
}

func TestRoomBoardWidensForManyRooms(t *testing.T) {
	cols := make([]Column, 6)
	for i := range cols {
		cols[i] = Column{Room: string(rune('A' + i))}
	}

	data, err := RoomBoard(Board{Day: "Friday", Columns: cols})
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, leftLabelsWidth+6*columnWidth+legendWidth, img.Bounds().Dx())
}

func TestRoomBoardRejectsEmptyAndInvalid(t *testing.T) {
	_, err := RoomBoard(Board{Day: "Monday"})
	assert.ErrorIs(t, err, ErrNoRooms)

	_, err = RoomBoard(Board{
		Day:     "Monday",
		Window:  model.TimeSlot{Start: 18, End: 8},
		Columns: []Column{{Room: "12"}},
	})
	assert.Error(t, err)
}
