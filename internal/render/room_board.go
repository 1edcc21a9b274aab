// Package render draws room availability boards for chat clients.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var ErrNoRooms = errors.New("render: board has no rooms")

type fontStyle int

const (
	fontRegular fontStyle = iota
	fontBold
)

// Layout
const (
	imageHeight      = 760
	headerHeight     = 110
	footerHeight     = 60
	leftLabelsWidth  = 80
	legendWidth      = 170
	columnWidth      = 130
	minColumns       = 4
	columnPaddingX   = 8
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
)

// Font sizes
const (
	titleFontSize      = 26.0
	subtitleFontSize   = 17.0
	roomFontSize       = 20.0
	hourLabelFontSize  = 16.0
	slotTimeFontSize   = 15.0
	legendItemFontSize = 13.0
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	evenColumn     = color.NRGBA{240, 240, 240, 255}
	oddColumn      = color.NRGBA{228, 228, 228, 255}

	reservedColor   = color.RGBA{176, 180, 186, 255}
	freeColor       = color.RGBA{190, 220, 250, 235}
	greenColor      = color.RGBA{133, 193, 85, 235}
	redColor        = color.RGBA{255, 182, 193, 255}
	slotTextColor   = color.RGBA{20, 24, 28, 230}
	redTextColor    = color.RGBA{120, 40, 50, 255}
	slotShadowColor = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// Column is one room: its free intervals and, when a course was given,
// the classified candidate slots.
type Column struct {
	Room     string
	Free     []model.TimeSlot
	Statuses []model.SlotStatus
}

// Board describes one weekday across rooms. Hours not covered by a free
// interval are drawn as reserved.
type Board struct {
	Day     model.Weekday
	Course  string
	Window  model.TimeSlot
	Columns []Column
}

var (
	fontMu      sync.Mutex
	cachedFonts = make(map[fontStyle]*opentype.Font)
)

// loadFont sets a Go font face of the given size, falling back to basicfont
func loadFont(dc *gg.Context, size float64, style fontStyle) {
	fontMu.Lock()
	f, ok := cachedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == fontBold {
			data = gobold.TTF
		}
		parsed, err := opentype.Parse(data)
		if err == nil {
			cachedFonts[style] = parsed
			f = parsed
		}
	}
	fontMu.Unlock()

	if f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

type geometry struct {
	window     model.TimeSlot
	width      int
	cellHeight float64
}

func newGeometry(b Board) geometry {
	cols := len(b.Columns)
	if cols < minColumns {
		cols = minColumns
	}
	return geometry{
		window:     b.Window,
		width:      leftLabelsWidth + cols*columnWidth + legendWidth,
		cellHeight: float64(imageHeight-headerHeight-footerHeight) / float64(b.Window.Length()),
	}
}

func (g geometry) columnX(i int) float64 {
	return float64(leftLabelsWidth + i*columnWidth)
}

func (g geometry) hourY(hour int) float64 {
	return float64(headerHeight) + float64(hour-g.window.Start)*g.cellHeight
}

// RoomBoard renders the board as a PNG
func RoomBoard(b Board) ([]byte, error) {
	if len(b.Columns) == 0 {
		return nil, ErrNoRooms
	}
	if b.Window == (model.TimeSlot{}) {
		b.Window = model.OperatingWindow
	}
	if !b.Window.Valid() {
		return nil, fmt.Errorf("render: invalid window %s", b.Window)
	}

	g := newGeometry(b)
	dc := gg.NewContext(g.width, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, b)
	drawHourLabels(dc, g)
	for i, col := range b.Columns {
		drawColumn(dc, g, i, col)
	}
	drawLegend(dc, g, b.Course != "")

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawHeader(dc *gg.Context, b Board) {
	loadFont(dc, titleFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(fmt.Sprintf("Lab rooms on %s", b.Day), float64(leftLabelsWidth), 34, 0, 0.5)

	if b.Course != "" {
		loadFont(dc, subtitleFontSize, fontRegular)
		dc.DrawStringAnchored("Makeup options for "+b.Course, float64(leftLabelsWidth), 62, 0, 0.5)
	}
}

func drawHourLabels(dc *gg.Context, g geometry) {
	loadFont(dc, hourLabelFontSize, fontRegular)
	dc.SetColor(hourLabelColor)
	for h := g.window.Start; h <= g.window.End; h++ {
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h), float64(leftLabelsWidth)-10, g.hourY(h), 1, 0.5)
	}
}

func drawColumn(dc *gg.Context, g geometry, i int, col Column) {
	x := g.columnX(i)
	top := g.hourY(g.window.Start)
	bottom := g.hourY(g.window.End)

	if i%2 == 0 {
		dc.SetColor(evenColumn)
	} else {
		dc.SetColor(oddColumn)
	}
	dc.DrawRectangle(x, top-40, columnWidth, bottom-top+40)
	dc.Fill()

	loadFont(dc, roomFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(col.Room, x+columnWidth/2, top-20, 0.5, 0.5)

	// everything starts reserved, free time is painted over it
	dc.SetColor(reservedColor)
	dc.DrawRectangle(x+columnPaddingX, top, columnWidth-2*columnPaddingX, bottom-top)
	dc.Fill()

	for _, slot := range col.Free {
		drawBlock(dc, g, x, slot, freeColor, slotTextColor, "")
	}
	for _, st := range col.Statuses {
		fill, text := greenColor, slotTextColor
		if !st.IsGreen() {
			fill, text = redColor, redTextColor
		}
		drawBlock(dc, g, x, st.Slot, fill, text, fmt.Sprintf("%d/%d free", st.FreeStudents, st.EnrolledStudents))
	}

	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for h := g.window.Start; h <= g.window.End; h++ {
		y := g.hourY(h)
		dc.DrawLine(x, y, x+columnWidth, y)
		dc.Stroke()
	}
}

func drawBlock(dc *gg.Context, g geometry, x float64, slot model.TimeSlot, fill, text color.RGBA, note string) {
	if !slot.Overlaps(g.window) {
		return
	}
	start, end := max(slot.Start, g.window.Start), min(slot.End, g.window.End)
	y := g.hourY(start) + 2
	h := float64(end-start)*g.cellHeight - 4
	w := columnWidth - 2*columnPaddingX

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+columnPaddingX+shadowOffset, y+shadowOffset, float64(w), h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+columnPaddingX, y, float64(w), h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+columnPaddingX, y, float64(w), h, slotBorderRadius)
	dc.Stroke()

	loadFont(dc, slotTimeFontSize, fontBold)
	dc.SetColor(text)
	txtX := x + columnPaddingX + 8
	dc.DrawStringAnchored(model.TimeSlot{Start: start, End: end}.String(), txtX, y+16, 0, 0)

	if note != "" && h > 40 {
		loadFont(dc, slotTimeFontSize-2, fontRegular)
		dc.DrawStringAnchored(note, txtX, y+34, 0, 0)
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

type legendItem struct {
	label string
	clr   color.Color
}

func drawLegend(dc *gg.Context, g geometry, classified bool) {
	items := []legendItem{
		{"Reserved", reservedColor},
		{"Free", freeColor},
	}
	if classified {
		items = append(items,
			legendItem{"GREEN: most free", greenColor},
			legendItem{"RED: conflicts", redColor},
		)
	}

	const boxW, boxH = 20.0, 14.0
	x := float64(g.width - legendWidth + 16)
	y := g.hourY(g.window.Start)

	loadFont(dc, legendItemFontSize, fontRegular)
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}
