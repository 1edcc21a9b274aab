package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/makeup_scheduler/internal/controller/state"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chatID = int64(500)

type recordingMessenger struct {
	texts   []string
	photos  []*bot.SendPhotoParams
	deleted []int
}

func (r *recordingMessenger) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	r.texts = append(r.texts, p.Text)
	return &models.Message{}, nil
}

func (r *recordingMessenger) SendPhoto(_ context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	r.photos = append(r.photos, p)
	return &models.Message{}, nil
}

func (r *recordingMessenger) DeleteMessage(_ context.Context, p *bot.DeleteMessageParams) (bool, error) {
	r.deleted = append(r.deleted, p.MessageID)
	return true, nil
}

func (r *recordingMessenger) last() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, pid, pin string) (string, *model.Credential, error) {
	if pid != "P-1" || pin != "4321" {
		return "", nil, service.E(service.KindUnauthorized, "login", service.ErrInvalidCredentials)
	}
	return "tok", &model.Credential{PID: "P-1", RegisteredName: "Dr. Sana"}, nil
}

type fakeCourses struct {
	calls int
}

func (f *fakeCourses) Courses(context.Context, string) ([]model.TeacherCourse, error) {
	f.calls++
	return []model.TeacherCourse{
		{PID: "P-1", CourseName: "CS-101", Day: "Tuesday", Slot: model.TimeSlot{Start: 10, End: 12}, Room: "12"},
	}, nil
}

type fakeFinder struct {
	got   service.FreeSlotsQuery
	empty bool
	err   error
}

func (f *fakeFinder) FreeSlots(_ context.Context, q service.FreeSlotsQuery) (*service.FreeSlotsResult, error) {
	f.got = q
	if f.err != nil {
		return nil, f.err
	}
	res := &service.FreeSlotsResult{TargetDay: "Monday", Course: &model.CourseContext{Name: q.CourseName}}
	if f.empty {
		return res, nil
	}
	res.Rooms = []service.RoomAvailability{{
		Room: "12",
		Free: []model.FreeInterval{{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 8, End: 10}}},
		Statuses: []model.SlotStatus{
			{Room: "12", Day: "Monday", Slot: model.TimeSlot{Start: 8, End: 10}, Label: model.SlotLabelGreen, FreeFraction: 1, FreeStudents: 2, EnrolledStudents: 2},
		},
	}}
	return res, nil
}

type fakeAssistant struct {
	requests []service.AssistantRequest
	resets   []string
	err      error
}

func (f *fakeAssistant) Reply(_ context.Context, req service.AssistantRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return "Room 12 at 08:00 works for everyone.", nil
}

func (f *fakeAssistant) Reset(_ context.Context, conversation string) error {
	f.resets = append(f.resets, conversation)
	return nil
}

type fixture struct {
	h         *Handlers
	m         *recordingMessenger
	sm        *state.Manager
	courses   *fakeCourses
	finder    *fakeFinder
	assistant *fakeAssistant
}

func newFixture() *fixture {
	f := &fixture{
		m:         &recordingMessenger{},
		sm:        state.NewManager(),
		courses:   &fakeCourses{},
		finder:    &fakeFinder{},
		assistant: &fakeAssistant{},
	}
	f.h = NewHandlers(fakeAuth{}, f.courses, f.finder, f.assistant, f.sm, zap.NewNop())
	return f
}

func message(text string) *models.Message {
	return &models.Message{
		ID:   77,
		Chat: models.Chat{ID: chatID},
		From: &models.User{ID: 9, FirstName: "Sana"},
		Text: text,
	}
}

func (f *fixture) link(t *testing.T) {
	t.Helper()
	f.h.HandleLink(context.Background(), f.m, message("/link P-1 4321"))
	require.Equal(t, state.StateLinked, f.sm.GetState(chatID))
}

func TestStartGreetsByName(t *testing.T) {
	f := newFixture()
	f.h.HandleStart(context.Background(), f.m, message("/start"))
	assert.Contains(t, f.m.last(), "Hi, Sana!")
}

func TestLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.h.HandleLink(ctx, f.m, message("/link P-1"))
	assert.Contains(t, f.m.last(), "Usage")
	assert.Empty(t, f.m.deleted)

	f.h.HandleLink(ctx, f.m, message("/link P-1 0000"))
	assert.Equal(t, "❌ Invalid p_id or pin.", f.m.last())
	assert.Equal(t, state.StateNone, f.sm.GetState(chatID))
	assert.Equal(t, []int{77}, f.m.deleted)

	f.h.HandleLink(ctx, f.m, message("/link P-1 4321"))
	assert.Contains(t, f.m.last(), "Linked as Dr. Sana")
	assert.Equal(t, "P-1", f.sm.GetString(chatID, state.KeyPID))
	assert.Equal(t, []string{"tg:500"}, f.assistant.resets)
}

func TestCommandsRequireLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.h.HandleCourses(ctx, f.m, message("/courses"))
	assert.Contains(t, f.m.last(), "/link")

	f.h.HandleSlots(ctx, f.m, message("/slots 1 Monday"))
	assert.Contains(t, f.m.last(), "/link")
	assert.Equal(t, 0, f.courses.calls)
}

func TestCoursesListsAndCaches(t *testing.T) {
	f := newFixture()
	f.link(t)

	f.h.HandleCourses(context.Background(), f.m, message("/courses"))
	assert.Contains(t, f.m.last(), "1. CS-101, Tuesday 10:00-12:00, room 12")

	_, ok := f.sm.GetData(chatID, state.KeyCourses)
	assert.True(t, ok)
}

func TestSlotsSendsBoardAndGreenOptions(t *testing.T) {
	f := newFixture()
	f.link(t)
	ctx := context.Background()

	f.h.HandleSlots(ctx, f.m, message("/slots 1 monday"))

	assert.Equal(t, service.FreeSlotsQuery{
		TargetDay:           "monday",
		CourseName:          "CS-101",
		CourseDay:           "Tuesday",
		CourseSlot:          model.TimeSlot{Start: 10, End: 12},
		SplitByCourseLength: true,
	}, f.finder.got)
	assert.Equal(t, 1, f.courses.calls)

	require.Len(t, f.m.photos, 1)
	assert.Equal(t, "Lab rooms on Monday", f.m.photos[0].Caption)
	assert.Contains(t, f.m.last(), "Room 12, 08:00-10:00 (2/2 students free)")

	assert.Equal(t, state.StateExploring, f.sm.GetState(chatID))
	assert.NotEmpty(t, f.sm.GetString(chatID, state.KeyFreeSlotsInfo))
	assert.Equal(t, "Monday", f.sm.GetString(chatID, state.KeyTargetDay))
}

func TestSlotsArgumentErrors(t *testing.T) {
	f := newFixture()
	f.link(t)
	ctx := context.Background()

	f.h.HandleSlots(ctx, f.m, message("/slots"))
	assert.Contains(t, f.m.last(), "Usage")

	f.h.HandleSlots(ctx, f.m, message("/slots one Monday"))
	assert.Contains(t, f.m.last(), "must be a number")

	f.h.HandleSlots(ctx, f.m, message("/slots 3 Monday"))
	assert.Contains(t, f.m.last(), "between 1 and 1")

	f.finder.err = service.Invalid("get-free-slots", "unknown weekday %q", "Funday")
	f.h.HandleSlots(ctx, f.m, message("/slots 1 Funday"))
	assert.Equal(t, `❌ unknown weekday "Funday"`, f.m.last())

	f.finder.err = nil
	f.finder.empty = true
	f.h.HandleSlots(ctx, f.m, message("/slots 1 Monday"))
	assert.Equal(t, "No free lab rooms on Monday.", f.m.last())
	assert.Empty(t, f.m.photos)
	assert.Equal(t, state.StateLinked, f.sm.GetState(chatID))
}

func TestTextMessageRouting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.h.HandleTextMessage(ctx, f.m, message("hello"))
	assert.Contains(t, f.m.last(), "/link")

	f.link(t)
	f.h.HandleTextMessage(ctx, f.m, message("hello"))
	assert.Contains(t, f.m.last(), "/slots")

	f.h.HandleSlots(ctx, f.m, message("/slots 1 Monday"))
	f.h.HandleTextMessage(ctx, f.m, message("which room is best?"))
	assert.Equal(t, "Room 12 at 08:00 works for everyone.", f.m.last())

	require.Len(t, f.assistant.requests, 1)
	req := f.assistant.requests[0]
	assert.Equal(t, "tg:500", req.Conversation)
	assert.Equal(t, "which room is best?", req.Message)
	assert.Equal(t, f.sm.GetString(chatID, state.KeyFreeSlotsInfo), req.FreeSlotsInfo)

	sent := len(f.m.texts)
	f.h.HandleTextMessage(ctx, f.m, message("/unknown"))
	assert.Len(t, f.m.texts, sent)
}

func TestTextMessageAssistantDown(t *testing.T) {
	f := newFixture()
	f.link(t)
	ctx := context.Background()

	f.h.HandleSlots(ctx, f.m, message("/slots 1 Monday"))
	f.assistant.err = service.E(service.KindUpstream, "generate-response", errors.New("quota"))
	f.h.HandleTextMessage(ctx, f.m, message("hi"))
	assert.Contains(t, f.m.last(), "unavailable")
}

func TestResetAndUnlink(t *testing.T) {
	f := newFixture()
	f.link(t)
	ctx := context.Background()

	f.h.HandleSlots(ctx, f.m, message("/slots 1 Monday"))
	f.h.HandleReset(ctx, f.m, message("/reset"))
	assert.Equal(t, state.StateLinked, f.sm.GetState(chatID))
	assert.Empty(t, f.sm.GetString(chatID, state.KeyFreeSlotsInfo))
	assert.Equal(t, "P-1", f.sm.GetString(chatID, state.KeyPID))

	f.h.HandleUnlink(ctx, f.m, message("/unlink"))
	assert.Equal(t, state.StateNone, f.sm.GetState(chatID))

	f.h.HandleUnlink(ctx, f.m, message("/unlink"))
	assert.Equal(t, "This chat is not linked.", f.m.last())
}
