package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
)

const maxBodyBytes = 1 << 20

type credentialsRequest struct {
	PID            string `json:"p_id"`
	RegisteredName string `json:"registered_name"`
	Pin            string `json:"pin"`
}

type loginResponse struct {
	Success        string `json:"success"`
	Token          string `json:"token"`
	PID            string `json:"p_id"`
	RegisteredName string `json:"registered_name"`
}

type pidRequest struct {
	PID string `json:"p_id"`
}

type freeSlotsRequest struct {
	TargetDay           string `json:"target_day"`
	CourseName          string `json:"course_name"`
	CourseDay           string `json:"course_day"`
	CourseStartTime     int    `json:"course_start_time"`
	CourseEndTime       int    `json:"course_end_time"`
	SplitByCourseLength bool   `json:"split_by_course_length"`
}

type slotView struct {
	Start            int      `json:"start_time"`
	End              int      `json:"end_time"`
	Label            string   `json:"label,omitempty"`
	FreeFraction     *float64 `json:"free_fraction,omitempty"`
	FreeStudents     *int     `json:"free_students,omitempty"`
	EnrolledStudents *int     `json:"enrolled_students,omitempty"`
}

type freeSlotsResponse struct {
	TargetDay string                `json:"target_day"`
	Rooms     map[string][]slotView `json:"rooms"`
}

type makeupRequest struct {
	PID             string `json:"p_id"`
	BookedLR        string `json:"booked_lr"`
	BookedDay       string `json:"booked_day"`
	BookedStartTime int    `json:"booked_start_time"`
	BookedEndTime   int    `json:"booked_end_time"`
	CourseName      string `json:"course_name"`
	CourseDay       string `json:"course_day"`
	CourseStartTime int    `json:"course_start_time"`
	CourseEndTime   int    `json:"course_end_time"`
}

type bookingResponse struct {
	Success  string            `json:"success,omitempty"`
	Error    string            `json:"error,omitempty"`
	Makeup   model.MakeupClass `json:"makeup"`
	Notified int               `json:"notified"`
	Failed   []string          `json:"failed_recipients,omitempty"`
}

type generateRequest struct {
	History       []model.ChatMessage `json:"history"`
	Message       string              `json:"message"`
	FreeSlotsInfo json.RawMessage     `json:"free_slots_info"`
}

type generateResponse struct {
	Reply string `json:"reply"`
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	token, cred, err := s.auth.Login(r.Context(), req.PID, req.Pin)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:        "user authenticated successfully.",
		Token:          token,
		PID:            cred.PID,
		RegisteredName: cred.RegisteredName,
	})
}

func (s *Server) handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := s.auth.Register(r.Context(), req.PID, req.RegisteredName, req.Pin); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"success": "Account Created Successfully."})
}

func (s *Server) handleGetCourses(w http.ResponseWriter, r *http.Request) {
	pid, ok := s.ownPID(w, r)
	if !ok {
		return
	}

	courses, err := s.courses.Courses(r.Context(), pid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleGetMakeups(w http.ResponseWriter, r *http.Request) {
	pid, ok := s.ownPID(w, r)
	if !ok {
		return
	}

	makeups, err := s.courses.Makeups(r.Context(), pid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, makeups)
}

func (s *Server) handleGetFreeSlots(w http.ResponseWriter, r *http.Request) {
	var req freeSlotsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	res, err := s.availability.FreeSlots(r.Context(), service.FreeSlotsQuery{
		TargetDay:           req.TargetDay,
		CourseName:          req.CourseName,
		CourseDay:           req.CourseDay,
		CourseSlot:          model.TimeSlot{Start: req.CourseStartTime, End: req.CourseEndTime},
		SplitByCourseLength: req.SplitByCourseLength,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.metrics.freeRooms.Observe(float64(len(res.Rooms)))
	writeJSON(w, http.StatusOK, freeSlotsView(res))
}

func freeSlotsView(res *service.FreeSlotsResult) freeSlotsResponse {
	out := freeSlotsResponse{
		TargetDay: string(res.TargetDay),
		Rooms:     make(map[string][]slotView, len(res.Rooms)),
	}
	for _, room := range res.Rooms {
		if res.Course == nil {
			views := make([]slotView, 0, len(room.Free))
			for _, f := range room.Free {
				views = append(views, slotView{Start: f.Slot.Start, End: f.Slot.End})
			}
			if len(views) > 0 {
				out.Rooms[room.Room] = views
			}
			continue
		}

		if len(room.Statuses) == 0 {
			continue
		}
		views := make([]slotView, 0, len(room.Statuses))
		for _, st := range room.Statuses {
			fraction, free, enrolled := st.FreeFraction, st.FreeStudents, st.EnrolledStudents
			views = append(views, slotView{
				Start:            st.Slot.Start,
				End:              st.Slot.End,
				Label:            string(st.Label),
				FreeFraction:     &fraction,
				FreeStudents:     &free,
				EnrolledStudents: &enrolled,
			})
		}
		out.Rooms[room.Room] = views
	}
	return out
}

func (s *Server) handleBookMakeup(w http.ResponseWriter, r *http.Request) {
	s.handleMakeup(w, r, "book", s.bookings.Book, http.StatusCreated, "Booked Successfully.")
}

func (s *Server) handleRemoveMakeup(w http.ResponseWriter, r *http.Request) {
	s.handleMakeup(w, r, "remove", s.bookings.Remove, http.StatusOK, "Booking Removed Successfully.")
}

type makeupOp func(ctx context.Context, req service.MakeupRequest) (*service.BookingResult, error)

func (s *Server) handleMakeup(w http.ResponseWriter, r *http.Request, name string, op makeupOp, okStatus int, okMessage string) {
	var req makeupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !s.sameFaculty(w, r, req.PID) {
		return
	}

	res, err := op(r.Context(), service.MakeupRequest{
		PID:        req.PID,
		Room:       req.BookedLR,
		Day:        req.BookedDay,
		Slot:       model.TimeSlot{Start: req.BookedStartTime, End: req.BookedEndTime},
		CourseName: req.CourseName,
		CourseDay:  req.CourseDay,
		CourseSlot: model.TimeSlot{Start: req.CourseStartTime, End: req.CourseEndTime},
	})

	switch {
	case err == nil:
		s.metrics.bookings.WithLabelValues(name, "ok").Inc()
		writeJSON(w, okStatus, bookingResponse{
			Success:  okMessage,
			Makeup:   res.Makeup,
			Notified: res.Notified,
		})
	case service.KindOf(err) == service.KindPartialWrite && res != nil:
		s.metrics.bookings.WithLabelValues(name, "partial").Inc()
		writeJSON(w, http.StatusMultiStatus, bookingResponse{
			Error:    service.KindPartialWrite.String(),
			Makeup:   res.Makeup,
			Notified: res.Notified,
			Failed:   service.FailedRecipients(err),
		})
	default:
		s.metrics.bookings.WithLabelValues(name, service.KindOf(err).String()).Inc()
		s.writeServiceError(w, r, err)
	}
}

func (s *Server) handleGenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	areq := service.AssistantRequest{
		History:       req.History,
		Message:       req.Message,
		FreeSlotsInfo: rawText(req.FreeSlotsInfo),
	}
	if claims := claimsFromContext(r.Context()); claims != nil {
		areq.Conversation = "http:" + claims.Subject
	}

	reply, err := s.assistant.Reply(r.Context(), areq)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Reply: reply})
}

// rawText returns a JSON string's value, or any other JSON value verbatim
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ownPID decodes a {p_id} body and checks it against the token
func (s *Server) ownPID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req pidRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return "", false
	}
	if !s.sameFaculty(w, r, req.PID) {
		return "", false
	}
	return req.PID, true
}

func (s *Server) sameFaculty(w http.ResponseWriter, r *http.Request, pid string) bool {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return false
	}
	if pid != claims.Subject {
		writeError(w, http.StatusForbidden, "p_id_mismatch")
		return false
	}
	return true
}
