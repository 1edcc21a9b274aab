package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusFor maps a service error kind onto an HTTP status
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindAlreadyExists:
		return http.StatusConflict
	case service.KindUpstream:
		return http.StatusServiceUnavailable
	case service.KindPartialWrite:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	body := errorBody{Error: kind.String()}
	switch kind {
	case service.KindInvalid, service.KindNotFound, service.KindAlreadyExists, service.KindUnauthorized:
		var se *service.Error
		if errors.As(err, &se) && se.Err != nil {
			body.Message = se.Err.Error()
		}
	case service.KindUpstream:
		if errors.Is(err, service.ErrAssistantDown) {
			body.Message = service.ErrAssistantDown.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			requestIDField(r),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, status, body)
}
