package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/vango-dev/toastkit/internal/errors"
)

// Sentinel errors for session conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = stderrors.New("server: session closed")

	// ErrEventQueueFull is returned when the event queue is full and an event is dropped.
	ErrEventQueueFull = stderrors.New("server: event queue full")
)

// errorBody is the JSON shape of every API error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError writes err as a JSON error body. Coded validation errors map to
// 422, other coded errors to the given fallback status.
func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Message: err.Error()}
	var te *errors.Error
	if stderrors.As(err, &te) {
		body.Code = te.Code
		body.Message = te.Message
		body.Detail = te.Detail
		if te.Category == errors.CategoryValidation {
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
