package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

// ProgressBody is the JSON form of toast.Progress.
type ProgressBody struct {
	Current float64 `json:"current"`
	Total   float64 `json:"total"`
	Label   string  `json:"label,omitempty"`
}

// ExpandableBody is the JSON form of toast.Expandable.
type ExpandableBody struct {
	Summary string `json:"summary"`
	Details string `json:"details"`
}

// CopyableBody is the JSON form of toast.Copyable.
type CopyableBody struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// ToastRequest is the body of POST /api/toasts. Actions carry callbacks and
// are only available to in-process producers.
type ToastRequest struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type,omitempty"`
	Title       string          `json:"title,omitempty"`
	Message     string          `json:"message"`
	Dismissible *bool           `json:"dismissible,omitempty"`
	Duration    string          `json:"duration,omitempty"`
	Persistent  bool            `json:"persistent,omitempty"`
	Loading     bool            `json:"loading,omitempty"`
	Progress    *ProgressBody   `json:"progress,omitempty"`
	Expandable  *ExpandableBody `json:"expandable,omitempty"`
	Copyable    *CopyableBody   `json:"copyable,omitempty"`
}

// Input converts the request to a toast.Input.
func (req ToastRequest) Input() (toast.Input, error) {
	in := toast.Input{
		ID:          req.ID,
		Type:        toast.Type(req.Type),
		Title:       req.Title,
		Message:     req.Message,
		Dismissible: req.Dismissible,
		Persistent:  req.Persistent,
		Loading:     req.Loading,
	}
	if req.Duration != "" {
		d, err := time.ParseDuration(req.Duration)
		if err != nil {
			return toast.Input{}, errors.New(errors.CodeBadRequest).
				WithDetail("duration must be a Go duration such as 3s").
				Wrap(err)
		}
		in.Duration = d
	}
	if p := req.Progress; p != nil {
		in.Progress = &toast.Progress{Current: p.Current, Total: p.Total, Label: p.Label}
	}
	if e := req.Expandable; e != nil {
		in.Expandable = &toast.Expandable{Summary: e.Summary, Details: e.Details}
	}
	if c := req.Copyable; c != nil {
		in.Copyable = &toast.Copyable{Text: c.Text, Label: c.Label}
	}
	return in, nil
}

// ToastResponse is the JSON form of an active toast.
type ToastResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title,omitempty"`
	Message     string          `json:"message"`
	Dismissible bool            `json:"dismissible"`
	Duration    string          `json:"duration,omitempty"`
	Remaining   string          `json:"remaining,omitempty"`
	Paused      bool            `json:"paused"`
	Persistent  bool            `json:"persistent,omitempty"`
	Loading     bool            `json:"loading,omitempty"`
	Progress    *ProgressBody   `json:"progress,omitempty"`
	Expandable  *ExpandableBody `json:"expandable,omitempty"`
	Copyable    *CopyableBody   `json:"copyable,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CreatedResponse is the body returned by POST /api/toasts.
type CreatedResponse struct {
	ID string `json:"id"`
}

func (s *Server) toResponse(t toast.Toast) ToastResponse {
	resp := ToastResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Title:       t.Title,
		Message:     t.Message,
		Dismissible: t.Dismissible,
		Paused:      s.src.Paused(t.ID),
		Persistent:  t.Persistent,
		Loading:     t.Loading,
		CreatedAt:   t.CreatedAt,
	}
	if t.Duration > 0 {
		resp.Duration = t.Duration.String()
	}
	if left, ok := s.src.Remaining(t.ID); ok {
		resp.Remaining = left.Round(time.Millisecond).String()
	}
	if p := t.Progress; p != nil {
		resp.Progress = &ProgressBody{Current: p.Current, Total: p.Total, Label: p.Label}
	}
	if e := t.Expandable; e != nil {
		resp.Expandable = &ExpandableBody{Summary: e.Summary, Details: e.Details}
	}
	if c := t.Copyable; c != nil {
		resp.Copyable = &CopyableBody{Text: c.Text, Label: c.Label}
	}
	return resp
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	toasts := s.src.Snapshot()
	out := make([]ToastResponse, len(toasts))
	for i, t := range toasts {
		out[i] = s.toResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ToastRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.CodeBadRequest).Wrap(err))
		return
	}

	in, err := req.Input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.notifier.Show(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.notifier.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

// handleDismiss removes one toast. The dismissal is recorded as programmatic.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if d, ok := s.notifier.(toastui.ReasonDismisser); ok {
		d.DismissWithReason(id, store.ReasonProgrammatic)
	} else {
		s.notifier.Dismiss(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.lookup(w, r); ok {
		s.notifier.Pause(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.lookup(w, r); ok {
		s.notifier.Resume(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// lookup resolves the {id} URL parameter, writing 404 when absent.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, ok := s.src.Get(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "not_found", Message: "no active toast with id " + id})
		return "", false
	}
	return id, true
}
