package admitcard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

// Handler serves the interview and admit card routes.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ScheduleInterview handles PATCH /api/applications/{id}/interview (officer).
func (h *Handler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req struct {
		InterviewDate time.Time `json:"interview_date"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.InterviewDate.IsZero() {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "interview_date is required"))
		return
	}
	app, err := h.svc.ScheduleInterview(r.Context(), id, req.InterviewDate)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, scheduleResponse(app.InterviewDate, app.AdmitCardPath))
}

// Generate handles POST /api/applications/{id}/admit-card (officer), the
// regeneration path.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.svc.Generate(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, scheduleResponse(app.InterviewDate, app.AdmitCardPath))
}

type cardResponse struct {
	InterviewDate *time.Time `json:"interview_date,omitempty"`
	AdmitCardPath *string    `json:"admit_card_path,omitempty"`
}

func scheduleResponse(interviewDate *time.Time, path *string) cardResponse {
	return cardResponse{InterviewDate: interviewDate, AdmitCardPath: path}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "application id must be a positive integer")
	}
	return id, nil
}
