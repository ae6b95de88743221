package verification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

// Handler serves the reviewer flag routes.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SetAdmin handles PATCH /api/applications/{id}/verification/admin.
func (h *Handler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.svc.SetAdminVerified)
}

// SetFaculty handles PATCH /api/applications/{id}/verification/faculty.
func (h *Handler) SetFaculty(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.svc.SetFacultyVerified)
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request,
	set func(ctx context.Context, id int64, verified bool) (Result, error),
) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "application id must be a positive integer"))
		return
	}
	var req struct {
		Verified bool `json:"verified"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	result, err := set(r.Context(), id, req.Verified)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}
