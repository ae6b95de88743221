package merit

import (
	"net/http"
	"strconv"

	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

// Handler serves the merit list route.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/merit with an optional courseId filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var courseID *int64
	if v := r.URL.Query().Get("courseId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "courseId must be numeric"))
			return
		}
		courseID = &id
	}
	entries, err := h.svc.Rank(r.Context(), courseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}
