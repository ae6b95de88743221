// Package handler exposes the notice board over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"admitflow/internal/notification/service"
	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

// Handler serves the notification routes.
type Handler struct {
	svc *service.Service
}

// New constructs a Handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Post handles POST /api/notifications (reviewer). Omitting application_id
// posts a broadcast.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApplicationID *int64 `json:"application_id"`
		Message       string `json:"message"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	n, err := h.svc.Append(r.Context(), req.ApplicationID, req.Message)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, n)
}

// List handles GET /api/notifications, newest first. An applicationId query
// parameter scopes the read when scoped reads are enabled.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var recipient *int64
	if v := r.URL.Query().Get("applicationId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "applicationId must be numeric"))
			return
		}
		recipient = &id
	}
	items, err := h.svc.ReadAll(r.Context(), recipient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}
