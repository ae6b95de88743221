// Package handler exposes the course catalog over HTTP. Reads are public so
// the application form can populate its course picker; writes are admin-only.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"admitflow/internal/course/models"
	"admitflow/internal/course/service"
	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

// Handler serves the catalog routes.
type Handler struct {
	svc *service.Service
}

// New constructs a Handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type courseRequest struct {
	Name       string          `json:"name"`
	Department string          `json:"department"`
	Degree     string          `json:"degree"`
	Seats      int             `json:"seats"`
	Fee        decimal.Decimal `json:"fee"`
}

// List handles GET /api/courses.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.svc.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, courses)
}

// Get handles GET /api/courses/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	course, err := h.svc.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, course)
}

// Create handles POST /api/courses (admin).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	course, err := h.svc.Create(r.Context(), &models.Course{
		Name:       req.Name,
		Department: req.Department,
		Degree:     req.Degree,
		Seats:      req.Seats,
		Fee:        req.Fee,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, course)
}

// Update handles PUT /api/courses/{id} (admin).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req courseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	course, err := h.svc.Update(r.Context(), &models.Course{
		ID:         id,
		Name:       req.Name,
		Department: req.Department,
		Degree:     req.Degree,
		Seats:      req.Seats,
		Fee:        req.Fee,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /api/courses/{id} (admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "course id must be a positive integer")
	}
	return id, nil
}
