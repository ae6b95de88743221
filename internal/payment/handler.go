package payment

import (
	"net/http"

	"admitflow/internal/transport/http/shared"
)

// Handler serves the payment routes. Both are applicant-facing and
// unauthenticated; the signature check is the trust boundary.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateOrder handles POST /api/payments/order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.CreateOrder(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, order)
}

// Verify handles POST /api/payments/verify. A tampered signature is a 200
// with valid:false, not an error; only infrastructure faults are errors.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID       string `json:"order_id"`
		PaymentID     string `json:"payment_id"`
		Signature     string `json:"signature"`
		ApplicationID int64  `json:"application_id"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	result, err := h.svc.Verify(r.Context(), req.OrderID, req.PaymentID, req.Signature, req.ApplicationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}
