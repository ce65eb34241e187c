package http

import (
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/fjod/sweetshop/internal/payment"
)

type PaymentHandler struct {
	payments *payment.Store
	log      *slog.Logger
}

func NewPaymentHandler(payments *payment.Store, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: logger.OrNop(log)}
}

type SetMethodRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.payments.Snapshot())
}

func (h *PaymentHandler) SetMethod(w http.ResponseWriter, r *http.Request) {
	var req SetMethodRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.payments.SetPaymentMethod(req.Method); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.payments.Snapshot())
}

func (h *PaymentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.payments.ResetPayment()
	w.WriteHeader(http.StatusNoContent)
}
