package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/checkout"
	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/fjod/sweetshop/internal/order"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orders   *order.Store
	checkout *checkout.Service
	log      *slog.Logger
}

func NewOrderHandler(orders *order.Store, co *checkout.Service, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: co, log: logger.OrNop(log)}
}

type PlaceOrderRequestDTO struct {
	ShippingAddress *domain.ShippingAddress `json:"shipping_address"`
}

type UpdateStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

type PayRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

type PayResponse struct {
	Order   domain.Order         `json:"order"`
	Payment domain.PaymentResult `json:"payment"`
}

// PlaceOrder turns the selected cart lines into a pending order. The body is
// optional.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequestDTO
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.checkout.PlaceOrder(r.Context(), req.ShippingAddress)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetOrders(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.orders.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Pay charges the order. A declined charge answers 402 with the payment
// result so the caller can show the refusal.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PayRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	o, res, err := h.checkout.Pay(r.Context(), chi.URLParam(r, "id"), req.Method)
	if errors.Is(err, domain.ErrPaymentDeclined) {
		respondJSON(w, http.StatusPaymentRequired, PayResponse{Order: o, Payment: res})
		return
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, PayResponse{Order: o, Payment: res})
}
