package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
)

type busyReporter interface {
	Busy() bool
}

type sessionSource interface {
	Actor() domain.Actor
	IsAdmin() bool
	Teardown(ctx context.Context) error
}

// StatusHandler reports the loading flags of the stores and who the session
// is acting for, and ends the session.
type StatusHandler struct {
	session  sessionSource
	users    busyReporter
	admins   busyReporter
	orders   busyReporter
	comments busyReporter
	payments interface{ Processing() bool }
	log      *slog.Logger
}

func NewStatusHandler(session sessionSource, users, admins, orders, comments busyReporter, payments interface{ Processing() bool }, log *slog.Logger) *StatusHandler {
	return &StatusHandler{
		session:  session,
		users:    users,
		admins:   admins,
		orders:   orders,
		comments: comments,
		payments: payments,
		log:      logger.OrNop(log),
	}
}

type StatusResponse struct {
	Actor             ActorView `json:"actor"`
	IsAdmin           bool      `json:"is_admin"`
	UserLoading       bool      `json:"user_loading"`
	AdminLoading      bool      `json:"admin_loading"`
	OrdersLoading     bool      `json:"orders_loading"`
	CommentsLoading   bool      `json:"comments_loading"`
	PaymentProcessing bool      `json:"payment_processing"`
}

type ActorView struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Authenticated bool   `json:"authenticated"`
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	a := h.session.Actor()
	respondJSON(w, http.StatusOK, StatusResponse{
		Actor:             ActorView{ID: a.ID, DisplayName: a.DisplayName, Authenticated: a.Authenticated},
		IsAdmin:           h.session.IsAdmin(),
		UserLoading:       h.users.Busy(),
		AdminLoading:      h.admins.Busy(),
		OrdersLoading:     h.orders.Busy(),
		CommentsLoading:   h.comments.Busy(),
		PaymentProcessing: h.payments.Processing(),
	})
}

// EndSession logs out both the user and the admin.
func (h *StatusHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Teardown(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
