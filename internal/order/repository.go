// Package order implements the order store and its persistence backends.
package order

import (
	"context"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
)

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Repository persists orders. Implementations return domain.ErrNotFound for
// unknown ids and domain.ErrIllegalTransition when a conditional status
// write finds the order in a status it may not leave that way.
type Repository interface {
	Insert(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// UpdateStatus moves the order to status and reports the status it left.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (domain.Order, domain.OrderStatus, error)
	// RecordPayment marks a pending order paid with the given payment details.
	RecordPayment(ctx context.Context, id string, method domain.PaymentMethod, transactionID string, at time.Time) (domain.Order, error)
	Close() error
}
