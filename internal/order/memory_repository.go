package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
)

// MemoryRepository keeps orders newest first in a slice.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewMemoryRepository seeds the repository; seed must already be newest first.
func NewMemoryRepository(seed ...domain.Order) *MemoryRepository {
	r := &MemoryRepository{}
	for _, o := range seed {
		r.orders = append(r.orders, o.Clone())
	}
	return r
}

func (r *MemoryRepository) indexOf(id string) int {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) Insert(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(o.ID) >= 0 {
		return domain.Invalid("order %s already exists", o.ID)
	}
	r.orders = append([]domain.Order{o.Clone()}, r.orders...)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return r.orders[i].Clone(), nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, at time.Time) (domain.Order, domain.OrderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Order{}, "", fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	o := &r.orders[i]
	prev := o.Status
	if !domain.CanTransitionTo(prev, status) {
		return domain.Order{}, "", fmt.Errorf("order %s %s -> %s: %w", id, prev, status, domain.ErrIllegalTransition)
	}
	o.Status = status
	o.UpdatedAt = at
	return o.Clone(), prev, nil
}

func (r *MemoryRepository) RecordPayment(_ context.Context, id string, method domain.PaymentMethod, transactionID string, at time.Time) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	o := &r.orders[i]
	if o.Status != domain.OrderStatusPending {
		return domain.Order{}, fmt.Errorf("order %s %s -> %s: %w", id, o.Status, domain.OrderStatusPaid, domain.ErrIllegalTransition)
	}
	o.Status = domain.OrderStatusPaid
	o.PaymentMethod = method
	o.TransactionID = transactionID
	o.UpdatedAt = at
	return o.Clone(), nil
}

func (r *MemoryRepository) Close() error { return nil }
