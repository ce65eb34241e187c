package order

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_InsertPrepends(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(fixtures.Orders()...)

	o := domain.Order{ID: "ORD-NEW", UserID: domain.GuestID, Status: domain.OrderStatusPending}
	require.NoError(t, repo.Insert(ctx, o))
	assert.ErrorIs(t, repo.Insert(ctx, o), domain.ErrValidation)

	orders, err := repo.ListByUser(ctx, domain.GuestID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-NEW", orders[0].ID)
	assert.Equal(t, "ORDER0987654321", orders[1].ID)
}

func TestMemoryRepository_ReturnsClones(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(fixtures.Orders()...)

	o, err := repo.Get(ctx, "ORDER0987654321")
	require.NoError(t, err)
	o.Lines[0].Quantity = 99
	o.ShippingAddress.Name = "changed"

	again, err := repo.Get(ctx, "ORDER0987654321")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Lines[0].Quantity)
	assert.Equal(t, "张三", again.ShippingAddress.Name)
}

func TestMemoryRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(fixtures.Orders()...)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	o, prev, err := repo.UpdateStatus(ctx, "ORDER0987654321", domain.OrderStatusShipped, at)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, prev)
	assert.Equal(t, domain.OrderStatusShipped, o.Status)
	assert.Equal(t, at, o.UpdatedAt)

	_, _, err = repo.UpdateStatus(ctx, "ORDER0987654321", domain.OrderStatusPaid, at)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	_, _, err = repo.UpdateStatus(ctx, "missing", domain.OrderStatusPaid, at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryRepository_RecordPayment(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Insert(ctx, domain.Order{ID: "A", Status: domain.OrderStatusPending}))

	_, err := repo.RecordPayment(ctx, "missing", domain.PaymentMethodWechat, "TXN", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	o, err := repo.RecordPayment(ctx, "A", domain.PaymentMethodWechat, "TXN", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, o.Status)
	assert.Equal(t, "TXN", o.TransactionID)

	_, err = repo.RecordPayment(ctx, "A", domain.PaymentMethodWechat, "TXN", time.Now())
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}
