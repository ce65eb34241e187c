// Package checkout sequences cart, order and payment: selected lines become
// an order, the order is paid, and paid lines leave the cart.
package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/shopspring/decimal"
)

type Cart interface {
	SelectedLines() []domain.CartLine
	Deduct(quantities map[string]int)
}

type Orders interface {
	CreateOrder(ctx context.Context, lines []domain.OrderLine, total decimal.Decimal, addr *domain.ShippingAddress) (domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (domain.Order, error)
	RecordPayment(ctx context.Context, id string, method domain.PaymentMethod, transactionID string) (domain.Order, error)
}

type Payments interface {
	SetPaymentMethod(m domain.PaymentMethod) error
	ProcessPayment(ctx context.Context, amount decimal.Decimal, orderID string) (domain.PaymentResult, error)
}

type Service struct {
	cart     Cart
	orders   Orders
	payments Payments
	log      *slog.Logger
}

func NewService(cart Cart, orders Orders, payments Payments, log *slog.Logger) *Service {
	return &Service{cart: cart, orders: orders, payments: payments, log: logger.OrNop(log)}
}

// PlaceOrder turns the selected cart lines into a pending order. The cart is
// left as it is until the order is paid.
func (s *Service) PlaceOrder(ctx context.Context, addr *domain.ShippingAddress) (domain.Order, error) {
	selected := s.cart.SelectedLines()
	if len(selected) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	lines := make([]domain.OrderLine, 0, len(selected))
	for _, l := range selected {
		lines = append(lines, l.OrderLine())
	}
	return s.orders.CreateOrder(ctx, lines, domain.SumLines(lines), addr)
}

// Pay charges a pending order. On success the order is marked paid and its
// items are removed from the cart; on failure both stay untouched.
func (s *Service) Pay(ctx context.Context, orderID string, method domain.PaymentMethod) (domain.Order, domain.PaymentResult, error) {
	o, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, domain.PaymentResult{}, err
	}
	if o.Status != domain.OrderStatusPending {
		return o, domain.PaymentResult{}, fmt.Errorf("pay order %s in status %s: %w", o.ID, o.Status, domain.ErrIllegalTransition)
	}
	if err := s.payments.SetPaymentMethod(method); err != nil {
		return o, domain.PaymentResult{}, err
	}

	res, err := s.payments.ProcessPayment(ctx, o.Total, o.ID)
	if err != nil {
		return o, res, err
	}

	paid, err := s.orders.RecordPayment(ctx, o.ID, method, res.TransactionID)
	if err != nil {
		s.log.ErrorContext(ctx, "payment captured but order not updated",
			"order_id", o.ID, "transaction_id", res.TransactionID, "error", err)
		return o, res, fmt.Errorf("record payment for order %s: %w", o.ID, err)
	}

	bought := make(map[string]int, len(paid.Lines))
	for _, l := range paid.Lines {
		bought[l.ItemID] += l.Quantity
	}
	s.cart.Deduct(bought)
	s.log.InfoContext(ctx, "checkout completed", "order_id", paid.ID, "items", len(bought))
	return paid, res, nil
}
