package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/latency"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/shopspring/decimal"
)

type Config struct {
	Delay time.Duration
}

// Store holds the one live payment attempt. Every attempt and every reset
// bumps gen; an attempt only writes its outcome while gen is still its own.
type Store struct {
	gw  Gateway
	cfg Config
	log *slog.Logger

	mu         sync.Mutex
	gen        uint64
	method     domain.PaymentMethod
	processing bool
	result     *domain.PaymentResult
}

func NewStore(gw Gateway, cfg Config, log *slog.Logger) *Store {
	return &Store{gw: gw, cfg: cfg, log: logger.OrNop(log)}
}

func (s *Store) SetPaymentMethod(m domain.PaymentMethod) error {
	if !m.Valid() {
		return domain.Invalid("unknown payment method %q", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.method = m
	return nil
}

// ProcessPayment charges amount for orderID with the selected method. A
// declined charge is recorded as a failed result and returned together with
// an error wrapping domain.ErrPaymentDeclined.
func (s *Store) ProcessPayment(ctx context.Context, amount decimal.Decimal, orderID string) (domain.PaymentResult, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.PaymentResult{}, domain.Invalid("order id is required")
	}
	if !amount.IsPositive() {
		return domain.PaymentResult{}, domain.Invalid("amount must be positive, got %s", amount)
	}

	s.mu.Lock()
	if s.method == "" {
		s.mu.Unlock()
		return domain.PaymentResult{}, domain.Invalid("no payment method selected")
	}
	s.gen++
	gen := s.gen
	method := s.method
	s.processing = true
	s.result = nil
	s.mu.Unlock()

	if err := latency.Wait(ctx, s.cfg.Delay); err != nil {
		s.finish(gen, nil)
		return domain.PaymentResult{}, err
	}

	charge, err := s.gw.Charge(ctx, domain.ChargeRequest{OrderID: orderID, Amount: amount, Method: method})
	if err != nil {
		res := domain.PaymentResult{Error: err.Error()}
		s.finish(gen, &res)
		s.log.ErrorContext(ctx, "charge failed", "order_id", orderID, "error", err)
		return res, fmt.Errorf("charge order %s: %w", orderID, err)
	}

	if !charge.Approved {
		res := domain.PaymentResult{Error: "payment failed: " + charge.Refusal.String()}
		s.finish(gen, &res)
		s.log.WarnContext(ctx, "payment declined", "order_id", orderID, "reason", charge.Refusal.String())
		return res, fmt.Errorf("order %s: %w: %s", orderID, domain.ErrPaymentDeclined, charge.Refusal)
	}

	res := domain.PaymentResult{Success: true, TransactionID: charge.TransactionID}
	if s.finish(gen, &res) {
		s.log.InfoContext(ctx, "payment approved", "order_id", orderID, "transaction_id", charge.TransactionID, "method", method)
	} else {
		s.log.InfoContext(ctx, "payment approved after being superseded", "order_id", orderID, "transaction_id", charge.TransactionID)
	}
	return res, nil
}

// finish records res if gen is still the live attempt and reports whether it did.
func (s *Store) finish(gen uint64, res *domain.PaymentResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.processing = false
	s.result = res
	return true
}

// ResetPayment returns the store to idle. It touches no other store.
func (s *Store) ResetPayment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.method = ""
	s.processing = false
	s.result = nil
}

func (s *Store) Snapshot() domain.PaymentAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.PaymentAttempt{Method: s.method, Processing: s.processing}
	if s.result != nil {
		r := *s.result
		a.Result = &r
	}
	return a
}

func (s *Store) Method() domain.PaymentMethod {
	return s.Snapshot().Method
}

func (s *Store) Processing() bool {
	return s.Snapshot().Processing
}

func (s *Store) Result() (domain.PaymentResult, bool) {
	a := s.Snapshot()
	if a.Result == nil {
		return domain.PaymentResult{}, false
	}
	return *a.Result, true
}
