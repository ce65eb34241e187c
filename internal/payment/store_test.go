package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	res   ChargeResult
	err   error
	calls []domain.ChargeRequest
}

func (m *mockGateway) Charge(_ context.Context, req domain.ChargeRequest) (ChargeResult, error) {
	m.calls = append(m.calls, req)
	return m.res, m.err
}

// blockingGateway holds every charge until release is closed.
type blockingGateway struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingGateway) Charge(ctx context.Context, _ domain.ChargeRequest) (ChargeResult, error) {
	b.started <- struct{}{}
	<-b.release
	return ChargeResult{Approved: true, TransactionID: "TXN-SLOW"}, nil
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSetPaymentMethod(t *testing.T) {
	s := NewStore(MockGateway{}, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodWechat))
	assert.Equal(t, domain.PaymentMethodWechat, s.Method())

	assert.ErrorIs(t, s.SetPaymentMethod("paypal"), domain.ErrValidation)
	assert.Equal(t, domain.PaymentMethodWechat, s.Method())
}

func TestProcessPayment_Success(t *testing.T) {
	gw := &mockGateway{res: ChargeResult{Approved: true, TransactionID: "TXN-1"}}
	s := NewStore(gw, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodAlipay))

	res, err := s.ProcessPayment(context.Background(), amount("56.0"), "ORD-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "TXN-1", res.TransactionID)

	snap := s.Snapshot()
	assert.False(t, snap.Processing)
	require.NotNil(t, snap.Result)
	assert.Equal(t, res, *snap.Result)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "ORD-1", gw.calls[0].OrderID)
	assert.Equal(t, domain.PaymentMethodAlipay, gw.calls[0].Method)
	assert.True(t, amount("56").Equal(gw.calls[0].Amount))
}

func TestProcessPayment_Declined(t *testing.T) {
	gw := &mockGateway{res: ChargeResult{Refusal: RefusalNoFunds}}
	s := NewStore(gw, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodCreditCard))

	res, err := s.ProcessPayment(context.Background(), amount("10"), "ORD-1")
	require.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.False(t, res.Success)
	assert.Equal(t, "payment failed: insufficient funds", res.Error)

	stored, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, res, stored)
	assert.False(t, s.Processing())
}

func TestProcessPayment_GatewayError(t *testing.T) {
	gw := &mockGateway{err: errors.New("connection refused")}
	s := NewStore(gw, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodApplePay))

	res, err := s.ProcessPayment(context.Background(), amount("10"), "ORD-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection refused")
}

func TestProcessPayment_Validation(t *testing.T) {
	gw := &mockGateway{res: ChargeResult{Approved: true}}
	s := NewStore(gw, Config{}, nil)

	_, err := s.ProcessPayment(context.Background(), amount("10"), "ORD-1")
	assert.ErrorIs(t, err, domain.ErrValidation, "no method selected")

	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodAlipay))
	_, err = s.ProcessPayment(context.Background(), amount("0"), "ORD-1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.ProcessPayment(context.Background(), amount("10"), " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, gw.calls)
	_, ok := s.Result()
	assert.False(t, ok)
}

func TestProcessPayment_ClearsPreviousResult(t *testing.T) {
	s := NewStore(MockGateway{}, Config{Delay: 50 * time.Millisecond}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodAlipay))
	_, err := s.ProcessPayment(context.Background(), amount("1"), "ORD-1")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.ProcessPayment(context.Background(), amount("2"), "ORD-2")
	}()
	require.Eventually(t, s.Processing, time.Second, time.Millisecond)
	_, ok := s.Result()
	assert.False(t, ok, "a new attempt starts without a result")
	<-done
	_, ok = s.Result()
	assert.True(t, ok)
}

func TestProcessPayment_CancelledReturnsToIdle(t *testing.T) {
	gw := &mockGateway{res: ChargeResult{Approved: true}}
	s := NewStore(gw, Config{Delay: time.Minute}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodAlipay))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.ProcessPayment(ctx, amount("1"), "ORD-1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.False(t, s.Processing())
	_, ok := s.Result()
	assert.False(t, ok)
	assert.Empty(t, gw.calls)
}

func TestResetPayment_SupersedesInFlightAttempt(t *testing.T) {
	gw := &blockingGateway{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewStore(gw, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodAlipay))

	type outcome struct {
		res domain.PaymentResult
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		res, err := s.ProcessPayment(context.Background(), amount("1"), "ORD-1")
		out <- outcome{res, err}
	}()
	<-gw.started
	assert.True(t, s.Processing())

	s.ResetPayment()
	close(gw.release)
	o := <-out

	require.NoError(t, o.err)
	assert.True(t, o.res.Success, "the caller still learns its own outcome")
	snap := s.Snapshot()
	assert.Equal(t, domain.PaymentAttempt{}, snap, "but the store stays reset")
}

func TestNewerAttemptSupersedesOlder(t *testing.T) {
	gw := &blockingGateway{started: make(chan struct{}, 2), release: make(chan struct{})}
	s := NewStore(gw, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodAlipay))

	first := make(chan struct{})
	go func() {
		defer close(first)
		_, _ = s.ProcessPayment(context.Background(), amount("1"), "ORD-1")
	}()
	<-gw.started

	fast := &mockGateway{res: ChargeResult{Approved: true, TransactionID: "TXN-FAST"}}
	s.gw = fast
	res, err := s.ProcessPayment(context.Background(), amount("2"), "ORD-2")
	require.NoError(t, err)
	assert.Equal(t, "TXN-FAST", res.TransactionID)

	close(gw.release)
	<-first

	stored, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, "TXN-FAST", stored.TransactionID)
}

func TestResetPayment(t *testing.T) {
	s := NewStore(MockGateway{}, Config{}, nil)
	require.NoError(t, s.SetPaymentMethod(domain.PaymentMethodWechat))
	_, err := s.ProcessPayment(context.Background(), amount("5"), "ORD-1")
	require.NoError(t, err)

	s.ResetPayment()
	assert.Equal(t, domain.PaymentAttempt{}, s.Snapshot())
}
