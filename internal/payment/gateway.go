// Package payment implements the payment store and the gateways it charges
// through.
package payment

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/google/uuid"
)

type Refusal int

const (
	RefusalUnknown Refusal = iota
	RefusalNoFunds
	RefusalCardExpired
	RefusalFraudSuspected
	RefusalLimitExceeded
	RefusalIssuerUnavailable
)

func (r Refusal) String() string {
	switch r {
	case RefusalNoFunds:
		return "insufficient funds"
	case RefusalCardExpired:
		return "card expired"
	case RefusalFraudSuspected:
		return "suspected fraud"
	case RefusalLimitExceeded:
		return "limit exceeded"
	case RefusalIssuerUnavailable:
		return "issuer unavailable"
	}
	return "unknown reason"
}

type ChargeResult struct {
	Approved      bool
	TransactionID string
	Refusal       Refusal
}

// Gateway charges an order. A decline is a result, not an error; errors mean
// the charge could not be attempted.
type Gateway interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (ChargeResult, error)
}

// MockGateway approves every request.
type MockGateway struct{}

func (MockGateway) Charge(context.Context, domain.ChargeRequest) (ChargeResult, error) {
	return ChargeResult{Approved: true, TransactionID: newTransactionID()}, nil
}

// RandomGateway declines about one charge in twenty.
type RandomGateway struct {
	intn func(n int) int
}

func NewRandomGateway() *RandomGateway {
	return &RandomGateway{intn: rand.IntN}
}

func (g *RandomGateway) Charge(context.Context, domain.ChargeRequest) (ChargeResult, error) {
	res := calcResult(g.intn(101)) // 101 because IntN excludes the upper bound
	if res.Approved {
		res.TransactionID = newTransactionID()
	}
	return res, nil
}

func calcResult(n int) ChargeResult {
	if n < 95 {
		return ChargeResult{Approved: true}
	}
	reason := n - 95
	if reason == 0 || reason > 5 {
		return ChargeResult{Refusal: RefusalUnknown}
	}
	return ChargeResult{Refusal: Refusal(reason)}
}

func newTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString())
}
