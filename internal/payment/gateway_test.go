package payment

import (
	"context"
	"testing"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcResult(t *testing.T) {
	tests := []struct {
		name     string
		v        int
		approved bool
		refusal  Refusal
	}{
		{name: "approved low", v: 0, approved: true},
		{name: "approved edge", v: 94, approved: true},
		{name: "declined unknown", v: 95, refusal: RefusalUnknown},
		{name: "declined no funds", v: 96, refusal: RefusalNoFunds},
		{name: "declined expired", v: 97, refusal: RefusalCardExpired},
		{name: "declined issuer", v: 100, refusal: RefusalIssuerUnavailable},
		{name: "out of range", v: 150, refusal: RefusalUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := calcResult(tt.v)
			assert.Equal(t, tt.approved, res.Approved)
			assert.Equal(t, tt.refusal, res.Refusal)
		})
	}
}

func TestRandomGateway(t *testing.T) {
	approve := &RandomGateway{intn: func(int) int { return 3 }}
	res, err := approve.Charge(context.Background(), domain.ChargeRequest{OrderID: "o"})
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Regexp(t, `^TXN-[0-9A-F-]{36}$`, res.TransactionID)

	decline := &RandomGateway{intn: func(int) int { return 98 }}
	res, err = decline.Charge(context.Background(), domain.ChargeRequest{OrderID: "o"})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Empty(t, res.TransactionID)
	assert.Equal(t, "suspected fraud", res.Refusal.String())
}

func TestMockGateway_UniqueTransactionIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		res, err := MockGateway{}.Charge(context.Background(), domain.ChargeRequest{})
		require.NoError(t, err)
		require.True(t, res.Approved)
		assert.False(t, seen[res.TransactionID])
		seen[res.TransactionID] = true
	}
}
