package slot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySlot struct {
	MemorySlot
	fail  atomic.Bool
	calls atomic.Int32
}

func newFlakySlot() *flakySlot {
	return &flakySlot{MemorySlot: MemorySlot{data: make(map[string][]byte)}}
}

func (f *flakySlot) Save(ctx context.Context, key string, value []byte) error {
	f.calls.Add(1)
	if f.fail.Load() {
		return errors.New("connection refused")
	}
	return f.MemorySlot.Save(ctx, key, value)
}

func (f *flakySlot) Load(ctx context.Context, key string) ([]byte, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return f.MemorySlot.Load(ctx, key)
}

func TestBreakerSlot_PassThrough(t *testing.T) {
	ctx := context.Background()
	b := NewBreakerSlot(NewMemorySlot(), BreakerConfig{Name: "test"}, nil)

	require.NoError(t, b.Save(ctx, "user", []byte("v")))
	got, err := b.Load(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	require.NoError(t, b.Remove(ctx, "user"))
}

func TestBreakerSlot_EmptyIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	b := NewBreakerSlot(NewMemorySlot(), BreakerConfig{Name: "test", FailureThreshold: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := b.Load(ctx, "user")
		assert.ErrorIs(t, err, ErrEmpty)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerSlot_OpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakySlot()
	flaky.fail.Store(true)
	b := NewBreakerSlot(flaky, BreakerConfig{Name: "test", FailureThreshold: 2, OpenTimeout: time.Minute}, nil)

	for i := 0; i < 2; i++ {
		err := b.Save(ctx, "user", []byte("v"))
		require.ErrorContains(t, err, "connection refused")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	callsBefore := flaky.calls.Load()
	err := b.Save(ctx, "user", []byte("v"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, callsBefore, flaky.calls.Load(), "open breaker must not reach the slot")
}

func TestBreakerSlot_RecoversAfterTimeout(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakySlot()
	flaky.fail.Store(true)
	b := NewBreakerSlot(flaky, BreakerConfig{Name: "test", FailureThreshold: 1, OpenTimeout: 20 * time.Millisecond}, nil)

	require.Error(t, b.Save(ctx, "user", []byte("v")))
	assert.Equal(t, gobreaker.StateOpen, b.State())

	flaky.fail.Store(false)
	require.Eventually(t, func() bool {
		return b.Save(ctx, "user", []byte("v")) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
