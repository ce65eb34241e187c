package slot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/sweetshop/internal/logger"
	"github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	Name string
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a probe.
	OpenTimeout time.Duration
}

// BreakerSlot fails fast with domain.ErrStorageUnavailable while the
// wrapped slot keeps failing.
type BreakerSlot struct {
	next Slot
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerSlot(next Slot, cfg BreakerConfig, log *slog.Logger) *BreakerSlot {
	log = logger.OrNop(log)
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrEmpty)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("slot breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerSlot{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (b *BreakerSlot) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() ([]byte, error) {
		return b.next.Load(ctx, key)
	})
	return v, b.translate(err)
}

func (b *BreakerSlot) Save(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Save(ctx, key, value)
	})
	return b.translate(err)
}

func (b *BreakerSlot) Remove(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Remove(ctx, key)
	})
	return b.translate(err)
}

func (b *BreakerSlot) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerSlot) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Unavailable(err)
	}
	return err
}
