package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/latency"
	"github.com/fjod/sweetshop/internal/slot"
	"golang.org/x/sync/singleflight"
)

// identityStore tracks one optional identity record of type T and mirrors it
// into a single durable slot. The slot write and the in-memory update happen
// in one critical section, so the two never disagree.
type identityStore[T any] struct {
	kind  string
	slot  slot.Slot
	valid func(T) bool
	log   *slog.Logger

	mu      sync.Mutex
	current *T
	busy    atomic.Int32
	sfg     singleflight.Group // collapses concurrent restores
}

func (s *identityStore[T]) track() func() {
	s.busy.Add(1)
	return func() { s.busy.Add(-1) }
}

func (s *identityStore[T]) get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		var zero T
		return zero, false
	}
	return *s.current, true
}

// adopt persists rec and makes it current. On a failed write nothing changes.
func (s *identityStore[T]) adopt(ctx context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adoptLocked(ctx, rec)
}

func (s *identityStore[T]) adoptLocked(ctx context.Context, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", s.kind, err)
	}
	if err := s.slot.Save(ctx, s.kind, data); err != nil {
		s.log.ErrorContext(ctx, "persist identity failed", "kind", s.kind, "error", err)
		return fmt.Errorf("persist %s: %w", s.kind, slot.Unavailable(err))
	}
	s.current = &rec
	return nil
}

// update applies fn to the latest record, not to a snapshot taken earlier.
func (s *identityStore[T]) update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.current == nil {
		return zero, fmt.Errorf("update %s: %w", s.kind, domain.ErrUnauthenticated)
	}
	next, err := fn(*s.current)
	if err != nil {
		return zero, err
	}
	if err := s.adoptLocked(ctx, next); err != nil {
		return zero, err
	}
	return next, nil
}

// clear drops the identity from memory first and from the slot second; a
// slot failure is reported but the in-memory identity stays cleared.
func (s *identityStore[T]) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if err := s.slot.Remove(ctx, s.kind); err != nil {
		s.log.ErrorContext(ctx, "clear identity slot failed", "kind", s.kind, "error", err)
		return fmt.Errorf("clear %s: %w", s.kind, slot.Unavailable(err))
	}
	return nil
}

func (s *identityStore[T]) restore(ctx context.Context, delay time.Duration) (T, error) {
	v, err, _ := s.sfg.Do(s.kind, func() (any, error) {
		if err := latency.Wait(ctx, delay); err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		data, err := s.slot.Load(ctx, s.kind)
		if errors.Is(err, slot.ErrEmpty) {
			return nil, fmt.Errorf("no stored %s: %w", s.kind, domain.ErrNotFound)
		}
		if err != nil {
			s.log.ErrorContext(ctx, "load identity failed", "kind", s.kind, "error", err)
			return nil, fmt.Errorf("load %s: %w", s.kind, slot.Unavailable(err))
		}

		var rec T
		if err := json.Unmarshal(data, &rec); err != nil || !s.valid(rec) {
			s.log.WarnContext(ctx, "ignoring malformed identity record", "kind", s.kind, "error", err)
			return nil, fmt.Errorf("stored %s is malformed: %w", s.kind, domain.ErrNotFound)
		}
		s.current = &rec
		return rec, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
