// Package slot provides the durable key-value slot that holds one identity
// record per kind ("user", "admin"). Values are opaque bytes written and
// removed wholesale.
package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/sweetshop/internal/domain"
)

// Slot defines the durable storage used by the identity stores.
type Slot interface {
	// Load returns the stored value or ErrEmpty.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces any stored value.
	Save(ctx context.Context, key string, value []byte) error
	// Remove clears the slot; removing an empty slot is not an error.
	Remove(ctx context.Context, key string) error
}

var ErrEmpty = errors.New("slot is empty")

// Unavailable tags err as a storage failure unless it already is one.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}
