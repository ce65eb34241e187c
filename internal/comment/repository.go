// Package comment implements product comments: the store and its backends.
package comment

import (
	"context"

	"github.com/fjod/sweetshop/internal/domain"
)

// Repository persists comments. Unknown ids yield domain.ErrNotFound.
type Repository interface {
	// ListByProduct returns the product's comments newest first.
	ListByProduct(ctx context.Context, productID string) ([]domain.Comment, error)
	Get(ctx context.Context, id string) (domain.Comment, error)
	Insert(ctx context.Context, c domain.Comment) error
	// ToggleLike flips the like flag and moves the count with it in one
	// atomic update of the stored comment.
	ToggleLike(ctx context.Context, id string) (domain.Comment, error)
	Delete(ctx context.Context, id string) error
}
