package comment

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fjod/sweetshop/internal/domain"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	comments []domain.Comment // newest first
}

// NewMemoryRepository seeds the repository; seed must already be newest first.
func NewMemoryRepository(seed ...domain.Comment) *MemoryRepository {
	return &MemoryRepository{comments: slices.Clone(seed)}
}

func (r *MemoryRepository) indexOf(id string) int {
	return slices.IndexFunc(r.comments, func(c domain.Comment) bool { return c.ID == id })
}

func (r *MemoryRepository) ListByProduct(_ context.Context, productID string) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Comment{}
	for _, c := range r.comments {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return r.comments[i], nil
}

func (r *MemoryRepository) Insert(_ context.Context, c domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(c.ID) >= 0 {
		return domain.Invalid("comment %s already exists", c.ID)
	}
	r.comments = slices.Insert(r.comments, 0, c)
	return nil
}

func (r *MemoryRepository) ToggleLike(_ context.Context, id string) (domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	r.comments[i] = r.comments[i].ToggleLike()
	return r.comments[i], nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	r.comments = slices.Delete(r.comments, i, i+1)
	return nil
}
