package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/fjod/sweetshop/internal/domain"
)

type MemoryRepository struct {
	products []domain.Product
	stores   []domain.StoreLocation
}

func NewMemoryRepository(products []domain.Product, stores []domain.StoreLocation) *MemoryRepository {
	return &MemoryRepository{products: slices.Clone(products), stores: slices.Clone(stores)}
}

func (r *MemoryRepository) Products(context.Context) ([]domain.Product, error) {
	return slices.Clone(r.products), nil
}

func (r *MemoryRepository) Product(_ context.Context, id string) (domain.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

func (r *MemoryRepository) Stores(context.Context) ([]domain.StoreLocation, error) {
	return slices.Clone(r.stores), nil
}

func (r *MemoryRepository) Close() error { return nil }
