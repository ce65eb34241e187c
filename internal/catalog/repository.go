// Package catalog serves the read-only product list and store locator.
package catalog

import (
	"context"

	"github.com/fjod/sweetshop/internal/domain"
)

// Repository lists catalog rows in display order.
type Repository interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Stores(ctx context.Context) ([]domain.StoreLocation, error)
	Close() error
}
