package catalog

import (
	"context"
	"strings"

	"github.com/fjod/sweetshop/internal/domain"
)

type Catalog struct {
	repo Repository
}

func New(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.repo.Products(ctx)
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return c.repo.Product(ctx, id)
}

func (c *Catalog) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	all, err := c.repo.Products(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListStores filters by city (empty means every city) and then by a
// substring of the store name or address (empty matches all).
func (c *Catalog) ListStores(ctx context.Context, city, query string) ([]domain.StoreLocation, error) {
	all, err := c.repo.Stores(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	out := []domain.StoreLocation{}
	for _, s := range all {
		if city != "" && s.City != city {
			continue
		}
		if query != "" && !strings.Contains(s.Name, query) && !strings.Contains(s.Address, query) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Cities lists the distinct store cities in first-seen order.
func (c *Catalog) Cities(ctx context.Context) ([]string, error) {
	all, err := c.repo.Stores(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range all {
		if !seen[s.City] {
			seen[s.City] = true
			out = append(out, s.City)
		}
	}
	return out, nil
}
