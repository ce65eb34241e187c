package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/go-chi/chi/v5"
)

type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListStores(ctx context.Context, city, query string) ([]domain.StoreLocation, error)
	Cities(ctx context.Context) ([]string, error)
}

type CatalogHandler struct {
	catalog Catalog
	log     *slog.Logger
}

func NewCatalogHandler(catalog Catalog, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: logger.OrNop(log)}
}

// ListProducts serves GET /products[?category=].
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []domain.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = h.catalog.ListByCategory(r.Context(), category)
	} else {
		products, err = h.catalog.ListProducts(r.Context())
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ListStores serves GET /stores[?city=&q=].
func (h *CatalogHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stores, err := h.catalog.ListStores(r.Context(), q.Get("city"), q.Get("q"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stores)
}

func (h *CatalogHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.catalog.Cities(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, cities)
}
