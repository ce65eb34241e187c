package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/cart"
	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ProductSource resolves the product a cart line is added from.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

type CartHandler struct {
	cart     *cart.Store
	products ProductSource
	log      *slog.Logger
}

func NewCartHandler(c *cart.Store, products ProductSource, log *slog.Logger) *CartHandler {
	return &CartHandler{cart: c, products: products, log: logger.OrNop(log)}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type SelectAllRequestDTO struct {
	Selected bool `json:"selected"`
}

type CartView struct {
	Lines         []domain.CartLine `json:"lines"`
	SelectedCount int               `json:"selected_count"`
	TotalCount    int               `json:"total_count"`
	SelectedTotal decimal.Decimal   `json:"selected_total"`
}

func (h *CartHandler) view() CartView {
	lines := h.cart.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartView{
		Lines:         lines,
		SelectedCount: h.cart.SelectedCount(),
		TotalCount:    h.cart.TotalCount(),
		SelectedTotal: h.cart.SelectedTotal(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	p, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	err = h.cart.AddItem(cart.Item{
		ItemID:      p.ID,
		DisplayName: p.Name,
		ImageRef:    p.ImageRef,
		UnitPrice:   p.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.view())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	h.cart.UpdateQuantity(chi.URLParam(r, "item_id"), req.Quantity)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveItem(chi.URLParam(r, "item_id"))
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) ToggleSelected(w http.ResponseWriter, r *http.Request) {
	h.cart.ToggleSelected(chi.URLParam(r, "item_id"))
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var req SelectAllRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	h.cart.ToggleAll(req.Selected)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondJSON(w, http.StatusOK, h.view())
}
