// Package cart keeps the shopper's cart in process memory.
package cart

import (
	"slices"
	"strings"
	"sync"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/shopspring/decimal"
)

// Item is what the catalog hands to AddItem.
type Item struct {
	ItemID      string          `json:"item_id"`
	DisplayName string          `json:"display_name"`
	ImageRef    string          `json:"image_ref"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Store is an ordered set of cart lines, unique by item id, in insertion order.
type Store struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

func NewStore(initial ...domain.CartLine) *Store {
	s := &Store{}
	for _, l := range initial {
		l.Quantity = max(1, l.Quantity)
		s.lines = append(s.lines, l)
	}
	return s
}

func (s *Store) indexOf(itemID string) int {
	return slices.IndexFunc(s.lines, func(l domain.CartLine) bool { return l.ItemID == itemID })
}

// AddItem merges into an existing line or appends a new selected one.
func (s *Store) AddItem(item Item) error {
	if strings.TrimSpace(item.ItemID) == "" {
		return domain.Invalid("item id is required")
	}
	if item.UnitPrice.IsNegative() {
		return domain.Invalid("unit price of %s is negative", item.ItemID)
	}
	qty := max(1, item.Quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(item.ItemID); i >= 0 {
		s.lines[i].Quantity += qty
		return nil
	}
	s.lines = append(s.lines, domain.CartLine{
		ItemID:      item.ItemID,
		DisplayName: item.DisplayName,
		ImageRef:    item.ImageRef,
		UnitPrice:   item.UnitPrice,
		Quantity:    qty,
		Selected:    true,
	})
	return nil
}

func (s *Store) RemoveItem(itemID string) {
	s.RemoveItems(itemID)
}

// RemoveItems drops every line whose id is listed; unknown ids are ignored.
func (s *Store) RemoveItems(itemIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = slices.DeleteFunc(s.lines, func(l domain.CartLine) bool {
		return slices.Contains(itemIDs, l.ItemID)
	})
}

// Deduct subtracts the given quantities per item id and drops lines that
// reach zero. Unknown ids are ignored.
func (s *Store) Deduct(quantities map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if q, ok := quantities[s.lines[i].ItemID]; ok {
			s.lines[i].Quantity -= q
		}
	}
	s.lines = slices.DeleteFunc(s.lines, func(l domain.CartLine) bool {
		return l.Quantity <= 0
	})
}

// UpdateQuantity sets the quantity, floored at 1.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(itemID); i >= 0 {
		s.lines[i].Quantity = max(1, quantity)
	}
}

func (s *Store) ToggleSelected(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(itemID); i >= 0 {
		s.lines[i].Selected = !s.lines[i].Selected
	}
}

func (s *Store) ToggleAll(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		s.lines[i].Selected = selected
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

func (s *Store) SelectedLines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CartLine
	for _, l := range s.lines {
		if l.Selected {
			out = append(out, l)
		}
	}
	return out
}

// SelectedCount sums quantities of selected lines.
func (s *Store) SelectedCount() int {
	n := 0
	for _, l := range s.SelectedLines() {
		n += l.Quantity
	}
	return n
}

func (s *Store) TotalCount() int {
	n := 0
	for _, l := range s.Lines() {
		n += l.Quantity
	}
	return n
}

func (s *Store) SelectedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.SelectedLines() {
		total = total.Add(l.LineTotal())
	}
	return total
}
