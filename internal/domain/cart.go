package domain

import "github.com/shopspring/decimal"

type CartLine struct {
	ItemID      string          `json:"item_id"`
	DisplayName string          `json:"display_name"`
	ImageRef    string          `json:"image_ref"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Selected    bool            `json:"selected"`
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderLine copies the purchasable fields of the line.
func (l CartLine) OrderLine() OrderLine {
	return OrderLine{
		ItemID:      l.ItemID,
		DisplayName: l.DisplayName,
		ImageRef:    l.ImageRef,
		UnitPrice:   l.UnitPrice,
		Quantity:    l.Quantity,
	}
}
