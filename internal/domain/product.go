package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	NameEn      string          `json:"name_en"`
	ImageRef    string          `json:"image_ref"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
}

type StoreLocation struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Phone   string  `json:"phone"`
	Hours   string  `json:"hours"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}
