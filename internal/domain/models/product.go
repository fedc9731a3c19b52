package models

import "github.com/shopspring/decimal"

// Category - линейка вкусов
type Category string

const (
	CategoryClassic Category = "Classic"
	CategoryPremium Category = "Premium"
	CategoryLimited Category = "Limited"
)

// Product представляет вкус мороженого на палочке из каталога
type Product struct {
	ID          string          `json:"id"` // slug, например "brown-sugar-milk-tea"
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	Color       string          `json:"color"`
	Stock       int             `json:"stock"`
	ComingSoon  bool            `json:"isComingSoon"`
}

// SoldOut - товар в продаже, но закончился
func (p *Product) SoldOut() bool {
	return !p.ComingSoon && p.Stock <= 0
}

// Orderable - можно положить в корзину
func (p *Product) Orderable() bool {
	return !p.ComingSoon && p.Stock > 0
}
