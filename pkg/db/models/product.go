package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Cart and order logic only ever read it.
type Product struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Title         string          `gorm:"column:title;not null"`
	Description   string          `gorm:"column:description"`
	Brand         string          `gorm:"column:brand"`
	Category      string          `gorm:"column:category;not null;index"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice decimal.Decimal `gorm:"column:original_price;type:numeric(12,2);not null"`
	InStock       bool            `gorm:"column:in_stock;not null"`
	StockCount    int             `gorm:"column:stock_count;not null;default:0"`
	Rating        float64         `gorm:"column:rating;not null;default:0"`
	ReviewCount   int             `gorm:"column:review_count;not null;default:0"`
	IsPrime       bool            `gorm:"column:is_prime;not null;default:false"`
	Images        []string        `gorm:"column:images;type:jsonb;serializer:json"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OnSale reports whether the product is discounted from its original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice.GreaterThan(p.Price)
}
