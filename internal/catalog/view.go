package catalog

import (
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

// ProductView is the API shape of a catalog product.
type ProductView struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Brand         string      `json:"brand"`
	Category      string      `json:"category"`
	Price         types.Money `json:"price"`
	OriginalPrice types.Money `json:"originalPrice"`
	OnSale        bool        `json:"onSale"`
	InStock       bool        `json:"inStock"`
	StockCount    int         `json:"stockCount"`
	Rating        float64     `json:"rating"`
	ReviewCount   int         `json:"reviewCount"`
	IsPrime       bool        `json:"isPrime"`
	Images        []string    `json:"images"`
}

func ToView(p models.Product) ProductView {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductView{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Brand:         p.Brand,
		Category:      p.Category,
		Price:         types.NewMoney(p.Price),
		OriginalPrice: types.NewMoney(p.OriginalPrice),
		OnSale:        p.OnSale(),
		InStock:       p.InStock,
		StockCount:    p.StockCount,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		IsPrime:       p.IsPrime,
		Images:        images,
	}
}

func ToViews(products []models.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ToView(p))
	}
	return out
}
