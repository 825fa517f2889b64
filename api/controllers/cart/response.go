package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/internal/catalog"
	cartsvc "github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

type lineView struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	Quantity      int       `json:"quantity"`
	SavedForLater bool      `json:"savedForLater"`
	AddedDate     time.Time `json:"addedDate"`
}

type itemView struct {
	lineView
	Product   catalog.ProductView `json:"product"`
	LineTotal types.Money         `json:"lineTotal"`
}

type summaryView struct {
	Subtotal  types.Money `json:"subtotal"`
	Tax       types.Money `json:"tax"`
	Shipping  types.Money `json:"shipping"`
	Total     types.Money `json:"total"`
	ItemCount int         `json:"itemCount"`
}

type cartView struct {
	Items   []itemView  `json:"items"`
	Summary summaryView `json:"summary"`
}

func newLineView(line models.CartLineItem) lineView {
	return lineView{
		ID:            line.ID,
		ProductID:     line.ProductID,
		Quantity:      line.Quantity,
		SavedForLater: line.SavedForLater,
		AddedDate:     line.AddedDate,
	}
}

func newItemViews(items []cartsvc.LineItem) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, itemView{
			lineView:  newLineView(item.CartLineItem),
			Product:   catalog.ToView(item.Product),
			LineTotal: types.NewMoney(pricing.Round(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))),
		})
	}
	return out
}

func newSummaryView(s pricing.Summary) summaryView {
	return summaryView{
		Subtotal:  types.NewMoney(s.Subtotal),
		Tax:       types.NewMoney(s.Tax),
		Shipping:  types.NewMoney(s.Shipping),
		Total:     types.NewMoney(s.Total),
		ItemCount: s.ItemCount,
	}
}
