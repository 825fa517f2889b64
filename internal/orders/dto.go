package orders

import (
	"time"

	"github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

// PlaceInput carries everything needed to turn a cart snapshot into an order.
type PlaceInput struct {
	SessionID       string
	Snapshot        *cart.Snapshot
	ShippingAddress types.Address
	Payment         types.PaymentSummary
}

// ReorderItem is one addable cart request derived from a past order.
type ReorderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// TrackingEvent is a synthesized fulfillment milestone.
type TrackingEvent struct {
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// TrackingInfo lists an order's milestones, most recent first.
type TrackingInfo struct {
	OrderID           int64             `json:"orderId"`
	TrackingNumber    *string           `json:"trackingNumber"`
	CurrentStatus     enums.OrderStatus `json:"currentStatus"`
	EstimatedDelivery *time.Time        `json:"estimatedDelivery"`
	Events            []TrackingEvent   `json:"events"`
}

// FulfillmentUpdate is an externally supplied status change.
type FulfillmentUpdate struct {
	OrderID        int64
	Status         string
	TrackingNumber *string
	DeliveryDate   *time.Time
}

// LineView is the API shape of an order line.
type LineView struct {
	ProductID int64       `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     types.Money `json:"price"`
	Title     string      `json:"title"`
}

// OrderView is the API shape of an order.
type OrderView struct {
	ID              int64                `json:"id"`
	Items           []LineView           `json:"items"`
	Subtotal        types.Money          `json:"subtotal"`
	Tax             types.Money          `json:"tax"`
	Shipping        types.Money          `json:"shipping"`
	Total           types.Money          `json:"total"`
	ShippingAddress types.Address        `json:"shippingAddress"`
	PaymentMethod   types.PaymentSummary `json:"paymentMethod"`
	Status          enums.OrderStatus    `json:"status"`
	OrderDate       time.Time            `json:"orderDate"`
	TrackingNumber  *string              `json:"trackingNumber"`
	DeliveryDate    *time.Time           `json:"deliveryDate"`
}

// ToView maps a stored order to its API shape.
func ToView(order models.Order) OrderView {
	items := make([]LineView, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, LineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     types.NewMoney(line.Price),
			Title:     line.Title,
		})
	}
	return OrderView{
		ID:              order.ID,
		Items:           items,
		Subtotal:        types.NewMoney(order.Subtotal),
		Tax:             types.NewMoney(order.Tax),
		Shipping:        types.NewMoney(order.Shipping),
		Total:           types.NewMoney(order.Total),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Status:          order.Status,
		OrderDate:       order.OrderDate,
		TrackingNumber:  order.TrackingNumber,
		DeliveryDate:    order.DeliveryDate,
	}
}

// ToViews maps a list of orders.
func ToViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToView(order))
	}
	return out
}
