package payloads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// OrderPlacedLine mirrors one snapshot line of a placed order.
type OrderPlacedLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
}

// OrderPlacedEvent is emitted when checkout creates an order.
type OrderPlacedEvent struct {
	OrderID   int64             `json:"order_id"`
	SessionID string            `json:"session_id"`
	Status    enums.OrderStatus `json:"status"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Tax       decimal.Decimal   `json:"tax"`
	Shipping  decimal.Decimal   `json:"shipping"`
	Total     decimal.Decimal   `json:"total"`
	Lines     []OrderPlacedLine `json:"lines"`
	OrderDate time.Time         `json:"order_date"`
}

// OrderStatusChangedEvent is emitted after a fulfillment update is applied.
type OrderStatusChangedEvent struct {
	OrderID        int64             `json:"order_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
	DeliveryDate   *time.Time        `json:"delivery_date,omitempty"`
}

// FulfillmentUpdate is the inbound message published by the fulfillment
// provider onto the fulfillment subscription.
type FulfillmentUpdate struct {
	OrderID        int64      `json:"orderId"`
	Status         string     `json:"status"`
	TrackingNumber *string    `json:"trackingNumber,omitempty"`
	DeliveryDate   *time.Time `json:"deliveryDate,omitempty"`
}
