package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

// Order is the immutable record created at checkout. Only the fulfillment
// fields (status, tracking number, delivery date) change afterwards.
type Order struct {
	ID              int64                `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID       string               `gorm:"column:session_id;not null;index"`
	Lines           []OrderLine          `gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax             decimal.Decimal      `gorm:"column:tax;type:numeric(12,2);not null"`
	Shipping        decimal.Decimal      `gorm:"column:shipping;type:numeric(12,2);not null"`
	Total           decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingAddress types.Address        `gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   types.PaymentSummary `gorm:"embedded;embeddedPrefix:payment_"`
	Status          enums.OrderStatus    `gorm:"column:status;not null"`
	OrderDate       time.Time            `gorm:"column:order_date;not null;index"`
	TrackingNumber  *string              `gorm:"column:tracking_number"`
	DeliveryDate    *time.Time           `gorm:"column:delivery_date"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine is a by-value copy of a cart line at purchase time.
type OrderLine struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	Position  int             `gorm:"column:position;not null"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Title     string          `gorm:"column:title;not null"`
}
