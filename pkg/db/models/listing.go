package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// Listing is an item a session offers for sale. Listings never enter the
// catalog.
type Listing struct {
	ID          int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID   string                 `gorm:"column:session_id;not null;index"`
	Title       string                 `gorm:"column:title;not null"`
	Description string                 `gorm:"column:description"`
	Price       decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null"`
	Category    enums.ListingCategory  `gorm:"column:category;not null"`
	Condition   enums.ListingCondition `gorm:"column:condition;not null"`
	Status      enums.ListingStatus    `gorm:"column:status;not null"`
	Views       int                    `gorm:"column:views;not null;default:0"`
	Images      []string               `gorm:"column:images;type:jsonb;serializer:json"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
