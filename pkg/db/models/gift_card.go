package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// GiftCard is a purchased stored-value card redeemable by code.
type GiftCard struct {
	ID             int64                `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID      string               `gorm:"column:session_id;not null;index"`
	Code           string               `gorm:"column:code;not null;uniqueIndex"`
	Amount         decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Balance        decimal.Decimal      `gorm:"column:balance;type:numeric(12,2);not null"`
	RecipientName  string               `gorm:"column:recipient_name"`
	RecipientEmail string               `gorm:"column:recipient_email"`
	Message        string               `gorm:"column:message"`
	Design         string               `gorm:"column:design"`
	Status         enums.GiftCardStatus `gorm:"column:status;not null"`
	PurchaseDate   time.Time            `gorm:"column:purchase_date;not null"`
	RedeemedAt     *time.Time           `gorm:"column:redeemed_at"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
