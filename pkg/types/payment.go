package types

import "github.com/angelmondragon/marketflow-backend/pkg/enums"

// PaymentSummary is the only payment data retained on an order.
type PaymentSummary struct {
	Type  enums.PaymentMethodType `json:"type" gorm:"column:type"`
	Last4 string                  `json:"last4,omitempty" gorm:"column:last4"`
}
