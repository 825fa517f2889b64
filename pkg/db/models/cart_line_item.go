package models

import "time"

// CartLineItem is one row of a session's cart, either active or saved for later.
type CartLineItem struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID     string    `gorm:"column:session_id;not null;index"`
	ProductID     int64     `gorm:"column:product_id;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	SavedForLater bool      `gorm:"column:saved_for_later;not null;default:false"`
	AddedDate     time.Time `gorm:"column:added_date;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
