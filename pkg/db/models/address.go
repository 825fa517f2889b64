package models

import (
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

// Address is a saved address-book entry.
type Address struct {
	ID        int64         `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string        `gorm:"column:session_id;not null;index"`
	Address   types.Address `gorm:"embedded"`
	IsDefault bool          `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
