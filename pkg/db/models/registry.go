package models

import (
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// Registry is a gift registry kept by a session for an upcoming event.
type Registry struct {
	ID          int64                `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID   string               `gorm:"column:session_id;not null;index"`
	Name        string               `gorm:"column:name;not null"`
	Type        enums.RegistryType   `gorm:"column:type;not null"`
	EventDate   time.Time            `gorm:"column:event_date;not null"`
	Description string               `gorm:"column:description"`
	ItemCount   int                  `gorm:"column:item_count;not null;default:0"`
	Status      enums.RegistryStatus `gorm:"column:status;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
