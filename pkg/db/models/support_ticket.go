package models

import (
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

type SupportTicket struct {
	ID          int64                `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID   string               `gorm:"column:session_id;not null;index"`
	Subject     string               `gorm:"column:subject;not null"`
	Category    enums.TicketCategory `gorm:"column:category;not null"`
	Priority    enums.TicketPriority `gorm:"column:priority;not null"`
	Status      enums.TicketStatus   `gorm:"column:status;not null"`
	Description string               `gorm:"column:description;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
