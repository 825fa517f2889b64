package models

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// OutboxDLQ keeps a copy of outbox events the publisher gave up on.
type OutboxDLQ struct {
	ID            int64                      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID       string                     `gorm:"column:event_id;type:varchar(36);not null;uniqueIndex"`
	EventType     enums.OutboxEventType      `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType  `gorm:"column:aggregate_type;not null"`
	AggregateID   string                     `gorm:"column:aggregate_id;not null"`
	Payload       json.RawMessage            `gorm:"column:payload;type:jsonb;not null"`
	ErrorReason   enums.OutboxDLQErrorReason `gorm:"column:error_reason;not null"`
	ErrorMessage  *string                    `gorm:"column:error_message"`
	AttemptCount  int                        `gorm:"column:attempt_count;not null"`
	FailedAt      time.Time                  `gorm:"column:failed_at;not null"`
}

func (OutboxDLQ) TableName() string {
	return "outbox_dlq"
}
