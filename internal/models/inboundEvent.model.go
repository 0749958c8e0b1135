package models

import (
	"time"

	"github.com/google/uuid"
)

// InboundEvent is a transport delivery waiting for the command sweep. The
// webhook writes it, the sweep stamps ProcessedAt after routing.
type InboundEvent struct {
	BaseUUIDModel
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipientId"`
	RawText     string     `gorm:"type:text;not null"       json:"rawText"`
	ReceivedAt  time.Time  `gorm:"type:timestamp;not null"  json:"receivedAt"`
	ProcessedAt *time.Time `gorm:"type:timestamp;index"     json:"processedAt"`
}

func (InboundEvent) TableName() string {
	return "inbound_events"
}
