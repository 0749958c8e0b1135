package models

import (
	"time"

	"github.com/google/uuid"
)

type RepeatStatus string

const (
	RepeatStatusPending RepeatStatus = "pending"
	RepeatStatusFired   RepeatStatus = "fired"
	RepeatStatusExpired RepeatStatus = "expired"
)

// ScheduledRepeat is a recipient-requested re-delivery of the day's message.
// FireTime is a time of day interpreted on DateOfMessage only; a pending
// entry that crosses midnight expires rather than firing on a stale date.
type ScheduledRepeat struct {
	BaseUUIDModel
	RecipientID   uuid.UUID    `gorm:"type:uuid;not null;index"             json:"recipientId"`
	RequestedAt   time.Time    `gorm:"type:timestamp;not null"              json:"requestedAt"`
	FireTime      string       `gorm:"type:varchar(5);not null"             json:"fireTime"`
	DateOfMessage time.Time    `gorm:"type:date;not null;index"             json:"dateOfMessage"`
	Status        RepeatStatus `gorm:"type:varchar(10);default:'pending'"   json:"status"`
	FiredAt       *time.Time   `gorm:"type:timestamp"                       json:"firedAt"`
}

func (ScheduledRepeat) TableName() string {
	return "scheduled_repeats"
}
