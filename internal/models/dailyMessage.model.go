package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyMessage is the canonical per-recipient, per-date artifact. At most one
// row exists per (recipient, date); the composite unique index is what the
// repository's upsert-if-absent relies on. The only mutation after creation
// is replacing the alternative oil.
type DailyMessage struct {
	BaseUUIDModel
	RecipientID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipient_date,composite:0" json:"recipientId"`
	Recipient      Recipient `gorm:"foreignKey:RecipientID"                                        json:"recipient"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:idx_recipient_date,composite:1" json:"date"`
	DayType        string    `gorm:"type:varchar(20);not null"                                     json:"dayType"`
	PrimaryOil     string    `gorm:"type:text;not null"                                            json:"primaryOil"`
	AlternativeOil string    `gorm:"type:text;not null"                                            json:"alternativeOil"`
	RenderedText   string    `gorm:"type:text;not null"                                            json:"renderedText"`
}

func (DailyMessage) TableName() string {
	return "daily_messages"
}
