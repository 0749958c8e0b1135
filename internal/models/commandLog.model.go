package models

import (
	"time"

	"github.com/google/uuid"
)

// CommandLogEntry records every routed inbound event with its resolved
// outcome tag. Write-only from the router's perspective; kept for later
// inspection.
type CommandLogEntry struct {
	BaseUUIDModel
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index"  json:"recipientId"`
	At          time.Time `gorm:"type:timestamp;not null"   json:"at"`
	RawText     string    `gorm:"type:text;not null"        json:"rawText"`
	Outcome     string    `gorm:"type:varchar(30);not null" json:"outcome"`
}

func (CommandLogEntry) TableName() string {
	return "command_log_entries"
}
