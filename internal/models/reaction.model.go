package models

import (
	"time"

	"github.com/google/uuid"
)

type Reaction string

const (
	ReactionUp   Reaction = "up"
	ReactionDown Reaction = "down"
)

// ReactionEntry is append-only. A recipient reacting several times on the
// same date produces several rows; history is never collapsed.
type ReactionEntry struct {
	BaseUUIDModel
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index:idx_reaction_recipient_date,composite:0" json:"recipientId"`
	Date        time.Time `gorm:"type:date;not null;index:idx_reaction_recipient_date,composite:1" json:"date"`
	Reaction    Reaction  `gorm:"type:varchar(10);not null"                                        json:"reaction"`
	At          time.Time `gorm:"type:timestamp;not null"                                          json:"at"`
}

func (ReactionEntry) TableName() string {
	return "reaction_entries"
}
